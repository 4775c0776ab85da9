package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	calproxyDefaultTimeout = 5 * time.Second
	calproxyMaxBodyBytes   = 4 << 20

	// backupKeyPrefix marks account keys in the cal-proxy backup dump.
	backupKeyPrefix = "xits_acct_"
)

// CalProxyProvider fetches known accounts from the cal-proxy service.
//
// Two endpoints contribute names: /pipeline carries deal accounts with
// proper casing (highest quality), /backup exposes raw storage keys
// (underscored, lower quality). Pipeline names win over backup names for
// the same account.
type CalProxyProvider struct {
	BaseURL string
	Timeout time.Duration

	client *http.Client
}

type calproxyPipeline struct {
	Deals []struct {
		Account string `json:"account"`
	} `json:"deals"`
}

type calproxyBackup struct {
	Keys map[string]json.RawMessage `json:"keys"`
}

func (p *CalProxyProvider) Name() string { return "calproxy" }

func (p *CalProxyProvider) httpClient() *http.Client {
	if p.client == nil {
		timeout := p.Timeout
		if timeout <= 0 {
			timeout = calproxyDefaultTimeout
		}
		p.client = &http.Client{Timeout: timeout}
	}
	return p.client
}

// Fetch returns the merged pipeline + backup account list. Either endpoint
// failing is tolerated as long as the other responds; both failing is an
// error so the caller can fall back to cached or built-in accounts.
func (p *CalProxyProvider) Fetch(ctx context.Context) ([]Account, error) {
	if strings.TrimSpace(p.BaseURL) == "" {
		return nil, fmt.Errorf("calproxy base URL is empty")
	}

	backup, backupErr := p.fetchBackup(ctx)
	pipeline, pipelineErr := p.fetchPipeline(ctx)

	if backupErr != nil && pipelineErr != nil {
		return nil, fmt.Errorf("calproxy unreachable: pipeline: %v; backup: %w", pipelineErr, backupErr)
	}

	// Backup first so pipeline casing wins in Merge.
	return Merge(backup, pipeline), nil
}

func (p *CalProxyProvider) fetchPipeline(ctx context.Context) ([]Account, error) {
	var body calproxyPipeline
	if err := p.getJSON(ctx, "/pipeline", &body); err != nil {
		return nil, err
	}

	var out []Account
	for _, deal := range body.Deals {
		if name := strings.TrimSpace(deal.Account); name != "" {
			out = append(out, Account{Name: name})
		}
	}
	return out, nil
}

func (p *CalProxyProvider) fetchBackup(ctx context.Context) ([]Account, error) {
	var body calproxyBackup
	if err := p.getJSON(ctx, "/backup", &body); err != nil {
		return nil, err
	}

	var out []Account
	for key := range body.Keys {
		if !strings.HasPrefix(key, backupKeyPrefix) {
			continue
		}
		name := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(key, backupKeyPrefix), "_", " "))
		if name != "" {
			out = append(out, Account{Name: name})
		}
	}
	return out, nil
}

func (p *CalProxyProvider) getJSON(ctx context.Context, path string, v any) error {
	url := strings.TrimRight(p.BaseURL, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, calproxyMaxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading %s response: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s response: %w", path, err)
	}
	return nil
}

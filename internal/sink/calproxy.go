package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xits/voicelog/internal/voicelog"
)

const calproxyDefaultTimeout = 5 * time.Second

// calproxyBackoffs bounds retry on transient failures: three attempts total.
var calproxyBackoffs = []time.Duration{100 * time.Millisecond, 300 * time.Millisecond}

// CalProxySink POSTs activity records to the cal-proxy /notes endpoint.
type CalProxySink struct {
	BaseURL string
	Timeout time.Duration

	client *http.Client
}

// notePayload is the wire shape cal-proxy expects.
type notePayload struct {
	Text      string `json:"text"`
	Account   string `json:"account"`
	Type      string `json:"type"`
	Contact   string `json:"contact"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

func (s *CalProxySink) Name() string { return "calproxy" }

func (s *CalProxySink) httpClient() *http.Client {
	if s.client == nil {
		timeout := s.Timeout
		if timeout <= 0 {
			timeout = calproxyDefaultTimeout
		}
		s.client = &http.Client{Timeout: timeout}
	}
	return s.client
}

// Deliver posts the record, retrying transient failures with a short
// bounded backoff. Non-2xx responses and transport errors after the
// final attempt are returned to the caller.
func (s *CalProxySink) Deliver(ctx context.Context, record *voicelog.ActivityRecord) error {
	if record == nil {
		return nil
	}
	if strings.TrimSpace(s.BaseURL) == "" {
		return fmt.Errorf("calproxy base URL is empty")
	}

	payload, err := json.Marshal(notePayload{
		Text:      record.LogText(),
		Account:   record.Account,
		Type:      string(record.Type),
		Contact:   record.Contact,
		Source:    "voice",
		Timestamp: record.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encoding note: %w", err)
	}

	url := strings.TrimRight(s.BaseURL, "/") + "/notes"

	var lastErr error
	for attempt := 0; attempt <= len(calproxyBackoffs); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(calproxyBackoffs[attempt-1]):
			}
		}

		lastErr = s.post(ctx, url, payload)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("posting to calproxy after %d attempts: %w", len(calproxyBackoffs)+1, lastErr)
}

func (s *CalProxySink) post(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xits/voicelog/internal/registry"
	"github.com/xits/voicelog/internal/store"
	"github.com/xits/voicelog/internal/voicelog"
)

func testParser(t *testing.T) *voicelog.Parser {
	t.Helper()
	reg := registry.Build([]registry.Account{
		{Name: "SaskTel", Aliases: []string{"Sask Tel"}},
		{Name: "Cameco Corporation", Aliases: []string{"Cameco"}},
		{Name: "Nutrien Ltd"},
	})
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return voicelog.NewParser(reg, voicelog.WithClock(func() time.Time { return now }))
}

// captureSink records delivered activity records for assertions.
type captureSink struct {
	records []*voicelog.ActivityRecord
}

func (c *captureSink) Name() string { return "capture" }

func (c *captureSink) Deliver(_ context.Context, r *voicelog.ActivityRecord) error {
	c.records = append(c.records, r)
	return nil
}

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.Open(store.Config{DBPath: filepath.Join(t.TempDir(), "voicelog.db")})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// callTool invokes an MCP tool through the server's JSON-RPC entry point.
func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]interface{}) *mcplib.CallToolResult {
	t.Helper()

	raw, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": args,
		},
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	result := srv.HandleMessage(context.Background(), raw)

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, string(respBytes))
	}
	if resp.Error != nil {
		t.Fatalf("JSON-RPC error: %d %s", resp.Error.Code, resp.Error.Message)
	}

	out := &mcplib.CallToolResult{IsError: resp.Result.IsError}
	for _, c := range resp.Result.Content {
		if c.Type == "text" {
			out.Content = append(out.Content, mcplib.NewTextContent(c.Text))
		}
	}
	return out
}

func getTextContent(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content found")
	return ""
}

func TestNewServer(t *testing.T) {
	srv := NewServer(ServerConfig{Parser: testParser(t)})
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
}

func TestLogTool(t *testing.T) {
	capture := &captureSink{}
	st := openTestStore(t)
	srv := NewServer(ServerConfig{Parser: testParser(t), Store: st, Sink: capture})

	result := callTool(t, srv, "voicelog_log", map[string]interface{}{
		"text": "Called Jane Smith at SaskTel about fleet renewal",
	})
	text := getTextContent(t, result)

	var out struct {
		Logged       bool                     `json:"logged"`
		Record       *voicelog.ActivityRecord `json:"record"`
		Confirmation string                   `json:"confirmation"`
		Posted       bool                     `json:"posted"`
		JournalID    string                   `json:"journal_id"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("parsing result: %v\nraw: %s", err, text)
	}

	if !out.Logged || !out.Posted {
		t.Fatalf("logged=%v posted=%v, want both true", out.Logged, out.Posted)
	}
	if out.Record.Account != "SaskTel" || out.Record.Type != voicelog.ActivityCall {
		t.Errorf("record = %+v", out.Record)
	}
	if out.Record.Contact != "Jane Smith" {
		t.Errorf("contact = %q, want Jane Smith", out.Record.Contact)
	}
	if out.JournalID == "" {
		t.Error("expected a journal id")
	}
	if len(capture.records) != 1 {
		t.Fatalf("sink got %d records, want 1", len(capture.records))
	}

	activities, err := st.RecentActivities(context.Background(), 5)
	if err != nil {
		t.Fatalf("RecentActivities: %v", err)
	}
	if len(activities) != 1 || !activities[0].Posted {
		t.Errorf("journal = %+v", activities)
	}
}

func TestLogTool_DryRun(t *testing.T) {
	capture := &captureSink{}
	srv := NewServer(ServerConfig{Parser: testParser(t), Sink: capture})

	result := callTool(t, srv, "voicelog_log", map[string]interface{}{
		"text":    "Emailed Mark at Cameco about the renewal quote",
		"dry_run": true,
	})
	text := getTextContent(t, result)

	if !strings.Contains(text, "Cameco Corporation") {
		t.Errorf("result missing canonical account: %s", text)
	}
	if !strings.Contains(text, `"posted": false`) {
		t.Errorf("dry run should not post: %s", text)
	}
	if len(capture.records) != 0 {
		t.Errorf("sink got %d records during dry run", len(capture.records))
	}
}

func TestLogTool_NoMatch(t *testing.T) {
	srv := NewServer(ServerConfig{Parser: testParser(t)})

	result := callTool(t, srv, "voicelog_log", map[string]interface{}{
		"text": "Called the team at Acme Nonexistent about widgets",
	})
	text := getTextContent(t, result)

	var out struct {
		Logged  bool                    `json:"logged"`
		Failure *voicelog.FailureReport `json:"failure"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	if out.Logged {
		t.Fatal("expected logged=false for unmatched text")
	}
	if out.Failure == nil || out.Failure.Kind != voicelog.UnmatchedNoMatch {
		t.Errorf("failure = %+v", out.Failure)
	}
}

func TestMatchTool(t *testing.T) {
	srv := NewServer(ServerConfig{Parser: testParser(t)})

	result := callTool(t, srv, "voicelog_match", map[string]interface{}{
		"text": "Nutrien Limited",
	})
	text := getTextContent(t, result)

	var out struct {
		Matched    bool    `json:"matched"`
		Account    string  `json:"account"`
		Confidence float64 `json:"confidence"`
		Strategy   string  `json:"strategy"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	if !out.Matched || out.Account != "Nutrien Ltd" {
		t.Errorf("match = %+v", out)
	}
	if out.Strategy != "suffix" || out.Confidence != 0.9 {
		t.Errorf("strategy=%q confidence=%v, want suffix/0.9", out.Strategy, out.Confidence)
	}
}

func TestAccountsTool(t *testing.T) {
	srv := NewServer(ServerConfig{Parser: testParser(t)})

	result := callTool(t, srv, "voicelog_accounts", map[string]interface{}{})
	text := getTextContent(t, result)

	var out struct {
		Count    int                `json:"count"`
		Accounts []registry.Account `json:"accounts"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	if out.Count != 3 {
		t.Errorf("count = %d, want 3", out.Count)
	}
}

func TestRecentTool(t *testing.T) {
	st := openTestStore(t)
	srv := NewServer(ServerConfig{Parser: testParser(t), Store: st, Sink: &captureSink{}})

	for _, text := range []string{
		"Called Jane at SaskTel about billing",
		"Emailed Mark at Cameco about uranium pricing",
	} {
		callTool(t, srv, "voicelog_log", map[string]interface{}{"text": text})
	}

	result := callTool(t, srv, "voicelog_recent", map[string]interface{}{
		"limit": float64(1),
	})
	text := getTextContent(t, result)

	var activities []*store.Activity
	if err := json.Unmarshal([]byte(text), &activities); err != nil {
		t.Fatalf("parsing result: %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("got %d activities, want 1", len(activities))
	}
}

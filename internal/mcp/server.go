// Package mcp provides a Model Context Protocol server for voicelog.
//
// It exposes the voice-log pipeline (parse and post, match diagnostics,
// account listing, recent journal entries) as MCP tools over stdio, so
// agent frontends can log CRM activities without shelling out to the CLI.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xits/voicelog/internal/sink"
	"github.com/xits/voicelog/internal/store"
	"github.com/xits/voicelog/internal/voicelog"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Parser  *voicelog.Parser
	Store   store.Store // optional, enables journaling and voicelog_recent
	Sink    sink.Sink   // optional, records are delivered here after parsing
	Version string
}

// dbMu serializes tool calls that touch the SQLite journal. The mcp-go
// library dispatches handlers concurrently, and SQLite supports only one
// writer at a time.
var dbMu sync.Mutex

// NewServer creates a configured MCP server with all voicelog tools.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"voicelog",
		ver,
		server.WithToolCapabilities(false),
	)

	registerLogTool(s, cfg)
	registerMatchTool(s, cfg.Parser)
	registerAccountsTool(s, cfg.Parser)
	if cfg.Store != nil {
		registerRecentTool(s, cfg.Store)
	}

	return s
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func registerLogTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("voicelog_log",
		mcp.WithDescription("Parse a natural-language activity description into a structured CRM record and post it. Returns the composed record and a confirmation, or a failure report when no account matches."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The activity description, e.g. 'Called John at SaskTel about fleet renewal'"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Parse only; skip posting and journaling (default: false)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError("text is required"), nil
		}

		dryRun := req.GetBool("dry_run", false)

		res, err := cfg.Parser.Parse(ctx, text)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parse error: %v", err)), nil
		}

		if !res.Emitted() {
			data, _ := json.MarshalIndent(map[string]any{
				"logged":  false,
				"failure": res.Failure,
				"message": res.Failure.Message(),
			}, "", "  ")
			return mcp.NewToolResultText(string(data)), nil
		}

		posted := false
		if !dryRun && cfg.Sink != nil {
			if err := cfg.Sink.Deliver(ctx, res.Record); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("delivering record: %v", err)), nil
			}
			posted = true
		}

		journalID := ""
		if !dryRun && cfg.Store != nil {
			dbMu.Lock()
			journalID, err = cfg.Store.LogActivity(ctx, res.Record, posted)
			dbMu.Unlock()
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("journaling record: %v", err)), nil
			}
		}

		out := map[string]any{
			"logged":       true,
			"record":       res.Record,
			"confirmation": res.Record.Confirmation(),
			"posted":       posted,
		}
		if journalID != "" {
			out["journal_id"] = journalID
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerMatchTool(s *server.MCPServer, parser *voicelog.Parser) {
	tool := mcp.NewTool("voicelog_match",
		mcp.WithDescription("Score account candidates for a text without logging anything. Returns every (span, account, score, strategy) pairing the matcher considered, best first."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to score against the account registry"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError("text is required"), nil
		}
		if strings.TrimSpace(text) == "" {
			return mcp.NewToolResultError("text cannot be empty"), nil
		}

		match := parser.Matcher().Match(text)
		explained := parser.Matcher().Explain(text)

		out := map[string]any{
			"matched":    match.Matched(),
			"account":    match.AccountName(),
			"confidence": match.Confidence,
			"strategy":   match.Strategy,
			"span":       match.MatchedSpan,
			"candidates": explained,
		}
		if !match.Matched() {
			out["kind"] = match.Kind
			out["best_candidate"] = match.Candidate
			if len(match.Ambiguous) > 0 {
				out["ambiguous"] = match.Ambiguous
			}
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerAccountsTool(s *server.MCPServer, parser *voicelog.Parser) {
	tool := mcp.NewTool("voicelog_accounts",
		mcp.WithDescription("List the loaded account registry: canonical names and the aliases each resolves from."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		accounts := parser.Matcher().Registry().Accounts()
		data, _ := json.MarshalIndent(map[string]any{
			"count":    len(accounts),
			"accounts": accounts,
		}, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerRecentTool(s *server.MCPServer, st store.Store) {
	tool := mcp.NewTool("voicelog_recent",
		mcp.WithDescription("List the most recent journaled activities, newest first."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of activities to return (default: 10, max: 100)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		limit := 10
		if v, err := req.RequireFloat("limit"); err == nil && int(v) > 0 {
			limit = int(v)
			if limit > 100 {
				limit = 100
			}
		}

		activities, err := st.RecentActivities(ctx, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing activities: %v", err)), nil
		}

		data, _ := json.MarshalIndent(activities, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

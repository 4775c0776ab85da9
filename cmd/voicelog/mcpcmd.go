package main

import (
	"context"
	"fmt"

	"github.com/xits/voicelog/internal/mcp"
)

// runMCP serves the voicelog MCP tools over stdio until the client
// disconnects.
func runMCP(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("usage: voicelog mcp")
	}

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer st.Close()

	target, err := buildSink(cfg)
	if err != nil {
		return err
	}

	parser := newParser(loadRegistry(context.Background(), cfg, st))

	srv := mcp.NewServer(mcp.ServerConfig{
		Parser:  parser,
		Store:   st,
		Sink:    target,
		Version: version,
	})
	return mcp.ServeStdio(srv)
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xits/voicelog/internal/voicelog"
)

// runLog parses the activity text, posts the composed record through the
// configured sink, and journals the outcome.
func runLog(args []string) error {
	var (
		asJSON   bool
		dryRun   bool
		noPost   bool
		flagText string
		words    []string
	)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--json":
			asJSON = true
		case arg == "--dry-run" || arg == "-n":
			dryRun = true
		case arg == "--no-post":
			noPost = true
		case arg == "--text" && i+1 < len(args):
			i++
			flagText = args[i]
		case strings.HasPrefix(arg, "--text="):
			flagText = strings.TrimPrefix(arg, "--text=")
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			words = append(words, arg)
		}
	}

	text := strings.TrimSpace(flagText)
	if text == "" {
		text = strings.TrimSpace(strings.Join(words, " "))
	}
	if text == "" {
		return fmt.Errorf("usage: voicelog log <text> [--dry-run] [--no-post] [--json]")
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

	ctx := context.Background()
	parser := newParser(loadRegistry(ctx, cfg, st))

	res, err := parser.Parse(ctx, text)
	if err != nil {
		if errors.Is(err, voicelog.ErrEmptyInput) {
			return fmt.Errorf("nothing to log")
		}
		return err
	}

	if !res.Emitted() {
		if asJSON {
			return printJSON(map[string]any{"logged": false, "failure": res.Failure})
		}
		fmt.Println(res.Failure.Message())
		os.Exit(1)
		return nil
	}

	posted := false
	if !dryRun && !noPost {
		target, err := buildSink(cfg)
		if err != nil {
			return err
		}
		if err := target.Deliver(ctx, res.Record); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: delivery via %s failed: %v\n", target.Name(), err)
		} else {
			posted = true
		}
	}

	journalID := ""
	if !dryRun {
		journalID, err = st.LogActivity(ctx, res.Record, posted)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: journaling failed: %v\n", err)
		}
	}

	if asJSON {
		out := map[string]any{
			"logged": true,
			"record": res.Record,
			"posted": posted,
		}
		if journalID != "" {
			out["journal_id"] = journalID
		}
		return printJSON(out)
	}

	if dryRun {
		fmt.Println("Dry run — nothing posted")
	}
	fmt.Println(res.Record.Confirmation())
	if !dryRun && !posted {
		fmt.Println("Record journaled as pending; it was not delivered")
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

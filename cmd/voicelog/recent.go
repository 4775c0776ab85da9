package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// runRecent prints the newest journal entries, most recent first.
func runRecent(args []string) error {
	limit := 10
	var asJSON bool
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--json":
			asJSON = true
		case args[i] == "--limit" && i+1 < len(args):
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid limit: %s", args[i])
			}
			limit = n
		case strings.HasPrefix(args[i], "--limit="):
			n, err := strconv.Atoi(strings.TrimPrefix(args[i], "--limit="))
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid limit: %s", args[i])
			}
			limit = n
		default:
			return fmt.Errorf("usage: voicelog recent [--limit N] [--json]")
		}
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
	activities, err := st.RecentActivities(ctx, limit)
	if err != nil {
		return fmt.Errorf("listing activities: %w", err)
	}

	if asJSON {
		return printJSON(activities)
	}

	if len(activities) == 0 {
		fmt.Println("No activities journaled yet")
		return nil
	}

	for _, a := range activities {
		status := "posted"
		if !a.Posted {
			status = "pending"
		}
		line := fmt.Sprintf("%s  %-7s %-8s %s", a.CreatedAt.Local().Format("2006-01-02 15:04"), a.Type, status, a.Account)
		if a.Contact != "" {
			line += "  (" + a.Contact + ")"
		}
		fmt.Println(line)
		fmt.Printf("    %s\n", a.Summary)
	}

	stats, err := st.Stats(ctx)
	if err == nil && stats.UnpostedCount > 0 {
		fmt.Printf("\n%d of %d activities are pending delivery\n", stats.UnpostedCount, stats.ActivityCount)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/xits/voicelog/internal/config"
	"github.com/xits/voicelog/internal/registry"
	"github.com/xits/voicelog/internal/store"
)

// runAccounts lists the merged account registry or refreshes the local
// cache from the live providers.
func runAccounts(args []string) error {
	sub := "list"
	var asJSON bool
	for _, arg := range args {
		switch {
		case arg == "--json":
			asJSON = true
		case arg == "list" || arg == "sync":
			sub = arg
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			return fmt.Errorf("usage: voicelog accounts [list|sync] [--json]")
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

	if sub == "sync" {
		return syncAccounts(ctx, cfg, st)
	}

	reg := loadRegistry(ctx, cfg, st)
	accounts := reg.Accounts()

	if asJSON {
		return printJSON(accounts)
	}

	fmt.Printf("%d accounts\n\n", len(accounts))
	for _, a := range accounts {
		if len(a.Aliases) > 0 {
			fmt.Printf("  %s  (%s)\n", a.Name, strings.Join(a.Aliases, ", "))
		} else {
			fmt.Printf("  %s\n", a.Name)
		}
	}
	return nil
}

// syncAccounts fetches from the live providers only and persists the merge
// so offline runs still see fresh CRM names.
func syncAccounts(ctx context.Context, cfg config.ResolvedConfig, st store.Store) error {
	var providers []registry.Provider
	if cfg.AccountsPath.Value != "" {
		providers = append(providers, &registry.FileProvider{Path: cfg.AccountsPath.Value})
	}
	providers = append(providers, &registry.CalProxyProvider{BaseURL: cfg.CalProxyURL.Value})

	var lists [][]registry.Account
	for _, p := range providers {
		accounts, err := p.Fetch(ctx)
		if err != nil {
			fmt.Printf("  %s: unavailable (%v)\n", p.Name(), err)
			continue
		}
		fmt.Printf("  %s: %d accounts\n", p.Name(), len(accounts))
		lists = append(lists, accounts)
	}

	if len(lists) == 0 {
		return fmt.Errorf("no account source reachable; cache left untouched")
	}

	merged := registry.Merge(lists...)
	if err := st.ReplaceAccounts(ctx, merged, "sync"); err != nil {
		return fmt.Errorf("caching accounts: %w", err)
	}

	fmt.Printf("\nCached %d accounts\n", len(merged))
	return nil
}

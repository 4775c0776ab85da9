package main

import (
	"fmt"

	"github.com/xits/voicelog/internal/config"
)

// runConfig prints the resolved configuration and where each value came
// from.
func runConfig(args []string) error {
	var asJSON bool
	for _, arg := range args {
		switch arg {
		case "--json":
			asJSON = true
		case "show", "":
		default:
			return fmt.Errorf("usage: voicelog config show [--json]")
		}
	}

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cfg)
	}

	fmt.Printf("Config file: %s\n\n", cfg.ConfigPath)
	printValue("db_path", cfg.DBPath)
	printValue("accounts_path", cfg.AccountsPath)
	printValue("calproxy_url", cfg.CalProxyURL)
	printValue("calproxy_timeout", cfg.CalProxyTimeout)
	printValue("sink", cfg.Sink)
	printValue("sink_path", cfg.SinkPath)
	return nil
}

func printValue(name string, v config.ResolvedValue) {
	value := v.Value
	if value == "" {
		value = "(unset)"
	}
	source := string(v.Source)
	if v.From != "" {
		source += ": " + v.From
	}
	fmt.Printf("  %-14s %-45s [%s]\n", name, value, source)
}

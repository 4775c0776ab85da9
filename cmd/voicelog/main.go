package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/xits/voicelog/internal/config"
	"github.com/xits/voicelog/internal/registry"
	"github.com/xits/voicelog/internal/sink"
	"github.com/xits/voicelog/internal/store"
	"github.com/xits/voicelog/internal/voicelog"
)

const version = "0.1.0-dev"

// Global flags, parsed before command dispatch.
var (
	globalConfigPath      string
	globalDBPath          string
	globalAccountsPath    string
	globalCalProxyURL     string
	globalCalProxyTimeout string
	globalSink            string
	globalSinkPath        string
	globalOffline         bool
)

func main() {
	args := parseGlobalFlags(os.Args[1:])

	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch args[0] {
	case "log":
		err = runLog(args[1:])
	case "accounts":
		err = runAccounts(args[1:])
	case "recent":
		err = runRecent(args[1:])
	case "config":
		err = runConfig(args[1:])
	case "mcp":
		err = runMCP(args[1:])
	case "version", "--version", "-v":
		fmt.Printf("voicelog %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseGlobalFlags extracts flags that apply to every command and returns
// the remaining arguments.
func parseGlobalFlags(args []string) []string {
	targets := map[string]*string{
		"--config":           &globalConfigPath,
		"--db":               &globalDBPath,
		"--accounts":         &globalAccountsPath,
		"--calproxy":         &globalCalProxyURL,
		"--calproxy-timeout": &globalCalProxyTimeout,
		"--sink":             &globalSink,
		"--sink-path":        &globalSinkPath,
	}

	var rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--offline" {
			globalOffline = true
			continue
		}

		name, value := arg, ""
		if eq := strings.IndexByte(arg, '='); eq >= 0 {
			name, value = arg[:eq], arg[eq+1:]
		}

		dst, ok := targets[name]
		if !ok {
			rest = append(rest, arg)
			continue
		}
		if value == "" && i+1 < len(args) {
			i++
			value = args[i]
		}
		*dst = value
	}
	return rest
}

// resolveConfig applies the global CLI flags on top of file and env config.
func resolveConfig() (config.ResolvedConfig, error) {
	return config.Resolve(config.ResolveOptions{
		ConfigPath:         globalConfigPath,
		CLIDBPath:          globalDBPath,
		CLIAccounts:        globalAccountsPath,
		CLICalProxyURL:     globalCalProxyURL,
		CLICalProxyTimeout: globalCalProxyTimeout,
		CLISink:            globalSink,
		CLISinkPath:        globalSinkPath,
	})
}

func openStore(cfg config.ResolvedConfig) (*store.SQLiteStore, error) {
	return store.Open(store.Config{DBPath: cfg.DBPath.Value})
}

// cacheProvider serves the account list persisted by `accounts sync`, so
// logging still resolves live CRM names when cal-proxy is unreachable.
type cacheProvider struct {
	store store.Store
}

func (p *cacheProvider) Name() string { return "cache" }

func (p *cacheProvider) Fetch(ctx context.Context) ([]registry.Account, error) {
	return p.store.ListAccounts(ctx)
}

// accountProviders assembles the provider chain in ascending merge
// priority: store cache, then the accounts file, then live cal-proxy.
func accountProviders(cfg config.ResolvedConfig, st store.Store) []registry.Provider {
	var providers []registry.Provider
	if st != nil {
		providers = append(providers, &cacheProvider{store: st})
	}
	if cfg.AccountsPath.Value != "" {
		providers = append(providers, &registry.FileProvider{Path: cfg.AccountsPath.Value})
	}
	if !globalOffline {
		providers = append(providers, &registry.CalProxyProvider{
			BaseURL: cfg.CalProxyURL.Value,
			Timeout: cfg.Timeout(),
		})
	}
	return providers
}

func loadRegistry(ctx context.Context, cfg config.ResolvedConfig, st store.Store) *registry.Registry {
	reg, errs := registry.Load(ctx, accountProviders(cfg, st)...)
	for name, err := range errs {
		fmt.Fprintf(os.Stderr, "Warning: %s accounts unavailable: %v\n", name, err)
	}
	return reg
}

// buildSink maps the resolved sink kind onto a delivery target.
func buildSink(cfg config.ResolvedConfig) (sink.Sink, error) {
	switch cfg.Sink.Value {
	case "calproxy", "":
		return &sink.CalProxySink{BaseURL: cfg.CalProxyURL.Value, Timeout: cfg.Timeout()}, nil
	case "file":
		if cfg.SinkPath.Value == "" {
			return nil, fmt.Errorf("sink kind is file but no sink path is configured")
		}
		return sink.NewFileSink(cfg.SinkPath.Value)
	case "none":
		return sink.Discard{}, nil
	}
	return nil, fmt.Errorf("unknown sink kind %q", cfg.Sink.Value)
}

func newParser(reg *registry.Registry) *voicelog.Parser {
	return voicelog.NewParser(reg)
}

func printUsage() {
	fmt.Printf(`voicelog %s — Natural-language activity logging for the CRM

Usage:
  voicelog <command> [arguments]

Commands:
  log <text>          Parse an activity description and post the record
  accounts [sync]     List known accounts, or refresh the local cache
  recent              Show recently journaled activities
  config show         Print resolved configuration with provenance
  mcp                 Serve the MCP tools over stdio
  version             Print version

Log Flags:
      --text <text>   Activity text (positional words also accepted)
  -n, --dry-run       Parse and print the record without posting or journaling
      --no-post       Journal the record as pending without delivering it
      --json          Emit the parse result as JSON

Flags:
      --config <path>         Config file (default ~/.voicelog/config.yaml)
      --db <path>             SQLite journal path
      --accounts <path>       Accounts YAML file
      --calproxy <url>        cal-proxy base URL
      --calproxy-timeout <s>  cal-proxy request timeout in seconds
      --sink <kind>           Delivery target: calproxy, file, or none
      --sink-path <path>      JSONL output path for the file sink
      --offline               Skip the live cal-proxy account fetch
  -h, --help                  Show this help message
  -v, --version               Print version
`, version)
}

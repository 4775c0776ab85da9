// Package config resolves voicelog configuration from, in ascending
// precedence: built-in defaults, the YAML config file, VOICELOG_*
// environment variables, and CLI flags. Every resolved value remembers
// where it came from so `voicelog config show` can explain itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Built-in defaults.
const (
	DefaultCalProxyURL     = "http://127.0.0.1:18790"
	DefaultCalProxyTimeout = "5"
	DefaultDBPath          = "~/.voicelog/voicelog.db"
	DefaultSink            = "calproxy"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// ResolvedValue is a configuration value plus its provenance.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// ResolveOptions carries CLI flag overrides into resolution.
type ResolveOptions struct {
	ConfigPath         string
	CLIDBPath          string
	CLIAccounts        string
	CLICalProxyURL     string
	CLICalProxyTimeout string
	CLISink            string
	CLISinkPath        string
}

// ResolvedConfig is the fully resolved configuration.
type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	DBPath          ResolvedValue `json:"db_path"`
	AccountsPath    ResolvedValue `json:"accounts_path"`
	CalProxyURL     ResolvedValue `json:"calproxy_url"`
	CalProxyTimeout ResolvedValue `json:"calproxy_timeout_seconds"`
	Sink            ResolvedValue `json:"sink"`
	SinkPath        ResolvedValue `json:"sink_path"`
}

// Timeout returns the cal-proxy timeout as a duration; invalid or
// non-positive values fall back to the default.
func (c ResolvedConfig) Timeout() time.Duration {
	if n, err := strconv.Atoi(c.CalProxyTimeout.Value); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return 5 * time.Second
}

type fileConfig struct {
	DBPath       string `yaml:"db_path"`
	AccountsPath string `yaml:"accounts_path"`
	CalProxy     struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"calproxy"`
	Sink struct {
		Kind string `yaml:"kind"`
		Path string `yaml:"path"`
	} `yaml:"sink"`
}

// DefaultConfigPath is ~/.voicelog/config.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".voicelog", "config.yaml")
}

// Resolve loads the config file (when present) and applies env and CLI
// overrides. A missing config file is not an error; a malformed one is.
func Resolve(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath:      path,
		DBPath:          ResolvedValue{Value: DefaultDBPath, Source: SourceDefault, From: "built-in default"},
		CalProxyURL:     ResolvedValue{Value: DefaultCalProxyURL, Source: SourceDefault, From: "built-in default"},
		CalProxyTimeout: ResolvedValue{Value: DefaultCalProxyTimeout, Source: SourceDefault, From: "built-in default"},
		Sink:            ResolvedValue{Value: DefaultSink, Source: SourceDefault, From: "built-in default"},
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}
	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.AccountsPath, cfg.AccountsPath, SourceConfig, path)
		apply(&out.CalProxyURL, cfg.CalProxy.BaseURL, SourceConfig, path)
		if cfg.CalProxy.TimeoutSeconds > 0 {
			apply(&out.CalProxyTimeout, strconv.Itoa(cfg.CalProxy.TimeoutSeconds), SourceConfig, path)
		}
		apply(&out.Sink, cfg.Sink.Kind, SourceConfig, path)
		apply(&out.SinkPath, cfg.Sink.Path, SourceConfig, path)
	}

	applyEnv(&out.DBPath, "VOICELOG_DB")
	applyEnv(&out.DBPath, "VOICELOG_DB_PATH")
	applyEnv(&out.AccountsPath, "VOICELOG_ACCOUNTS")
	applyEnv(&out.CalProxyURL, "VOICELOG_CALPROXY_URL")
	applyEnv(&out.CalProxyTimeout, "VOICELOG_CALPROXY_TIMEOUT")
	applyEnv(&out.Sink, "VOICELOG_SINK")
	applyEnv(&out.SinkPath, "VOICELOG_SINK_PATH")

	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.AccountsPath, opts.CLIAccounts, SourceCLI, "--accounts")
	apply(&out.CalProxyURL, opts.CLICalProxyURL, SourceCLI, "--calproxy")
	apply(&out.CalProxyTimeout, opts.CLICalProxyTimeout, SourceCLI, "--calproxy-timeout")
	apply(&out.Sink, opts.CLISink, SourceCLI, "--sink")
	apply(&out.SinkPath, opts.CLISinkPath, SourceCLI, "--sink-path")

	if err := validateSink(out.Sink.Value); err != nil {
		return out, err
	}

	out.DBPath.Value = expandUserPath(out.DBPath.Value)
	out.AccountsPath.Value = expandUserPath(out.AccountsPath.Value)
	out.SinkPath.Value = expandUserPath(out.SinkPath.Value)

	return out, nil
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

func validateSink(kind string) error {
	switch kind {
	case "calproxy", "file", "none", "":
		return nil
	}
	return fmt.Errorf("unknown sink kind %q (want calproxy, file, or none)", kind)
}

func apply(dst *ResolvedValue, value string, source ValueSource, from string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = ResolvedValue{Value: v, Source: source, From: from}
	}
}

func applyEnv(dst *ResolvedValue, name string) {
	apply(dst, os.Getenv(name), SourceEnv, name)
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

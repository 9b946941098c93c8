package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// SourceConfig holds the per-marketplace settings.
type SourceConfig struct {
	// BaseURL overrides the adapter's default listing host.
	BaseURL string `yaml:"base_url"`
	// Mode selects the fetch engine: "static" (plain HTTP) or "dynamic"
	// (headless Chrome for client-side rendered marketplaces).
	Mode string `yaml:"mode"`
}

// Config holds application configuration values. It is built once at
// startup and treated as immutable afterwards.
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Egress identity
	Proxies          []string
	UserAgents       []string
	RotationInterval time.Duration
	DisableTor       bool

	// Fetching
	HTTPTimeout time.Duration
	Sources     map[string]SourceConfig

	// Retry / pacing / concurrency
	MaxRetries     int
	RetryDelay     time.Duration
	InterItemDelay time.Duration
	Workers        int

	// Headless Chrome
	BrowserHeadless bool

	// MetricsAddr, when set, exposes the Prometheus registry on this
	// address (e.g. ":9090") for the duration of the run.
	MetricsAddr string
}

// Load builds a Config by combining defaults, an optional YAML config
// file, environment variables, and CLI flags (in that precedence order).
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	// Optional config file: flag first, env second.
	path := flagString(cmd, "config")
	if path == "" {
		path = os.Getenv("HARVEST_CONFIG")
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	// Override from environment variables (simple helpers)
	if v := os.Getenv("HARVEST_PROXIES"); v != "" {
		cfg.Proxies = splitList(v)
	}
	if v := os.Getenv("HARVEST_USER_AGENTS"); v != "" {
		cfg.UserAgents = splitList(v)
	}
	if v := os.Getenv("HARVEST_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("HARVEST_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}

	// Read CLI flags if provided
	if cmd != nil {
		if v := flagString(cmd, "proxy"); v != "" {
			cfg.Proxies = []string{v}
		}
		if v := flagString(cmd, "user-agent"); v != "" {
			cfg.UserAgents = []string{v}
		}
		if v := flagString(cmd, "timeout"); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				cfg.HTTPTimeout = d
			}
		}
		if flagString(cmd, "json") == "true" {
			cfg.JSONLog = true
		}
		if flagString(cmd, "verbose") == "true" {
			cfg.LogLevel = "debug"
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func flagString(cmd *cobra.Command, name string) string {
	if cmd == nil {
		return ""
	}
	f := cmd.Flags().Lookup(name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harvest.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	if err := validate(cfg); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("Expected 3 default retries, got %d", cfg.MaxRetries)
	}
	if cfg.RotationInterval != 5*time.Minute {
		t.Errorf("Expected 5m default rotation interval, got %s", cfg.RotationInterval)
	}
	if src, ok := cfg.Sources["ebay"]; !ok || src.Mode != ModeStatic {
		t.Errorf("Expected default ebay source in static mode, got %+v", cfg.Sources)
	}
}

func TestMergeFileOverridesOnlyPresentKeys(t *testing.T) {
	path := writeConfigFile(t, `
log_level: debug
proxies:
  - http://gateway-1:8080
  - http://gateway-2:8080
retry_delay: 1s
workers: 8
sources:
  ebay:
    mode: dynamic
    base_url: https://www.ebay.co.uk
`)

	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		t.Fatalf("mergeFile failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %q", cfg.LogLevel)
	}
	if len(cfg.Proxies) != 2 || cfg.Proxies[0] != "http://gateway-1:8080" {
		t.Errorf("Unexpected proxies: %v", cfg.Proxies)
	}
	if cfg.RetryDelay != time.Second {
		t.Errorf("Expected 1s retry delay, got %s", cfg.RetryDelay)
	}
	if cfg.Workers != 8 {
		t.Errorf("Expected 8 workers, got %d", cfg.Workers)
	}
	if src := cfg.Sources["ebay"]; src.Mode != ModeDynamic || src.BaseURL != "https://www.ebay.co.uk" {
		t.Errorf("Unexpected ebay source config: %+v", src)
	}

	// Keys absent from the file keep their defaults.
	if cfg.MaxRetries != DefaultMaxRetries {
		t.Errorf("Expected default max retries to survive, got %d", cfg.MaxRetries)
	}
	if cfg.HTTPTimeout != DefaultHTTPTimeout {
		t.Errorf("Expected default HTTP timeout to survive, got %s", cfg.HTTPTimeout)
	}
}

func TestMergeFileRejectsBadDuration(t *testing.T) {
	path := writeConfigFile(t, "retry_delay: soon\n")

	cfg := Default()
	if err := cfg.mergeFile(path); err == nil {
		t.Error("Expected error for an unparseable duration")
	}
}

func TestMergeFileMissingFile(t *testing.T) {
	cfg := Default()
	if err := cfg.mergeFile("/nonexistent/harvest.yaml"); err == nil {
		t.Error("Expected error for a missing config file")
	}
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	t.Setenv("HARVEST_PROXIES", "http://p1:3128, http://p2:3128")
	t.Setenv("HARVEST_USER_AGENTS", "agent-a")
	t.Setenv("HARVEST_WORKERS", "6")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Proxies) != 2 || cfg.Proxies[1] != "http://p2:3128" {
		t.Errorf("Unexpected proxies from env: %v", cfg.Proxies)
	}
	if len(cfg.UserAgents) != 1 || cfg.UserAgents[0] != "agent-a" {
		t.Errorf("Unexpected user agents from env: %v", cfg.UserAgents)
	}
	if cfg.Workers != 6 {
		t.Errorf("Expected 6 workers from env, got %d", cfg.Workers)
	}
}

func TestLoadReadsConfigFileFromEnv(t *testing.T) {
	path := writeConfigFile(t, "max_retries: 5\n")
	t.Setenv("HARVEST_CONFIG", path)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("Expected 5 retries from config file, got %d", cfg.MaxRetries)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }},
		{"negative retry delay", func(c *Config) { c.RetryDelay = -time.Second }},
		{"zero rotation interval", func(c *Config) { c.RotationInterval = 0 }},
		{"too many workers", func(c *Config) { c.Workers = MaxWorkers + 1 }},
		{"bad source mode", func(c *Config) {
			c.Sources["ebay"] = SourceConfig{Mode: "quantum"}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

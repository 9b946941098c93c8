package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML surface of Config. Durations are strings in
// Go duration syntax ("5s", "2m"); pointer fields distinguish "absent"
// from zero values so the file only overrides what it mentions.
type fileConfig struct {
	LogLevel *string `yaml:"log_level"`
	JSONLog  *bool   `yaml:"json_log"`

	Proxies          []string `yaml:"proxies"`
	UserAgents       []string `yaml:"user_agents"`
	RotationInterval *string  `yaml:"rotation_interval"`
	DisableTor       *bool    `yaml:"disable_tor"`

	HTTPTimeout *string                 `yaml:"http_timeout"`
	Sources     map[string]SourceConfig `yaml:"sources"`

	MaxRetries     *int    `yaml:"max_retries"`
	RetryDelay     *string `yaml:"retry_delay"`
	InterItemDelay *string `yaml:"inter_item_delay"`
	Workers        *int    `yaml:"workers"`

	BrowserHeadless *bool `yaml:"browser_headless"`

	MetricsAddr *string `yaml:"metrics_addr"`
}

// mergeFile overlays values from a YAML config file onto the receiver.
// Only keys present in the file override the current values.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.JSONLog != nil {
		c.JSONLog = *fc.JSONLog
	}
	if fc.Proxies != nil {
		c.Proxies = fc.Proxies
	}
	if fc.UserAgents != nil {
		c.UserAgents = fc.UserAgents
	}
	if fc.DisableTor != nil {
		c.DisableTor = *fc.DisableTor
	}
	if fc.MaxRetries != nil {
		c.MaxRetries = *fc.MaxRetries
	}
	if fc.Workers != nil {
		c.Workers = *fc.Workers
	}
	if fc.BrowserHeadless != nil {
		c.BrowserHeadless = *fc.BrowserHeadless
	}
	if fc.MetricsAddr != nil {
		c.MetricsAddr = *fc.MetricsAddr
	}
	for name, src := range fc.Sources {
		if c.Sources == nil {
			c.Sources = make(map[string]SourceConfig)
		}
		c.Sources[name] = src
	}

	durations := []struct {
		raw  *string
		dst  *time.Duration
		name string
	}{
		{fc.RotationInterval, &c.RotationInterval, "rotation_interval"},
		{fc.HTTPTimeout, &c.HTTPTimeout, "http_timeout"},
		{fc.RetryDelay, &c.RetryDelay, "retry_delay"},
		{fc.InterItemDelay, &c.InterItemDelay, "inter_item_delay"},
	}
	for _, d := range durations {
		if d.raw == nil {
			continue
		}
		parsed, err := time.ParseDuration(*d.raw)
		if err != nil {
			return fmt.Errorf("config file %s: %s: %w", path, d.name, err)
		}
		*d.dst = parsed
	}

	return nil
}

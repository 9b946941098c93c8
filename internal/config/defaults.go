package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel         = "info"
	DefaultJSONLog          = false
	DefaultHTTPTimeout      = 30 * time.Second
	DefaultRotationInterval = 5 * time.Minute
	DefaultMaxRetries       = 3
	DefaultRetryDelay       = 5 * time.Second
	DefaultInterItemDelay   = 2 * time.Second
	DefaultWorkers          = 4
	MaxWorkers              = 32
	DefaultBrowserHeadless  = true

	ModeStatic  = "static"
	ModeDynamic = "dynamic"
)

// Default returns the baseline configuration before file, env and flag
// overrides.
func Default() *Config {
	return &Config{
		LogLevel:         DefaultLogLevel,
		JSONLog:          DefaultJSONLog,
		RotationInterval: DefaultRotationInterval,
		HTTPTimeout:      DefaultHTTPTimeout,
		MaxRetries:       DefaultMaxRetries,
		RetryDelay:       DefaultRetryDelay,
		InterItemDelay:   DefaultInterItemDelay,
		Workers:          DefaultWorkers,
		BrowserHeadless:  DefaultBrowserHeadless,
		Sources: map[string]SourceConfig{
			"ebay": {Mode: ModeStatic},
		},
	}
}

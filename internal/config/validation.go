package config

import "fmt"

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max retries must be > 0")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}
	if c.InterItemDelay < 0 {
		return fmt.Errorf("inter-item delay cannot be negative")
	}
	if c.RotationInterval <= 0 {
		return fmt.Errorf("rotation interval must be > 0")
	}
	if c.Workers <= 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d", MaxWorkers)
	}
	for name, src := range c.Sources {
		if src.Mode != "" && src.Mode != ModeStatic && src.Mode != ModeDynamic {
			return fmt.Errorf("source %q: mode must be %q or %q", name, ModeStatic, ModeDynamic)
		}
	}
	return nil
}

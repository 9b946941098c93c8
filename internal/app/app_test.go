package app

import (
	"context"
	"testing"

	"github.com/law-makers/harvest/internal/config"
)

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestNewWiresDefaultSource(t *testing.T) {
	a, err := New(config.Default())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close(context.Background())

	adapter, err := a.Registry.Get("ebay")
	if err != nil {
		t.Fatalf("Expected the ebay adapter to be registered: %v", err)
	}
	if adapter.Name() != "ebay" {
		t.Errorf("Expected adapter name ebay, got %q", adapter.Name())
	}

	health := a.Orchestrator.Health()
	if health.TorFallback != 1 {
		t.Errorf("Expected the tor fallback with no static proxies, got %d", health.TorFallback)
	}
	if health.UserAgents == 0 {
		t.Error("Expected the default user agent pool to be populated")
	}
}

func TestNewRejectsUnknownFetchMode(t *testing.T) {
	cfg := config.Default()
	cfg.Sources["ebay"] = config.SourceConfig{Mode: "hybrid"}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close(context.Background())

	if _, err := a.Registry.Get("ebay"); err == nil {
		t.Error("Expected adapter construction to fail for an unknown fetch mode")
	}
}

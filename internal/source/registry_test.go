package source

import (
	"context"
	"testing"

	"github.com/law-makers/harvest/pkg/models"
)

type stubAdapter struct{ name string }

func (s *stubAdapter) FetchByID(ctx context.Context, id string) models.Outcome {
	return models.Failure(models.TargetByID(id), nil)
}

func (s *stubAdapter) FetchByURL(ctx context.Context, url string) models.Outcome {
	return models.Failure(models.TargetByURL(url), nil)
}

func (s *stubAdapter) Name() string { return s.name }

func TestRegistryMemoizesPerKey(t *testing.T) {
	registry := NewRegistry()

	builds := 0
	registry.Register("ebay", func() (Adapter, error) {
		builds++
		return &stubAdapter{name: "ebay"}, nil
	})

	first, err := registry.Get("ebay")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := registry.Get("ebay")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if first != second {
		t.Error("Expected the same adapter instance for the same source type")
	}
	if builds != 1 {
		t.Errorf("Expected one build, got %d", builds)
	}
}

func TestRegistryUnknownSourceFailsFast(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Get("nope"); err == nil {
		t.Error("Expected error for unknown source type")
	}
}

func TestRegistryListActiveAndReset(t *testing.T) {
	registry := NewRegistry()
	registry.Register("ebay", func() (Adapter, error) {
		return &stubAdapter{name: "ebay"}, nil
	})

	if active := registry.ListActive(); len(active) != 0 {
		t.Errorf("Expected no active sources before Get, got %v", active)
	}

	if _, err := registry.Get("ebay"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	active := registry.ListActive()
	if len(active) != 1 || active[0] != "ebay" {
		t.Errorf("Expected [ebay], got %v", active)
	}

	registry.Reset()
	if active := registry.ListActive(); len(active) != 0 {
		t.Errorf("Expected no active sources after Reset, got %v", active)
	}

	// Builders survive Reset.
	if _, err := registry.Get("ebay"); err != nil {
		t.Errorf("Expected Get to work after Reset, got %v", err)
	}
}

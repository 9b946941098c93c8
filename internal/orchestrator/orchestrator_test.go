package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/law-makers/harvest/internal/identity"
	"github.com/law-makers/harvest/internal/source"
	"github.com/law-makers/harvest/pkg/models"
)

// scriptedAdapter returns canned outcomes per target and records every
// attempt together with the egress identity it would have used.
type scriptedAdapter struct {
	mu       sync.Mutex
	proxies  *identity.Pool
	script   func(id string, attempt int) models.Outcome
	attempts map[string]int
	seen     map[string][]string
}

func newScriptedAdapter(proxies *identity.Pool, script func(id string, attempt int) models.Outcome) *scriptedAdapter {
	return &scriptedAdapter{
		proxies:  proxies,
		script:   script,
		attempts: make(map[string]int),
		seen:     make(map[string][]string),
	}
}

func (s *scriptedAdapter) FetchByID(ctx context.Context, id string) models.Outcome {
	s.mu.Lock()
	s.attempts[id]++
	attempt := s.attempts[id]
	s.seen[id] = append(s.seen[id], s.proxies.Current().String())
	s.mu.Unlock()
	return s.script(id, attempt)
}

func (s *scriptedAdapter) FetchByURL(ctx context.Context, url string) models.Outcome {
	return s.FetchByID(ctx, url)
}

func (s *scriptedAdapter) Name() string { return "scripted" }

func (s *scriptedAdapter) attemptCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[id]
}

func networkFailure(id string) models.Outcome {
	target := models.TargetByID(id)
	return models.Failure(target, source.NewError(source.KindNetwork, target, "dial timeout", nil))
}

func validationFailure(id string) models.Outcome {
	target := models.TargetByID(id)
	return models.Failure(target, source.NewError(source.KindValidation, target, "missing required fields: current_price", nil))
}

func successOutcome(id, title string, price float64) models.Outcome {
	return models.Success(models.TargetByID(id), &models.ScrapedRecord{
		ExternalID:   id,
		Title:        title,
		CurrentPrice: price,
		FetchedAt:    time.Now(),
	})
}

func newTestOrchestrator(t *testing.T, proxies []string, agents []string, script func(id string, attempt int) models.Outcome, opts Options) (*Orchestrator, *scriptedAdapter) {
	t.Helper()

	pool, err := identity.NewPool(proxies, identity.Options{})
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	agentPool := identity.NewUserAgentPool(agents, time.Minute)

	adapter := newScriptedAdapter(pool, script)
	registry := source.NewRegistry()
	registry.Register("scripted", func() (source.Adapter, error) { return adapter, nil })

	return New(registry, pool, agentPool, nil, nil, opts), adapter
}

func TestScrapeOneRetryExhaustionBound(t *testing.T) {
	orc, adapter := newTestOrchestrator(t,
		[]string{"http://proxyA:8080", "http://proxyB:8080"}, []string{"uaX"},
		func(id string, attempt int) models.Outcome { return networkFailure(id) },
		Options{MaxRetries: 3, RetryDelay: time.Millisecond},
	)

	outcome := orc.ScrapeOne(context.Background(), models.TargetByID("dead"), "scripted")

	if outcome.OK() {
		t.Fatal("Expected failure for a permanently failing target")
	}
	if got := adapter.attemptCount("dead"); got != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", got)
	}
	if !errors.Is(outcome.Err, source.ErrExhausted) {
		t.Errorf("Expected RETRIES_EXHAUSTED, got %v", outcome.Err)
	}
	if kind := source.LastKind(outcome.Err); kind != source.KindNetwork {
		t.Errorf("Expected last underlying kind NETWORK, got %q", kind)
	}
}

func TestScrapeOneSucceedsOnThirdAttemptWithRotation(t *testing.T) {
	orc, adapter := newTestOrchestrator(t,
		[]string{"http://proxyA:8080", "http://proxyB:8080"}, []string{"uaX"},
		func(id string, attempt int) models.Outcome {
			if attempt < 3 {
				return networkFailure(id)
			}
			return successOutcome(id, "Vintage Lamp", 42.50)
		},
		Options{MaxRetries: 3, RetryDelay: time.Millisecond},
	)

	outcome := orc.ScrapeOne(context.Background(), models.TargetByID("123"), "scripted")

	if !outcome.OK() {
		t.Fatalf("Expected success on the third attempt, got %v", outcome.Err)
	}
	if outcome.Record.ExternalID != "123" || outcome.Record.Title != "Vintage Lamp" || outcome.Record.CurrentPrice != 42.50 {
		t.Errorf("Unexpected record: %+v", outcome.Record)
	}
	if got := adapter.attemptCount("123"); got != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", got)
	}

	seen := adapter.seen["123"]
	if len(seen) != 3 || seen[0] == seen[2] && seen[0] == seen[1] {
		t.Errorf("Expected at least one proxy rotation across attempts, saw %v", seen)
	}
}

func TestScrapeOneValidationFailureIsRetried(t *testing.T) {
	orc, adapter := newTestOrchestrator(t,
		nil, []string{"uaX"},
		func(id string, attempt int) models.Outcome { return validationFailure(id) },
		Options{MaxRetries: 2, RetryDelay: time.Millisecond},
	)

	outcome := orc.ScrapeOne(context.Background(), models.TargetByID("junk"), "scripted")

	if got := adapter.attemptCount("junk"); got != 2 {
		t.Errorf("Expected validation failures to be retried (2 attempts), got %d", got)
	}
	if kind := source.LastKind(outcome.Err); kind != source.KindValidation {
		t.Errorf("Expected last underlying kind VALIDATION, got %q", kind)
	}
}

func TestScrapeOneUnknownSourceFailsFast(t *testing.T) {
	orc, adapter := newTestOrchestrator(t,
		nil, []string{"uaX"},
		func(id string, attempt int) models.Outcome { return successOutcome(id, "t", 1) },
		Options{MaxRetries: 3, RetryDelay: time.Millisecond},
	)

	outcome := orc.ScrapeOne(context.Background(), models.TargetByID("1"), "nope")
	if outcome.OK() {
		t.Fatal("Expected failure for unknown source type")
	}
	if adapter.attemptCount("1") != 0 {
		t.Error("Expected no fetch attempts for an unknown source type")
	}
}

func TestScrapeBatchIsolatesFailures(t *testing.T) {
	orc, _ := newTestOrchestrator(t,
		nil, []string{"uaX"},
		func(id string, attempt int) models.Outcome {
			if id == "2" {
				return validationFailure(id)
			}
			return successOutcome(id, "Item "+id, 10)
		},
		Options{MaxRetries: 2, RetryDelay: time.Millisecond},
	)

	targets := []models.ScrapeTarget{
		models.TargetByID("1"),
		models.TargetByID("2"),
		models.TargetByID("3"),
	}
	outcomes, err := orc.ScrapeBatch(context.Background(), targets, "scripted")
	if err != nil {
		t.Fatalf("ScrapeBatch failed: %v", err)
	}

	if len(outcomes) != 3 {
		t.Fatalf("Expected 3 outcomes, got %d", len(outcomes))
	}
	if !outcomes[0].OK() || outcomes[1].OK() || !outcomes[2].OK() {
		t.Errorf("Expected [success, failure, success], got [%v %v %v]",
			outcomes[0].OK(), outcomes[1].OK(), outcomes[2].OK())
	}
	for i, want := range []string{"1", "2", "3"} {
		if outcomes[i].Target.Value != want {
			t.Errorf("Outcome %d: expected target %s, got %s", i, want, outcomes[i].Target.Value)
		}
	}
}

func TestScrapeBatchReportsProgress(t *testing.T) {
	orc, _ := newTestOrchestrator(t,
		nil, []string{"uaX"},
		func(id string, attempt int) models.Outcome {
			if id == "2" {
				return validationFailure(id)
			}
			return successOutcome(id, "Item "+id, 10)
		},
		Options{MaxRetries: 1, RetryDelay: time.Millisecond},
	)

	var mu sync.Mutex
	var notified []string
	orc.OnProgress(func(o models.Outcome) {
		mu.Lock()
		notified = append(notified, o.Target.Value)
		mu.Unlock()
	})

	targets := []models.ScrapeTarget{
		models.TargetByID("1"),
		models.TargetByID("2"),
		models.TargetByID("3"),
	}
	if _, err := orc.ScrapeBatch(context.Background(), targets, "scripted"); err != nil {
		t.Fatalf("ScrapeBatch failed: %v", err)
	}

	if len(notified) != 3 {
		t.Errorf("Expected one progress callback per target, got %d", len(notified))
	}
}

func TestScrapeBatchEmptyTargetsFailsFast(t *testing.T) {
	orc, _ := newTestOrchestrator(t,
		nil, []string{"uaX"},
		func(id string, attempt int) models.Outcome { return successOutcome(id, "t", 1) },
		Options{},
	)

	if _, err := orc.ScrapeBatch(context.Background(), nil, "scripted"); err == nil {
		t.Error("Expected error for an empty target list")
	}
}

func TestScrapeBatchCancellationPreservesCompleted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	orc, _ := newTestOrchestrator(t,
		nil, []string{"uaX"},
		func(id string, attempt int) models.Outcome {
			calls++
			if calls == 2 {
				cancel()
			}
			return successOutcome(id, "Item "+id, 10)
		},
		Options{MaxRetries: 1, RetryDelay: time.Millisecond},
	)

	targets := []models.ScrapeTarget{
		models.TargetByID("1"),
		models.TargetByID("2"),
		models.TargetByID("3"),
	}
	outcomes, err := orc.ScrapeBatch(ctx, targets, "scripted")

	if err == nil {
		t.Fatal("Expected the context error after mid-batch cancellation")
	}
	if len(outcomes) != 2 {
		t.Fatalf("Expected the 2 completed outcomes to be preserved, got %d", len(outcomes))
	}
	for i, want := range []string{"1", "2"} {
		if !outcomes[i].OK() || outcomes[i].Target.Value != want {
			t.Errorf("Outcome %d: expected completed success for %s, got %+v", i, want, outcomes[i])
		}
	}
}

func TestScrapeAllPreservesInputOrder(t *testing.T) {
	orc, _ := newTestOrchestrator(t,
		nil, []string{"uaX"},
		func(id string, attempt int) models.Outcome {
			if id == "3" {
				return networkFailure(id)
			}
			return successOutcome(id, "Item "+id, 10)
		},
		Options{MaxRetries: 2, RetryDelay: time.Millisecond, Workers: 4},
	)

	ids := []string{"1", "2", "3", "4", "5", "6"}
	targets := make([]models.ScrapeTarget, len(ids))
	for i, id := range ids {
		targets[i] = models.TargetByID(id)
	}

	outcomes, err := orc.ScrapeAll(context.Background(), targets, "scripted")
	if err != nil {
		t.Fatalf("ScrapeAll failed: %v", err)
	}
	if len(outcomes) != len(ids) {
		t.Fatalf("Expected %d outcomes, got %d", len(ids), len(outcomes))
	}

	for i, id := range ids {
		if outcomes[i].Target.Value != id {
			t.Errorf("Outcome %d: expected target %s, got %s", i, id, outcomes[i].Target.Value)
		}
		if id == "3" {
			if !errors.Is(outcomes[i].Err, source.ErrExhausted) {
				t.Errorf("Expected target 3 to exhaust retries, got %v", outcomes[i].Err)
			}
		} else if !outcomes[i].OK() {
			t.Errorf("Expected target %s to succeed, got %v", id, outcomes[i].Err)
		}
	}
}

func TestHealthSnapshot(t *testing.T) {
	orc, _ := newTestOrchestrator(t,
		[]string{"http://proxyA:8080"}, []string{"uaX", "uaY"},
		func(id string, attempt int) models.Outcome { return successOutcome(id, "t", 1) },
		Options{},
	)

	orc.ScrapeOne(context.Background(), models.TargetByID("1"), "scripted")

	health := orc.Health()
	if health.StaticProxies != 1 {
		t.Errorf("Expected 1 static proxy, got %d", health.StaticProxies)
	}
	if health.UserAgents != 2 {
		t.Errorf("Expected 2 user agents, got %d", health.UserAgents)
	}
	if len(health.ActiveSources) != 1 || health.ActiveSources[0] != "scripted" {
		t.Errorf("Expected active sources [scripted], got %v", health.ActiveSources)
	}
}

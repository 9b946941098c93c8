// Package orchestrator drives scrape attempts: it applies the bounded
// retry policy, rotates egress identity between attempts, and batches
// targets with per-item failure isolation.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/law-makers/harvest/internal/identity"
	"github.com/law-makers/harvest/internal/metrics"
	"github.com/law-makers/harvest/internal/ratelimit"
	"github.com/law-makers/harvest/internal/source"
	"github.com/law-makers/harvest/pkg/models"
	"github.com/rs/zerolog/log"
)

// Options tunes the retry and concurrency policy.
type Options struct {
	// MaxRetries is the total attempt budget per target (not additional
	// attempts after the first).
	MaxRetries int
	// RetryDelay is the fixed pause between attempts on the same target.
	RetryDelay time.Duration
	// Workers is the concurrent worker count for ScrapeAll.
	Workers int
}

// DefaultOptions mirrors the conservative sequential defaults.
func DefaultOptions() Options {
	return Options{
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
		Workers:    4,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxRetries <= 0 {
		o.MaxRetries = d.MaxRetries
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = d.RetryDelay
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	return o
}

// Orchestrator is the long-lived entry point of the pipeline. It owns the
// shared pools through the registry's adapters and is safe for concurrent
// use.
type Orchestrator struct {
	registry *source.Registry
	proxies  *identity.Pool
	agents   *identity.UserAgentPool
	pacer    ratelimit.Pacer
	metrics  *metrics.Metrics
	opts     Options
	progress func(models.Outcome)
}

// OnProgress registers a callback invoked after each completed target in
// ScrapeBatch and ScrapeAll. It may be called from multiple goroutines;
// set it before starting a batch.
func (o *Orchestrator) OnProgress(fn func(models.Outcome)) {
	o.progress = fn
}

func (o *Orchestrator) notifyProgress(outcome models.Outcome) {
	if o.progress != nil {
		o.progress(outcome)
	}
}

// New builds an orchestrator. pacer may be nil to disable pacing; metrics
// may be nil.
func New(registry *source.Registry, proxies *identity.Pool, agents *identity.UserAgentPool, pacer ratelimit.Pacer, m *metrics.Metrics, opts Options) *Orchestrator {
	if pacer == nil {
		pacer = ratelimit.Unlimited()
	}
	return &Orchestrator{
		registry: registry,
		proxies:  proxies,
		agents:   agents,
		pacer:    pacer,
		metrics:  m,
		opts:     opts.withDefaults(),
	}
}

// ScrapeOne scrapes a single target with the bounded retry policy.
//
// Every failure kind is retried: transport errors, block pages and
// validation failures alike, since an incomplete page usually means
// soft-blocking. Both pools are rotated before each retry in addition to
// any block-triggered rotation inside the adapter. After the attempt
// budget is spent the last failure is wrapped as RETRIES_EXHAUSTED.
func (o *Orchestrator) ScrapeOne(ctx context.Context, target models.ScrapeTarget, sourceType string) models.Outcome {
	adapter, err := o.registry.Get(sourceType)
	if err != nil {
		return models.Failure(target, err)
	}

	var last models.Outcome
	for attempt := 1; attempt <= o.opts.MaxRetries; attempt++ {
		outcome := o.fetch(ctx, adapter, target)
		if outcome.OK() {
			if attempt > 1 {
				log.Debug().
					Stringer("target", target).
					Int("attempt", attempt).
					Msg("Scrape succeeded after retry")
			}
			o.metrics.IncOutcome("success")
			return outcome
		}
		last = outcome

		log.Warn().
			Stringer("target", target).
			Int("attempt", attempt).
			Int("max_retries", o.opts.MaxRetries).
			Err(outcome.Err).
			Msg("Scrape attempt failed")

		if attempt == o.opts.MaxRetries {
			break
		}

		select {
		case <-time.After(o.opts.RetryDelay):
		case <-ctx.Done():
			o.metrics.IncOutcome("cancelled")
			return models.Failure(target, fmt.Errorf("scrape cancelled: %w", ctx.Err()))
		}

		// Fresh identity for the retry regardless of the failure kind, so
		// a plain network error also gets a new egress fingerprint.
		o.proxies.Rotate()
		o.metrics.IncRotation("proxy", "retry")
		o.agents.Rotate()
		o.metrics.IncRotation("user_agent", "retry")
		o.metrics.IncRetry()
	}

	o.metrics.IncOutcome("exhausted")
	return models.Failure(target, source.NewExhausted(target, o.opts.MaxRetries, last.Err))
}

func (o *Orchestrator) fetch(ctx context.Context, adapter source.Adapter, target models.ScrapeTarget) models.Outcome {
	switch target.Kind {
	case models.TargetURL:
		return adapter.FetchByURL(ctx, target.Value)
	default:
		return adapter.FetchByID(ctx, target.Value)
	}
}

// Health reports the operational snapshot consumed by dashboards.
func (o *Orchestrator) Health() models.Health {
	pools := o.proxies.Health()
	return models.Health{
		StaticProxies: pools.Static,
		TorFallback:   pools.TorFallback,
		UserAgents:    o.agents.Count(),
		ActiveSources: o.registry.ListActive(),
	}
}

// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/harvest/internal/config"
	"github.com/law-makers/harvest/internal/extract"
	"github.com/law-makers/harvest/internal/identity"
	"github.com/law-makers/harvest/internal/metrics"
	"github.com/law-makers/harvest/internal/orchestrator"
	"github.com/law-makers/harvest/internal/ratelimit"
	"github.com/law-makers/harvest/internal/source"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config       *config.Config
	Logger       *zerolog.Logger
	Proxies      *identity.Pool
	UserAgents   *identity.UserAgentPool
	Metrics      *metrics.Metrics
	Registry     *source.Registry
	Orchestrator *orchestrator.Orchestrator
	metricsSrv   *http.Server
	startTime    time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Builds the proxy and user-agent rotation pools
//   - Creates the Prometheus collectors
//   - Registers a lazy adapter builder per configured source
//   - Wires the orchestrator with the retry and pacing policy
//
// If any step fails, an error is returned and no resources are allocated.
func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Initialize logger based on config
	logLevel := zerolog.ErrorLevel // default: suppress non-verbose info logs
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	// Treat "info" as non-verbose (don't display info logs unless -v is used)
	default:
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		// Human-friendly console output otherwise
		logWriter = zerolog.NewConsoleWriter()
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	// Build the egress identity pools
	proxies, err := identity.NewPool(cfg.Proxies, identity.Options{
		RotationInterval: cfg.RotationInterval,
		DisableTor:       cfg.DisableTor,
	})
	if err != nil {
		return nil, fmt.Errorf("building proxy pool: %w", err)
	}
	agents := identity.NewUserAgentPool(cfg.UserAgents, cfg.RotationInterval)
	logger.Debug().
		Int("proxies", len(cfg.Proxies)).
		Int("user_agents", agents.Count()).
		Dur("rotation_interval", cfg.RotationInterval).
		Msg("Identity pools initialized")

	m := metrics.New()

	// Cross-reference cache is shared across adapters so a UPC resolved for
	// one listing serves every later listing.
	xref := extract.NewCrossRef(nil, 0)

	registry := source.NewRegistry()
	for name, src := range cfg.Sources {
		if name != "ebay" {
			logger.Warn().Str("source", name).Msg("No adapter for configured source, skipping")
			continue
		}
		srcCfg := src
		registry.Register(name, func() (source.Adapter, error) {
			fetcher, err := newFetcher(cfg, srcCfg)
			if err != nil {
				return nil, err
			}
			logger.Debug().
				Str("source", "ebay").
				Str("fetcher", fetcher.Name()).
				Msg("Source adapter initialized")
			return source.NewEbay(srcCfg.BaseURL, fetcher, proxies, agents, xref, m), nil
		})
	}

	orc := orchestrator.New(registry, proxies, agents,
		ratelimit.FromInterval(cfg.InterItemDelay),
		m,
		orchestrator.Options{
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Workers:    cfg.Workers,
		},
	)

	app := &Application{
		Config:       cfg,
		Logger:       &logger,
		Proxies:      proxies,
		UserAgents:   agents,
		Metrics:      m,
		Registry:     registry,
		Orchestrator: orc,
		startTime:    time.Now(),
	}

	// Expose collectors for the duration of the run when requested. Long
	// concurrent batches are the use case; one-off invocations leave this
	// unset.
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
		app.metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := app.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn().Err(err).Str("addr", cfg.MetricsAddr).Msg("Metrics listener failed")
			}
		}()
		logger.Debug().Str("addr", cfg.MetricsAddr).Msg("Metrics endpoint started")
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

func newFetcher(cfg *config.Config, src config.SourceConfig) (source.Fetcher, error) {
	switch src.Mode {
	case config.ModeDynamic:
		return source.NewDynamicFetcher(cfg.HTTPTimeout, cfg.BrowserHeadless), nil
	case config.ModeStatic, "":
		return source.NewStaticFetcher(cfg.HTTPTimeout), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode %q", src.Mode)
	}
}

// ProbeIdentity checks that the current egress identity can reach the
// outside world. Used by the health command.
func (a *Application) ProbeIdentity(ctx context.Context) error {
	return identity.Probe(ctx, a.Proxies.Current(), identity.DefaultProbeEndpoint, a.Config.HTTPTimeout)
}

// Close gracefully shuts down the application. Headless Chrome contexts
// are scoped per fetch, so only the metrics listener needs draining.
func (a *Application) Close(ctx context.Context) error {
	if a.metricsSrv != nil {
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Error stopping metrics listener")
		}
	}

	uptime := time.Since(a.startTime)
	a.Logger.Info().Dur("uptime", uptime).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}

package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/twingraph-backend/internal/config"
	httpserver "github.com/yungbote/twingraph-backend/internal/http"
	"github.com/yungbote/twingraph-backend/internal/observability"
	"github.com/yungbote/twingraph-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	Metrics  *observability.Metrics
	Clients  Clients
	Services Services
	Server   *httpserver.Server

	otelShutdown func(context.Context) error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.NewWithOptions(logger.Options{
		Mode:   cfg.App.LogMode,
		Level:  cfg.App.LogLevel,
		Redact: cfg.App.LogRedaction,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log = log.With("service", cfg.App.Name, "env", cfg.App.Environment)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
		Version:     cfg.App.Version,
		Telemetry:   cfg.Telemetry,
	})

	var metrics *observability.Metrics
	if cfg.Telemetry.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, err
	}

	serviceset := wireServices(log, clients, metrics)
	handlerset := wireHandlers(log, cfg, serviceset)
	server := wireServer(log, cfg, metrics, handlerset)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Metrics:      metrics,
		Clients:      clients,
		Services:     serviceset,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP and watches store reachability until ctx is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Server.Run(gctx)
	})
	g.Go(func() error {
		return watchStore(gctx, a.Log, a.Services.Graph, a.Cfg.App.StoreHealthInterval)
	})
	return g.Wait()
}

// Close releases the store driver, cache connection and tracer provider.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	var g errgroup.Group
	if a.Clients.Neo4j != nil {
		g.Go(func() error { return a.Clients.Neo4j.Close(ctx) })
	}
	if a.Clients.Redis != nil {
		g.Go(a.Clients.Redis.Close)
	}
	if a.otelShutdown != nil {
		g.Go(func() error { return a.otelShutdown(ctx) })
	}
	if err := g.Wait(); err != nil && a.Log != nil {
		a.Log.Warn("shutdown incomplete", "error", err)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

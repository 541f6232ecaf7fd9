package app

import (
	"github.com/yungbote/twingraph-backend/internal/config"
	httpserver "github.com/yungbote/twingraph-backend/internal/http"
	"github.com/yungbote/twingraph-backend/internal/observability"
	"github.com/yungbote/twingraph-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg *config.Config, metrics *observability.Metrics, handlers Handlers) *httpserver.Server {
	serviceName := ""
	if cfg.Telemetry.TracingEnabled {
		serviceName = cfg.App.Name
	}
	return httpserver.NewServer(cfg.Addr(), cfg.HTTP.ShutdownTimeout, log, httpserver.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		HealthHandler:  handlers.Health,
		GraphHandler:   handlers.Graph,
	})
}

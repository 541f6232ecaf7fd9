package app

import (
	"github.com/yungbote/twingraph-backend/internal/config"
	"github.com/yungbote/twingraph-backend/internal/http/handlers"
	"github.com/yungbote/twingraph-backend/internal/platform/logger"
)

type Handlers struct {
	Health *handlers.HealthHandler
	Graph  *handlers.GraphHandler
}

func wireHandlers(log *logger.Logger, cfg *config.Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: handlers.NewHealthHandler(services.Graph),
		Graph:  handlers.NewGraphHandler(log, services.Graph, cfg.HTTP.MaxRequestBytes),
	}
}

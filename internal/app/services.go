package app

import (
	"github.com/yungbote/twingraph-backend/internal/data/cache"
	"github.com/yungbote/twingraph-backend/internal/observability"
	"github.com/yungbote/twingraph-backend/internal/platform/logger"
	"github.com/yungbote/twingraph-backend/internal/services"
)

type Services struct {
	Graph services.GraphService
}

func wireServices(log *logger.Logger, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	var impactCache cache.ImpactCache
	if clients.Redis != nil {
		impactCache = clients.Redis
	}
	return Services{
		Graph: services.NewGraphService(log, clients.Store, impactCache, metrics),
	}
}

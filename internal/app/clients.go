package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/twingraph-backend/internal/config"
	"github.com/yungbote/twingraph-backend/internal/data/cache"
	"github.com/yungbote/twingraph-backend/internal/data/graph"
	"github.com/yungbote/twingraph-backend/internal/platform/logger"
	"github.com/yungbote/twingraph-backend/internal/platform/neo4jdb"
)

type Clients struct {
	Neo4j *neo4jdb.Client
	Redis *cache.RedisImpactCache
	Store graph.Store
}

func wireClients(ctx context.Context, log *logger.Logger, cfg *config.Config) (Clients, error) {
	log.Info("Wiring clients...", "store_backend", cfg.App.StoreBackend)

	var out Clients
	switch cfg.App.StoreBackend {
	case config.StoreBackendMemory:
		log.Warn("using in-memory graph store; data is lost on exit")
		out.Store = graph.NewMemoryStore()
	default:
		client, err := neo4jdb.New(ctx, cfg.Neo4j, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init neo4j: %w", err)
		}
		client.EnsureSchema(ctx)
		out.Neo4j = client
		out.Store = graph.NewNeo4jStore(client, log)
	}

	// Redis is optional; without it impact queries always hit the store.
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn("impact cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			out.Redis = rc
		}
	}
	return out, nil
}

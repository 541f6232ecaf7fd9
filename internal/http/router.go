package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/twingraph-backend/internal/http/handlers"
	httpMW "github.com/yungbote/twingraph-backend/internal/http/middleware"
	"github.com/yungbote/twingraph-backend/internal/observability"
	"github.com/yungbote/twingraph-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string

	HealthHandler *httpH.HealthHandler
	GraphHandler  *httpH.GraphHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(httpMW.CORS(cfg.AllowedOrigins))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
		r.GET("/health/store", cfg.HealthHandler.StoreHealth)
		r.GET("/health/neo4j", cfg.HealthHandler.StoreHealth)
	}

	// Dependency graph
	if cfg.GraphHandler != nil {
		r.POST("/seed", cfg.GraphHandler.Seed)
		r.GET("/graph", cfg.GraphHandler.GetGraph)
		r.GET("/impact", cfg.GraphHandler.Impact)
		r.POST("/ingest", cfg.GraphHandler.Ingest)
	}

	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	return r
}

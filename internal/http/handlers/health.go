package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/twingraph-backend/internal/http/response"
	"github.com/yungbote/twingraph-backend/internal/services"
)

type HealthHandler struct {
	graph services.GraphService
}

func NewHealthHandler(graph services.GraphService) *HealthHandler {
	return &HealthHandler{graph: graph}
}

// GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response.RespondOK(c, gin.H{"status": "ok"})
}

// GET /health/store
// Always 200: an unreachable store is reported in the body, not as a failed request.
func (h *HealthHandler) StoreHealth(c *gin.Context) {
	response.RespondOK(c, gin.H{"store": h.graph.StoreHealth(c.Request.Context())})
}

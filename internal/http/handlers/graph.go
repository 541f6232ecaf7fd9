package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/twingraph-backend/internal/domain"
	"github.com/yungbote/twingraph-backend/internal/http/response"
	"github.com/yungbote/twingraph-backend/internal/platform/apierr"
	"github.com/yungbote/twingraph-backend/internal/platform/logger"
	"github.com/yungbote/twingraph-backend/internal/services"
)

type GraphHandler struct {
	log             *logger.Logger
	graph           services.GraphService
	maxRequestBytes int64
}

func NewGraphHandler(log *logger.Logger, graph services.GraphService, maxRequestBytes int64) *GraphHandler {
	return &GraphHandler{
		log:             log.With("handler", "GraphHandler"),
		graph:           graph,
		maxRequestBytes: maxRequestBytes,
	}
}

type ingestRequest struct {
	Text *string `json:"text" binding:"required"`
}

type ingestResponse struct {
	Status         string `json:"status"`
	LinesProcessed int    `json:"lines_processed"`
}

type graphResponse struct {
	Edges []domain.Edge `json:"edges"`
}

type impactResponse struct {
	ImpactedComponents []string `json:"impacted_components"`
}

// POST /seed
func (h *GraphHandler) Seed(c *gin.Context) {
	if err := h.graph.Seed(c.Request.Context()); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "seeded"})
}

// GET /graph
func (h *GraphHandler) GetGraph(c *gin.Context) {
	edges, err := h.graph.ListEdges(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, graphResponse{Edges: edges})
}

// GET /impact?component=Name
func (h *GraphHandler) Impact(c *gin.Context) {
	component, ok := c.GetQuery("component")
	if !ok {
		response.RespondErr(c, apierr.BadRequest(errors.New("missing query parameter: component")))
		return
	}
	names, err := h.graph.Impact(c.Request.Context(), component)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, impactResponse{ImpactedComponents: names})
}

// POST /ingest  {"text": "A -> B\nB -> C"}
func (h *GraphHandler) Ingest(c *gin.Context) {
	if h.maxRequestBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestBytes)
	}
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug("rejected ingest body", "error", err)
		response.RespondErr(c, apierr.BadRequest(errors.New("request body must be a JSON object with a string field \"text\"")))
		return
	}
	report, err := h.graph.Ingest(c.Request.Context(), *req.Text)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, ingestResponse{Status: "ingested", LinesProcessed: report.LinesProcessed})
}

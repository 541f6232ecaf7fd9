package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/twingraph-backend/internal/data/graph"
	httpH "github.com/yungbote/twingraph-backend/internal/http/handlers"
	"github.com/yungbote/twingraph-backend/internal/observability"
	"github.com/yungbote/twingraph-backend/internal/platform/logger"
	"github.com/yungbote/twingraph-backend/internal/services"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	metrics := observability.NewMetrics()
	svc := services.NewGraphService(log, graph.NewMemoryStore(), nil, metrics)
	return NewRouter(RouterConfig{
		Log:            log,
		Metrics:        metrics,
		AllowedOrigins: []string{"http://localhost:3000"},
		HealthHandler:  httpH.NewHealthHandler(svc),
		GraphHandler:   httpH.NewGraphHandler(log, svc, 1<<20),
	})
}

func TestRouterRegistersRoutes(t *testing.T) {
	r := testRouter(t)

	routes := []struct {
		method, path string
	}{
		{http.MethodGet, "/health"},
		{http.MethodGet, "/health/store"},
		{http.MethodGet, "/health/neo4j"},
		{http.MethodPost, "/seed"},
		{http.MethodGet, "/graph"},
		{http.MethodGet, "/impact?component=API"},
		{http.MethodGet, "/metrics"},
	}
	for _, rt := range routes {
		req := httptest.NewRequest(rt.method, rt.path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s %s: status=%d body=%s", rt.method, rt.path, rr.Code, rr.Body.String())
		}
	}
}

func TestRouterMetricsExposeRequests(t *testing.T) {
	r := testRouter(t)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/graph", nil))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `route="/graph"`) {
		t.Fatalf("expected /graph in metrics output:\n%s", rr.Body.String())
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	r := testRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected X-Request-Id header")
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	r := testRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}
}

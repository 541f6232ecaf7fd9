package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/twingraph-backend/internal/data/graph"
	"github.com/yungbote/twingraph-backend/internal/domain"
	"github.com/yungbote/twingraph-backend/internal/platform/apierr"
	"github.com/yungbote/twingraph-backend/internal/platform/logger"
	"github.com/yungbote/twingraph-backend/internal/services"
)

type brokenGraphService struct{}

func (brokenGraphService) Seed(context.Context) error { return storeDown() }
func (brokenGraphService) ApplyEdges(context.Context, []domain.Edge) error {
	return storeDown()
}
func (brokenGraphService) Ingest(context.Context, string) (services.IngestReport, error) {
	return services.IngestReport{}, storeDown()
}
func (brokenGraphService) ListEdges(context.Context) ([]domain.Edge, error) {
	return nil, storeDown()
}
func (brokenGraphService) Impact(context.Context, string) ([]string, error) {
	return nil, storeDown()
}
func (brokenGraphService) StoreHealth(context.Context) string { return services.StoreBad }

func storeDown() error {
	return apierr.StoreFailure(errors.New("neo4j: connection refused at 10.0.0.7:7687"))
}

func newTestEngine(t *testing.T, svc services.GraphService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	graphH := NewGraphHandler(logger.Nop(), svc, 1<<10)
	healthH := NewHealthHandler(svc)

	r := gin.New()
	r.GET("/health", healthH.HealthCheck)
	r.GET("/health/store", healthH.StoreHealth)
	r.POST("/seed", graphH.Seed)
	r.GET("/graph", graphH.GetGraph)
	r.GET("/impact", graphH.Impact)
	r.POST("/ingest", graphH.Ingest)
	return r
}

func newMemoryEngine(t *testing.T) *gin.Engine {
	t.Helper()
	svc := services.NewGraphService(logger.Nop(), graph.NewMemoryStore(), nil, nil)
	return newTestEngine(t, svc)
}

func do(t *testing.T, r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(out); err != nil {
		t.Fatalf("decode: %v body=%s", err, rr.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	r := newMemoryEngine(t)

	rr := do(t, r, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var out map[string]string
	decode(t, rr, &out)
	if out["status"] != "ok" {
		t.Fatalf("unexpected body: %+v", out)
	}
}

func TestStoreHealth(t *testing.T) {
	cases := []struct {
		name string
		svc  services.GraphService
		want string
	}{
		{"reachable", services.NewGraphService(logger.Nop(), graph.NewMemoryStore(), nil, nil), services.StoreOK},
		{"unreachable", brokenGraphService{}, services.StoreBad},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, newTestEngine(t, tc.svc), http.MethodGet, "/health/store", "")
			if rr.Code != http.StatusOK {
				t.Fatalf("status=%d", rr.Code)
			}
			var out map[string]string
			decode(t, rr, &out)
			if out["store"] != tc.want {
				t.Fatalf("store=%q want %q", out["store"], tc.want)
			}
		})
	}
}

func TestSeedThenGraphThenImpact(t *testing.T) {
	r := newMemoryEngine(t)

	rr := do(t, r, http.MethodPost, "/seed", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("seed status=%d body=%s", rr.Code, rr.Body.String())
	}
	var seeded map[string]string
	decode(t, rr, &seeded)
	if seeded["status"] != "seeded" {
		t.Fatalf("unexpected seed body: %+v", seeded)
	}

	rr = do(t, r, http.MethodGet, "/graph", "")
	var g struct {
		Edges []domain.Edge `json:"edges"`
	}
	decode(t, rr, &g)
	if len(g.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %+v", g.Edges)
	}

	rr = do(t, r, http.MethodGet, "/impact?component=Frontend", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("impact status=%d", rr.Code)
	}
	var impact struct {
		ImpactedComponents []string `json:"impacted_components"`
	}
	decode(t, rr, &impact)
	got := map[string]bool{}
	for _, n := range impact.ImpactedComponents {
		got[n] = true
	}
	if len(got) != 2 || !got["API"] || !got["Database"] {
		t.Fatalf("unexpected impact: %+v", impact.ImpactedComponents)
	}
}

func TestGraphEmptyIsArray(t *testing.T) {
	rr := do(t, newMemoryEngine(t), http.MethodGet, "/graph", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != `{"edges":[]}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestImpactUnknownComponentIsEmptyArray(t *testing.T) {
	rr := do(t, newMemoryEngine(t), http.MethodGet, "/impact?component=NonExistent", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != `{"impacted_components":[]}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestImpactMissingComponent(t *testing.T) {
	rr := do(t, newMemoryEngine(t), http.MethodGet, "/impact", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rr.Code)
	}
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, rr, &env)
	if env.Error.Code != apierr.CodeInvalidRequest {
		t.Fatalf("code=%q", env.Error.Code)
	}
}

func TestIngest(t *testing.T) {
	r := newMemoryEngine(t)

	body := `{"text":"Frontend -> API\nAPI -> Database\n\nbadline\nFrontend->API"}`
	rr := do(t, r, http.MethodPost, "/ingest", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		Status         string `json:"status"`
		LinesProcessed int    `json:"lines_processed"`
	}
	decode(t, rr, &out)
	if out.Status != "ingested" || out.LinesProcessed != 5 {
		t.Fatalf("unexpected body: %+v", out)
	}

	rr = do(t, r, http.MethodGet, "/graph", "")
	var g struct {
		Edges []domain.Edge `json:"edges"`
	}
	decode(t, rr, &g)
	if len(g.Edges) != 2 {
		t.Fatalf("expected 2 distinct edges, got %+v", g.Edges)
	}
}

func TestIngestEmptyText(t *testing.T) {
	rr := do(t, newMemoryEngine(t), http.MethodPost, "/ingest", `{"text":""}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		LinesProcessed int `json:"lines_processed"`
	}
	decode(t, rr, &out)
	if out.LinesProcessed != 0 {
		t.Fatalf("lines_processed=%d", out.LinesProcessed)
	}
}

func TestIngestRejectsBadBodies(t *testing.T) {
	bodies := map[string]string{
		"missing text": `{}`,
		"null text":    `{"text":null}`,
		"wrong type":   `{"text":42}`,
		"not json":     `A -> B`,
		"too large":    `{"text":"` + strings.Repeat("x", 2<<10) + `"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rr := do(t, newMemoryEngine(t), http.MethodPost, "/ingest", body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestStoreFailuresAre500WithoutInternals(t *testing.T) {
	r := newTestEngine(t, brokenGraphService{})

	requests := []struct {
		method, target, body string
	}{
		{http.MethodPost, "/seed", ""},
		{http.MethodGet, "/graph", ""},
		{http.MethodGet, "/impact?component=A", ""},
		{http.MethodPost, "/ingest", `{"text":"A->B"}`},
	}
	for _, req := range requests {
		t.Run(req.target, func(t *testing.T) {
			rr := do(t, r, req.method, req.target, req.body)
			if rr.Code != http.StatusInternalServerError {
				t.Fatalf("status=%d", rr.Code)
			}
			if strings.Contains(rr.Body.String(), "10.0.0.7") {
				t.Fatalf("response leaked store details: %s", rr.Body.String())
			}
			var env struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			decode(t, rr, &env)
			if env.Error.Code != apierr.CodeStoreQuery {
				t.Fatalf("code=%q", env.Error.Code)
			}
		})
	}
}

type unreachableGraphService struct{ brokenGraphService }

func (unreachableGraphService) ListEdges(context.Context) ([]domain.Edge, error) {
	return nil, apierr.StoreUnavailable(errors.New("dial tcp 10.0.0.7:7687: connection refused"))
}

func TestUnreachableStoreIs500WithUnavailableCode(t *testing.T) {
	rr := do(t, newTestEngine(t, unreachableGraphService{}), http.MethodGet, "/graph", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "10.0.0.7") {
		t.Fatalf("response leaked store details: %s", rr.Body.String())
	}
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, rr, &env)
	if env.Error.Code != apierr.CodeStoreUnavailable {
		t.Fatalf("code=%q", env.Error.Code)
	}
}

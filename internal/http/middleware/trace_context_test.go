package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/twingraph-backend/internal/platform/ctxutil"
)

func traceEngine(seen **ctxutil.TraceData, pre ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(pre...)
	r.Use(AttachTraceContext())
	r.GET("/health", func(c *gin.Context) {
		*seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return r
}

func TestAttachTraceContextEchoesHeaders(t *testing.T) {
	var seen *ctxutil.TraceData
	r := traceEngine(&seen)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, "req-1")
	req.Header.Set(headerTraceID, "trace-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil {
		t.Fatal("trace data missing from request context")
	}
	if seen.RequestID != "req-1" || seen.TraceID != "trace-1" {
		t.Fatalf("unexpected trace data: %+v", seen)
	}
	if got := rec.Header().Get(headerRequestID); got != "req-1" {
		t.Fatalf("request id header: got=%q", got)
	}
}

func TestAttachTraceContextGeneratesIDs(t *testing.T) {
	var seen *ctxutil.TraceData
	r := traceEngine(&seen)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Header().Get(headerRequestID) == "" {
		t.Fatal("expected generated request id")
	}
	if rec.Header().Get(headerTraceID) == "" {
		t.Fatal("expected generated trace id")
	}
}

func TestAttachTraceContextPrefersSpanTraceID(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	if err != nil {
		t.Fatalf("trace id: %v", err)
	}
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	if err != nil {
		t.Fatalf("span id: %v", err)
	}
	withSpan := func(c *gin.Context) {
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		c.Request = c.Request.WithContext(trace.ContextWithSpanContext(c.Request.Context(), sc))
		c.Next()
	}

	var seen *ctxutil.TraceData
	r := traceEngine(&seen, withSpan)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerTraceID, "client-chosen")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.TraceID != traceID.String() {
		t.Fatalf("expected span trace id %s, got %+v", traceID, seen)
	}
	if got := rec.Header().Get(headerTraceID); got != traceID.String() {
		t.Fatalf("trace id header: got=%q", got)
	}
}

func TestAttachTraceContextRejectsUnsafeClientIDs(t *testing.T) {
	var seen *ctxutil.TraceData
	r := traceEngine(&seen)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, strings.Repeat("a", maxClientIDLen+1))
	req.Header.Set(headerTraceID, "bad\x01id")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if seen == nil {
		t.Fatal("trace data missing from request context")
	}
	if len(seen.RequestID) > maxClientIDLen {
		t.Fatalf("oversized request id kept: %d bytes", len(seen.RequestID))
	}
	if seen.TraceID == "bad\x01id" {
		t.Fatal("control characters kept in trace id")
	}
}

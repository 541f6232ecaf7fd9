package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/twingraph-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxClientIDLen = 128
)

// AttachTraceContext stores request and trace ids on the request context for logging.
// An active span's trace id takes precedence over a client-supplied X-Trace-Id so log lines
// always join up with exported spans. The request id and route are recorded on that span.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := clientID(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}

		span := trace.SpanFromContext(c.Request.Context())
		var traceID string
		if sc := span.SpanContext(); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		} else if traceID = clientID(c.GetHeader(headerTraceID)); traceID == "" {
			traceID = uuid.NewString()
		}

		span.SetAttributes(
			attribute.String("http.request_id", reqID),
			attribute.String("twingraph.route", c.FullPath()),
		)

		ctx := ctxutil.WithTraceData(c.Request.Context(), &ctxutil.TraceData{
			TraceID:   traceID,
			RequestID: reqID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Header(headerTraceID, traceID)
		c.Header(headerRequestID, reqID)
		c.Next()
	}
}

// clientID accepts a caller-provided id only when it is short printable ASCII, so a header
// cannot inject control characters or unbounded text into logs.
func clientID(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" || len(v) > maxClientIDLen {
		return ""
	}
	for i := 0; i < len(v); i++ {
		if v[i] < 0x21 || v[i] > 0x7e {
			return ""
		}
	}
	return v
}

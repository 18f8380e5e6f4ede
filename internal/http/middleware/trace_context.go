package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/optima-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxCorrelationIDLen = 128
)

// AttachTraceContext gives every request a request id and trace id, echoed in
// the response headers and tagged on the active span. Client supplied ids are
// only kept when they are short printable tokens; anything else is replaced.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span := trace.SpanFromContext(ctx)

		reqID, ok := correlationID(c.GetHeader(headerRequestID))
		if !ok {
			reqID = uuid.New().String()
		}

		var traceID string
		if sc := span.SpanContext(); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		} else if id, ok := correlationID(c.GetHeader(headerTraceID)); ok {
			traceID = id
		} else {
			traceID = uuid.New().String()
		}

		span.SetAttributes(attribute.String("http.request_id", reqID))

		ctx = ctxutil.WithTraceData(ctx, &ctxutil.TraceData{
			TraceID:   traceID,
			RequestID: reqID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set("trace_id", traceID)
		c.Set("request_id", reqID)
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}

// correlationID accepts [A-Za-z0-9._:-] up to maxCorrelationIDLen bytes.
func correlationID(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || len(s) > maxCorrelationIDLen {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.', ch == ':':
		default:
			return "", false
		}
	}
	return s, true
}

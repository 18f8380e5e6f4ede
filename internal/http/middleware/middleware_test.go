package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/yungbote/optima-backend/internal/observability"
	"github.com/yungbote/optima-backend/internal/platform/ctxutil"
	"github.com/yungbote/optima-backend/internal/platform/logger"
)

func TestAttachTraceContextGeneratesIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/healthcheck", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	if seen == nil {
		t.Fatal("trace data not attached")
	}
	if _, err := uuid.Parse(seen.RequestID); err != nil {
		t.Fatalf("request id %q: %v", seen.RequestID, err)
	}
	if rec.Header().Get(headerRequestID) != seen.RequestID || rec.Header().Get(headerTraceID) != seen.TraceID {
		t.Fatalf("headers=%v", rec.Header())
	}
}

func TestAttachTraceContextKeepsIncomingIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set(headerRequestID, "req-1")
	req.Header.Set(headerTraceID, "trace-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Header().Get(headerRequestID) != "req-1" || rec.Header().Get(headerTraceID) != "trace-1" {
		t.Fatalf("headers=%v", rec.Header())
	}
}

func TestAttachTraceContextReplacesUnsafeIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := map[string]string{
		"too long":     strings.Repeat("a", maxCorrelationIDLen+1),
		"spaces":       "req 1",
		"control char": "req\x01",
		"injection":    "req\"}{",
	}
	for name, id := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
			req.Header[headerRequestID] = []string{id}
			req.Header[headerTraceID] = []string{id}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if _, err := uuid.Parse(rec.Header().Get(headerRequestID)); err != nil {
				t.Fatalf("request id %q was not replaced", rec.Header().Get(headerRequestID))
			}
			if _, err := uuid.Parse(rec.Header().Get(headerTraceID)); err != nil {
				t.Fatalf("trace id %q was not replaced", rec.Header().Get(headerTraceID))
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set(headerRequestID, strings.Repeat("b", maxCorrelationIDLen))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Header().Get(headerRequestID) != strings.Repeat("b", maxCorrelationIDLen) {
		t.Fatalf("id at the length limit should be kept, got %q", rec.Header().Get(headerRequestID))
	}
}

func TestAttachTraceContextTagsSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx, span := tp.Tracer("test").Start(c.Request.Context(), "GET /healthcheck")
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/healthcheck", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set(headerRequestID, "req-42")
	req.Header.Set(headerTraceID, "client-trace")
	r.ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("spans=%d", len(spans))
	}
	if seen == nil || seen.TraceID != spans[0].SpanContext().TraceID().String() {
		t.Fatalf("trace id %v does not match span %s", seen, spans[0].SpanContext().TraceID())
	}
	want := attribute.String("http.request_id", "req-42")
	for _, kv := range spans[0].Attributes() {
		if kv == want {
			return
		}
	}
	t.Fatalf("span attributes=%v", spans[0].Attributes())
}

func TestMetricsMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m), RequestLogger(logger.Nop()))
	r.POST("/schedule", func(c *gin.Context) { c.Status(http.StatusCreated) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/schedule", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	var b strings.Builder
	if err := m.WritePrometheus(&b); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, `optima_api_requests_total{method="POST",route="/schedule",status="201"} 1`) {
		t.Fatalf("missing schedule series:\n%s", out)
	}
	if !strings.Contains(out, `route="unmatched",status="404"`) {
		t.Fatalf("missing unmatched series:\n%s", out)
	}
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/parse_input", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	for body, want := range map[string]int{"short": http.StatusOK, "much too long": http.StatusRequestEntityTooLarge} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/parse_input", strings.NewReader(body)))
		if rec.Code != want {
			t.Fatalf("body %q: status=%d want %d", body, rec.Code, want)
		}
	}
}

package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/optima-backend/internal/http/handlers"
	httpMW "github.com/yungbote/optima-backend/internal/http/middleware"
	"github.com/yungbote/optima-backend/internal/observability"
	"github.com/yungbote/optima-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	MaxBodyBytes   int64

	// Metrics mounts GET /metrics when non-nil.
	Metrics *observability.Metrics

	HealthHandler   *httpH.HealthHandler
	ScheduleHandler *httpH.ScheduleHandler
	IntakeHandler   *httpH.IntakeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.BodyLimit(cfg.MaxBodyBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	// Planner
	if cfg.ScheduleHandler != nil {
		r.POST("/schedule", cfg.ScheduleHandler.Generate)
	}
	if cfg.IntakeHandler != nil {
		r.POST("/parse_input", cfg.IntakeHandler.ParseInput)
	}

	return r
}

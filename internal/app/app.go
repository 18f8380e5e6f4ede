package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/optima-backend/internal/config"
	apphttp "github.com/yungbote/optima-backend/internal/http"
	"github.com/yungbote/optima-backend/internal/observability"
	"github.com/yungbote/optima-backend/internal/platform/logger"
)

type App struct {
	Log     *logger.Logger
	Config  *config.Config
	Metrics *observability.Metrics

	server       *apphttp.Server
	clients      Clients
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithConfig(cfg, log, time.Now)
}

// NewWithConfig wires the application from an already loaded configuration.
// clock drives schedule generation; nil means time.Now.
func NewWithConfig(cfg *config.Config, log *logger.Logger, clock func() time.Time) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if log == nil {
		log = logger.Nop()
	}

	otelShutdown := observability.InitOTel(context.Background(), log, cfg.Env, cfg.Otel)

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = otelShutdown(context.Background())
		log.Sync()
		return nil, err
	}

	serviceset := wireServices(log, cfg, clients, metrics, clock)
	handlerset := wireHandlers(log, serviceset)

	server := apphttp.NewServer(cfg.HTTP, apphttp.RouterConfig{
		Log:             log,
		ServiceName:     cfg.Otel.ServiceName,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		MaxBodyBytes:    cfg.HTTP.MaxRequestBytes,
		Metrics:         metrics,
		HealthHandler:   handlerset.Health,
		ScheduleHandler: handlerset.Schedule,
		IntakeHandler:   handlerset.Intake,
	})

	return &App{
		Log:          log,
		Config:       cfg,
		Metrics:      metrics,
		server:       server,
		clients:      clients,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Run serves until ctx is cancelled or the listener fails, then shuts the
// server down within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.Config.HTTP.Addr, err)
	}
	return a.Serve(ctx, ln)
}

func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	a.Log.Info("http server listening", "addr", ln.Addr().String(), "engine", a.Config.Engine.Type)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("http server shutting down")
		return a.server.Shutdown(context.Background(), a.Config.HTTP.ShutdownTimeout.Duration)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.clients.IntakeCache != nil {
		if err := a.clients.IntakeCache.Close(); err != nil {
			a.Log.Warn("intake cache close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

package app

import (
	"fmt"

	"github.com/yungbote/optima-backend/internal/config"
	"github.com/yungbote/optima-backend/internal/inference/engine"
	"github.com/yungbote/optima-backend/internal/inference/engine/mock"
	"github.com/yungbote/optima-backend/internal/inference/engine/oaihttp"
	"github.com/yungbote/optima-backend/internal/platform/logger"
	"github.com/yungbote/optima-backend/internal/services"
)

type Clients struct {
	Engine      engine.Engine
	IntakeCache services.IntakeCache
}

func wireClients(log *logger.Logger, cfg *config.Config) (Clients, error) {
	var out Clients

	switch cfg.Engine.Type {
	case "mock":
		out.Engine = mock.New()
	case "oai_http":
		e, err := oaihttp.New(cfg.Engine)
		if err != nil {
			return Clients{}, fmt.Errorf("init llm engine: %w", err)
		}
		out.Engine = e
	default:
		return Clients{}, fmt.Errorf("unsupported engine type %q", cfg.Engine.Type)
	}
	log.Info("llm engine ready", "type", cfg.Engine.Type, "model", cfg.Engine.Model, "base_url", cfg.Engine.BaseURL)

	out.IntakeCache = services.NewNoopIntakeCache()
	if cfg.Cache.RedisAddr != "" {
		cache, err := services.NewRedisIntakeCache(log, cfg.Cache)
		if err != nil {
			// The cache only saves upstream calls; serve without it.
			log.Warn("intake cache unavailable, continuing without it", "addr", cfg.Cache.RedisAddr, "error", err)
		} else {
			out.IntakeCache = cache
			log.Info("intake cache ready", "addr", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL.Duration.String())
		}
	}
	return out, nil
}

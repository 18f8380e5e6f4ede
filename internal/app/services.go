package app

import (
	"time"

	"github.com/yungbote/optima-backend/internal/config"
	"github.com/yungbote/optima-backend/internal/observability"
	"github.com/yungbote/optima-backend/internal/platform/logger"
	"github.com/yungbote/optima-backend/internal/services"
)

type Services struct {
	Schedule services.ScheduleService
	Intake   services.IntakeService
}

func wireServices(log *logger.Logger, cfg *config.Config, clients Clients, metrics *observability.Metrics, clock func() time.Time) Services {
	return Services{
		Schedule: services.NewScheduleService(log, clock, metrics),
		Intake:   services.NewIntakeService(log, clients.Engine, cfg.Engine.Model, clients.IntakeCache, metrics),
	}
}

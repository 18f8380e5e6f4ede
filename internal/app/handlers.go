package app

import (
	httpH "github.com/yungbote/optima-backend/internal/http/handlers"
	"github.com/yungbote/optima-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Schedule *httpH.ScheduleHandler
	Intake   *httpH.IntakeHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Schedule: httpH.NewScheduleHandler(log, s.Schedule),
		Intake:   httpH.NewIntakeHandler(s.Intake),
	}
}

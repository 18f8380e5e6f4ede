package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/optima-backend/internal/observability"
	"github.com/yungbote/optima-backend/internal/planner"
	"github.com/yungbote/optima-backend/internal/platform/ctxutil"
	"github.com/yungbote/optima-backend/internal/platform/logger"
)

var tracer = otel.Tracer("github.com/yungbote/optima-backend/internal/services")

// ErrNoSubjects is returned before allocation when no usable subject was given.
var ErrNoSubjects = errors.New("no subjects provided")

type ScheduleService interface {
	Generate(ctx context.Context, in planner.Input) (*planner.Plan, error)
}

type scheduleService struct {
	log     *logger.Logger
	now     func() time.Time
	metrics *observability.Metrics
}

// NewScheduleService uses time.Now when clock is nil. metrics may be nil.
func NewScheduleService(baseLog *logger.Logger, clock func() time.Time, metrics *observability.Metrics) ScheduleService {
	if clock == nil {
		clock = time.Now
	}
	return &scheduleService{
		log:     baseLog.With("service", "ScheduleService"),
		now:     clock,
		metrics: metrics,
	}
}

func (s *scheduleService) Generate(ctx context.Context, in planner.Input) (*planner.Plan, error) {
	in = dropBlankSubjects(in)
	if len(in.Subjects) == 0 {
		return nil, ErrNoSubjects
	}

	_, span := tracer.Start(ctx, "schedule.Generate")
	defer span.End()

	now := s.now()
	plan := planner.Allocate(in, now)
	s.metrics.IncSchedulesGenerated()

	span.SetAttributes(
		attribute.Int("schedule.subjects", len(in.Subjects)),
		attribute.Int("schedule.deadlines", len(in.Deadlines)),
	)
	s.log.Debug("schedule generated", append(ctxutil.LogFields(ctx),
		"subjects", len(in.Subjects),
		"first_day", plan.Dates()[0],
	)...)
	return plan, nil
}

// dropBlankSubjects removes empty subject names together with their deadline slot,
// keeping the two lists aligned.
func dropBlankSubjects(in planner.Input) planner.Input {
	out := in
	out.Subjects = make([]string, 0, len(in.Subjects))
	out.Deadlines = make([]*string, 0, len(in.Deadlines))
	for i, name := range in.Subjects {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out.Subjects = append(out.Subjects, name)
		if i < len(in.Deadlines) {
			out.Deadlines = append(out.Deadlines, in.Deadlines[i])
		}
	}
	return out
}

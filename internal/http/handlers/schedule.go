package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/optima-backend/internal/http/response"
	"github.com/yungbote/optima-backend/internal/normalization"
	"github.com/yungbote/optima-backend/internal/planner"
	"github.com/yungbote/optima-backend/internal/platform/ctxutil"
	"github.com/yungbote/optima-backend/internal/platform/logger"
	"github.com/yungbote/optima-backend/internal/services"
)

const noSubjectsMessage = "Add at least one subject to generate a schedule."

// ScheduleRequest mirrors the planner form. Null entries are accepted anywhere
// a string is expected and read as empty.
type ScheduleRequest struct {
	Subjects  []string  `json:"subjects"`
	Deadlines []*string `json:"deadlines"`
	Sport     *string   `json:"sport"`
	SleepGoal *string   `json:"sleep_goal"`
}

func (r ScheduleRequest) input() planner.Input {
	return planner.Input{
		Subjects:  r.Subjects,
		Deadlines: r.Deadlines,
		Sport:     normalization.ParseInputStringPtr(r.Sport),
		SleepGoal: normalization.ParseInputStringPtr(r.SleepGoal),
	}
}

type ScheduleHandler struct {
	log      *logger.Logger
	schedule services.ScheduleService
}

func NewScheduleHandler(log *logger.Logger, schedule services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		log:      log.With("handler", "ScheduleHandler"),
		schedule: schedule,
	}
}

// POST /schedule
// body: { "subjects": [...], "deadlines": [...|null], "sport": "...", "sleep_goal": "HH:MM" }
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	plan, err := h.schedule.Generate(c.Request.Context(), req.input())
	if errors.Is(err, services.ErrNoSubjects) {
		response.RespondMessage(c, noSubjectsMessage)
		return
	}
	if err != nil {
		h.log.Error("schedule generation failed", append(ctxutil.LogFields(c.Request.Context()), "error", err)...)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, plan)
}

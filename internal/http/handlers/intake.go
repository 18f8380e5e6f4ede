package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/optima-backend/internal/http/response"
	"github.com/yungbote/optima-backend/internal/services"
)

type IntakeRequest struct {
	Text string `json:"text"`
}

type IntakeHandler struct {
	intake services.IntakeService
}

func NewIntakeHandler(intake services.IntakeService) *IntakeHandler {
	return &IntakeHandler{intake: intake}
}

// POST /parse_input
// body: { "text": "free-form description of the week" }
func (h *IntakeHandler) ParseInput(c *gin.Context) {
	var req IntakeRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.intake.Parse(c.Request.Context(), req.Text)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

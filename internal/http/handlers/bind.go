package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/optima-backend/internal/http/response"
	"github.com/yungbote/optima-backend/internal/services"
)

// bindJSON decodes the body into dst and writes the error reply itself when it
// cannot: 413 once the body limit is hit, 400 for anything else.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.RespondError(c, http.StatusRequestEntityTooLarge, services.CodeRequestTooLarge, err)
		return false
	}
	response.RespondError(c, http.StatusBadRequest, services.CodeInvalidRequest, err)
	return false
}

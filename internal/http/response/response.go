package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/optima-backend/internal/platform/apierr"
)

type APIError struct {
	Message string  `json:"message"`
	Code    string  `json:"code,omitempty"`
	Raw     *string `json:"raw,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// MessageEnvelope is a successful reply that carries a notice instead of data.
type MessageEnvelope struct {
	Message string `json:"message"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError renders err through its apierr mapping; unknown errors become 500s.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.As(err)
	if ae == nil {
		RespondError(c, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	msg := ae.Error()
	if ae.Status >= http.StatusInternalServerError && ae.Code == "internal_error" {
		msg = "internal server error"
	}
	c.JSON(ae.Status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    ae.Code,
			Raw:     ae.Raw,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, MessageEnvelope{Message: msg})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const healthBody = "ok"

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// GET /healthcheck
// Liveness only; it does not touch the language model or the cache.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, healthBody)
}

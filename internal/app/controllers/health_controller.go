package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/campusconnect/backend/internal/app/models/dto"
	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// HealthController reports process and dependency health
type HealthController struct {
	checks map[string]HealthCheck
}

// NewHealthController creates a health controller over the named checks
func NewHealthController(checks map[string]HealthCheck) *HealthController {
	return &HealthController{checks: checks}
}

// Ping answers liveness checks
func (c *HealthController) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
}

// Health runs every dependency check
// @Summary Health check
// @Tags platform
// @Produce json
// @Success 200 {object} dto.APIResponse "All dependencies reachable"
// @Failure 503 {object} dto.APIResponse "A dependency is down"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(c.checks))
	for name, check := range c.checks {
		if err := check(reqCtx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	resp := dto.NewSuccessResponse(results, "healthy")
	if status != http.StatusOK {
		resp.Success = false
		resp.Message = "unhealthy"
	}
	ctx.JSON(status, resp)
}

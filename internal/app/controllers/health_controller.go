package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Pinger is a dependency that can report its liveness
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports process and dependency liveness
type HealthController struct {
	checks map[string]Pinger
	logger zerolog.Logger
}

// NewHealthController creates a new HealthController
func NewHealthController(checks map[string]Pinger, logger zerolog.Logger) *HealthController {
	return &HealthController{checks: checks, logger: logger}
}

// Ping answers liveness probes
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health pings every dependency
// @Summary Dependency health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			h.logger.Warn().Err(err).Str("component", name).Msg("Health check failed")
			components[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "up"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status":     overall,
		"components": components,
		"timestamp":  time.Now().UTC(),
	})
}

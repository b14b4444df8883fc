package handler

import (
	"context"
	"net/http"
	"time"

	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker reports whether one dependency is reachable
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthDetailer is implemented by checkers that also report runtime statistics
type HealthDetailer interface {
	Details() map[string]any
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	checkers []HealthChecker
	logger   coreport.Logger
}

// NewHealthHandler creates a health handler over the given dependencies
func NewHealthHandler(logger coreport.Logger, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		logger:   logger,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checkers))
	details := make(map[string]any)
	for _, checker := range h.checkers {
		if detailer, ok := checker.(HealthDetailer); ok {
			if d := detailer.Details(); d != nil {
				details[checker.Name()] = d
			}
		}

		if err := checker.Check(ctx); err != nil {
			h.logger.Warn("Health check failed", map[string]any{
				"dependency": checker.Name(),
				"error":      err.Error(),
			})
			checks[checker.Name()] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[checker.Name()] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	body := gin.H{
		"status": state,
		"checks": checks,
	}
	if len(details) > 0 {
		body["details"] = details
	}
	c.JSON(status, body)
}

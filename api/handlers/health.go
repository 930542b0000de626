package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noctalia/sleepsense/pkg/database"
)

// ModelHealthChecker reports the state of the external model service.
type ModelHealthChecker interface {
	HealthCheck(ctx context.Context) error
	BreakerState() string
}

type HealthHandler struct {
	db    *database.DB
	model ModelHealthChecker
}

func NewHealthHandler(db *database.DB, model ModelHealthChecker) *HealthHandler {
	return &HealthHandler{db: db, model: model}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := "healthy"

	// The service stays up without a database; report it when configured
	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			status = "unhealthy"
		} else {
			stats := h.db.ConnectionStats()
			checks["database"] = fmt.Sprintf("healthy (%d/%d connections)", stats.InUse, stats.OpenConnections)
		}
	} else {
		checks["database"] = "disabled"
	}

	// Model being down is not fatal, the heuristic covers for it
	if h.model != nil {
		if err := h.model.HealthCheck(ctx); err != nil {
			checks["model"] = "unhealthy (heuristic fallback active)"
		} else {
			checks["model"] = "healthy"
		}
		checks["model_circuit"] = h.model.BreakerState()
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// ModelHealth reports only the model service state, without the fallback
// masking it.
func (h *HealthHandler) ModelHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.model == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not configured"})
		return
	}

	if err := h.model.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"error":   err.Error(),
			"circuit": h.model.BreakerState(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"circuit": h.model.BreakerState(),
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{
				Status:    "not ready",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

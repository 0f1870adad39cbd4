// Package handlers implements the HTTP handlers of the query API.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	memento "github.com/vargamick/poster-memento-sub005"
	"github.com/vargamick/poster-memento-sub005/pkg/analytics"
	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	engine memento.Engine
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(engine memento.Engine) *HealthHandler {
	return &HealthHandler{engine: engine}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "memento",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready - verifies the engine can reach its
// backing store.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := gin.H{
		"status":    "ready",
		"service":   "memento",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    gin.H{},
	}

	allHealthy := true
	checks := response["checks"].(gin.H)

	if h.engine != nil {
		start := time.Now()

		// Read-only lookup with no side effects. A NotFoundError
		// means the store answered and is reachable.
		_, err := h.engine.NodeAnalytics(ctx, "readiness-check", &analytics.Options{})
		duration := time.Since(start)

		var notFound *types.NotFoundError
		switch {
		case err == nil, errors.As(err, &notFound):
			checks["storage"] = gin.H{
				"status":   "healthy",
				"duration": duration.String(),
			}
		case ctx.Err() != nil:
			checks["storage"] = gin.H{
				"status":   "unhealthy",
				"error":    "storage connection timeout",
				"duration": duration.String(),
			}
			allHealthy = false
		default:
			checks["storage"] = gin.H{
				"status":   "unhealthy",
				"error":    err.Error(),
				"duration": duration.String(),
			}
			allHealthy = false
		}
	}

	if !allHealthy {
		response["status"] = "not ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// BuildInfo handles GET /version
func (h *HealthHandler) BuildInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":   Version,
		"gitCommit": GitCommit,
		"buildTime": BuildTime,
		"goVersion": GoVersion,
	})
}

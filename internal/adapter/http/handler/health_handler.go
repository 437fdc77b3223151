package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Wesley-Jzy/fasttext-serving/internal/domain/service"
)

// Implementation is reported by /health
const Implementation = "go"

// HealthHandler handles health check endpoints
type HealthHandler struct {
	prober  service.ModelProber
	redis   *redis.Client
	version string
}

// NewHealthHandler creates a new health handler. redis may be nil when the
// prediction cache is disabled.
func NewHealthHandler(prober service.ModelProber, redis *redis.Client, version string) *HealthHandler {
	return &HealthHandler{
		prober:  prober,
		redis:   redis,
		version: version,
	}
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status         string            `json:"status"`
	ModelLoaded    bool              `json:"model_loaded"`
	ModelPath      string            `json:"model_path,omitempty"`
	Implementation string            `json:"implementation"`
	Version        string            `json:"version"`
	Components     map[string]string `json:"components"`
}

// Health handles GET /health.
// Only the model runtime decides the status; the cache is optional.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp := HealthStatus{
		Implementation: Implementation,
		Version:        h.version,
		Components:     make(map[string]string),
	}

	// Check model runtime
	if h.prober != nil {
		status, err := h.prober.Status(ctx)
		switch {
		case err != nil:
			resp.Components["model"] = "error: " + err.Error()
		case !status.Loaded:
			resp.Components["model"] = "not loaded"
			resp.ModelPath = status.ModelPath
		default:
			resp.Components["model"] = "ok"
			resp.ModelLoaded = true
			resp.ModelPath = status.ModelPath
		}
	} else {
		resp.Components["model"] = "not configured"
	}

	// Check Redis
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			resp.Components["redis"] = "error: " + err.Error()
		} else {
			resp.Components["redis"] = "ok"
		}
	} else {
		resp.Components["redis"] = "not configured"
	}

	resp.Status = "healthy"
	httpStatus := http.StatusOK
	if !resp.ModelLoaded {
		resp.Status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, resp)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.prober == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "model not configured"})
		return
	}
	if err := h.prober.Ready(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "model runtime unreachable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

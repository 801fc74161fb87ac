package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/microcash/transactions-api/internal/store"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	store       store.Store
	redisClient *redis.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(st store.Store, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		store:       st,
		redisClient: redisClient,
	}
}

// Liveness handles the basic liveness probe
// GET /health
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Readiness handles the readiness probe (checks dependencies)
// GET /health/ready
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := make(map[string]string)
	healthy := true

	// Check Redis connectivity
	if h.redisClient != nil {
		if err := h.redisClient.Ping(c.Request.Context()).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	// Check the durable store
	if h.store != nil {
		if _, err := h.store.Count(c.Request.Context()); err != nil {
			checks["store"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["store"] = "healthy"
		}
	} else {
		checks["store"] = "not configured"
		healthy = false
	}

	status := http.StatusOK
	statusText := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		statusText = "not ready"
	}

	c.JSON(status, gin.H{
		"status": statusText,
		"checks": checks,
	})
}

package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/valvequote/quote_api/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency whose reachability the health check reports.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// PingContext implements Pinger.
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthHandler provides health endpoint.
type HealthHandler struct {
	db    Pinger
	redis Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// GetHealth responds with service, database and Redis status.
// A Redis outage only degrades the service since lookups fall back to the database.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := probe(ctx, h.db)
	redisStatus := probe(ctx, h.redis)

	if dbStatus != "connected" {
		utils.Error(c, 503, "UNHEALTHY", "Database is "+dbStatus)
		return
	}

	status := "healthy"
	if redisStatus != "connected" {
		status = "degraded"
	}

	utils.Success(c, 200, "Service is "+status, gin.H{
		"status":   status,
		"version":  "1.0.0",
		"uptime":   int(time.Since(startTime).Seconds()),
		"database": gin.H{"status": dbStatus},
		"redis":    gin.H{"status": redisStatus},
	})
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.PingContext(ctx); err != nil {
		return "disconnected"
	}
	return "connected"
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"zaikan/internal/caching"
	"zaikan/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db           *pgxpool.Pool
	cacheService caching.CacheService
	imageService services.ImageService
}

// NewHealthHandlers creates a new health handlers instance. db and
// imageService may be nil when the server runs on the local file store.
func NewHealthHandlers(db *pgxpool.Pool, cacheService caching.CacheService, imageService services.ImageService) *HealthHandlers {
	return &HealthHandlers{
		db:           db,
		cacheService: cacheService,
		imageService: imageService,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthCheck performs dependency health checks
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	check := func(name string, err error) {
		if err != nil {
			health.Services[name] = "unhealthy"
			health.Status = "degraded"
		} else {
			health.Services[name] = "healthy"
		}
	}

	if h.db != nil {
		check("database", h.db.Ping(ctx))
	}
	if h.cacheService != nil {
		check("redis", h.checkRedis(ctx))
	}
	if h.imageService != nil {
		check("storage", h.imageService.Ping(ctx))
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, health)
}

func (h *HealthHandlers) checkRedis(ctx context.Context) error {
	return h.cacheService.SetString(ctx, "zaikan:health:ping", "ok", 10*time.Second)
}

// ReadinessCheck determines if the application is ready to serve traffic
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":  "not_ready",
				"message": "Database unavailable",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// LivenessCheck is a basic liveness probe
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"credhub/internal/common"
	"credhub/internal/services"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 3 * time.Second

// Pinger is a dependency that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health, readiness and store diagnostics endpoints
type HealthHandlers struct {
	db          Pinger
	cache       Pinger
	storage     bool
	diagnostics services.DiagnosticsService
	startedAt   time.Time
	version     string
}

func NewHealthHandlers(db, cache Pinger, storageEnabled bool, diagnostics services.DiagnosticsService, version string) *HealthHandlers {
	return &HealthHandlers{
		db:          db,
		cache:       cache,
		storage:     storageEnabled,
		diagnostics: diagnostics,
		startedAt:   time.Now(),
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Services   map[string]string `json:"services"`
	Uptime     string            `json:"uptime"`
	Version    string            `json:"version"`
	Goroutines int               `json:"goroutines"`
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	err := p.Ping(ctx)
	switch {
	case err == nil:
		return "healthy"
	case errors.Is(err, common.ErrNotConfigured):
		return "not_configured"
	default:
		return "unhealthy"
	}
}

// HealthCheck godoc
// @Summary      Liveness with dependency status
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthStatus
// @Router       /health [get]
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	health := &HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Services:   map[string]string{},
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Version:    h.version,
		Goroutines: runtime.NumGoroutine(),
	}

	health.Services["database"] = probe(ctx, h.db)
	health.Services["redis"] = probe(ctx, h.cache)
	health.Services["storage"] = "disabled"
	if h.storage {
		health.Services["storage"] = "enabled"
	}

	for _, status := range health.Services {
		if status == "unhealthy" || status == "not_configured" {
			health.Status = "degraded"
		}
	}
	return c.JSON(http.StatusOK, health)
}

// ReadinessCheck godoc
// @Summary      Readiness for traffic
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} map[string]string
// @Router       /health/ready [get]
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx := c.Request().Context()
	db := probe(ctx, h.db)
	if db != "healthy" {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": db,
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// Diagnostics godoc
// @Summary      Store self-test
// @Description  Connection test, required tables, row counts and relationship queries.
// @Tags         health
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} models.DiagnosticsReport
// @Failure      503 {object} common.ErrorResponse
// @Router       /diagnostics [get]
func (h *HealthHandlers) Diagnostics(c echo.Context) error {
	report, err := h.diagnostics.Run(c.Request().Context())
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

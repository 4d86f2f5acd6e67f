// internal/handler/health_handler.go
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"label-service/internal/config"
	"label-service/internal/utils"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"

	dependencyTimeout = 5 * time.Second
)

// HealthChecker is a dependency whose availability affects readiness
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler serves the health, readiness and liveness probes. Printers
// are not queried here, their state is on /status.
type HealthHandler struct {
	db        HealthChecker
	config    *config.Config
	startedAt time.Time
	logger    *utils.ServiceLogger
}

// NewHealthHandler creates a new health handler. db may be nil when job
// history is kept in memory.
func NewHealthHandler(db HealthChecker, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		config:    config,
		startedAt: time.Now(),
		logger:    utils.NewServiceLogger(logger, "health-handler"),
	}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// HealthCheck reports every check with service metadata
// @Summary Health check
// @Description Service metadata, configured printers and job history database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} HealthResponse "Service is unhealthy"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	checks, healthy := h.runChecks(c.Request.Context())

	response := &HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Checks:    checks,
	}

	if !healthy {
		response.Status = statusUnhealthy
		h.logger.Warn("Health check failed", zap.Any("checks", checks))
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck fails while the job history database is unreachable
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is ready"
// @Failure 503 {object} object{status=string,reason=string} "Service is not ready"
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	checks, healthy := h.runChecks(c.Request.Context())
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": checks["database"].Message,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
	})
}

// LivenessCheck answers as long as the process serves HTTP
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is alive"
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

// runChecks returns every check and whether all of them passed
func (h *HealthHandler) runChecks(ctx context.Context) (map[string]CheckResult, bool) {
	checks := map[string]CheckResult{
		"printers": {
			Status: statusHealthy,
			Data:   map[string]interface{}{"configured": len(h.config.Printers)},
		},
	}

	if h.db == nil {
		return checks, true
	}

	ctx, cancel := context.WithTimeout(ctx, dependencyTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.Health(ctx)
	latency := time.Since(start)

	if err != nil {
		checks["database"] = CheckResult{Status: statusUnhealthy, Message: err.Error()}
		return checks, false
	}

	checks["database"] = CheckResult{
		Status:  statusHealthy,
		Message: "Database connection OK",
		Data:    map[string]interface{}{"latency_ms": latency.Milliseconds()},
	}
	return checks, true
}

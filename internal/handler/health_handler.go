// internal/handler/health_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"board-bridge/internal/config"
	"board-bridge/internal/utils"
)

// PublisherStats is the part of the MQTT publisher the health check reads
type PublisherStats interface {
	Stats() (published, skipped int64)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	bridge    Bridge
	eventBus  *EventBus
	publisher PublisherStats
	config    *config.Config
	startedAt time.Time
	logger    *utils.ServiceLogger
}

// NewHealthHandler creates a new health handler. eventBus and publisher may
// be nil; their checks are then left out.
func NewHealthHandler(b Bridge, eventBus *EventBus, publisher PublisherStats, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		bridge:    b,
		eventBus:  eventBus,
		publisher: publisher,
		config:    config,
		startedAt: time.Now(),
		logger:    utils.NewServiceLogger(logger, "health-handler"),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.ReadinessCheck)
	router.GET("/live", h.LivenessCheck)
}

// HealthCheck reports service and serial link health
// @Summary Health check
// @Description Get overall service health including the serial link state
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := h.bridge.Status()

	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Checks:    make(map[string]CheckResult),
	}

	// A closed link is a normal state, not a failure of the service
	serialCheck := CheckResult{
		Status: status.State,
		Data: map[string]interface{}{
			"port":           status.Port,
			"baud_rate":      status.BaudRate,
			"bytes_read":     status.BytesRead,
			"bytes_written":  status.BytesWritten,
			"commands_sent":  status.CommandsSent,
			"dropped_events": status.DroppedEvents,
		},
	}
	if status.DroppedEvents > 0 {
		serialCheck.Message = "event consumers are falling behind"
	}
	health.Checks["serial"] = serialCheck

	if h.eventBus != nil {
		delivered, dropped := h.eventBus.Stats()
		busCheck := CheckResult{
			Status: "healthy",
			Data: map[string]interface{}{
				"delivered": delivered,
				"dropped":   dropped,
			},
		}
		if dropped > 0 {
			busCheck.Status = "degraded"
			busCheck.Message = "subscribers are dropping events"
		}
		health.Checks["event_bus"] = busCheck
	}

	if h.publisher != nil {
		published, skipped := h.publisher.Stats()
		health.Checks["mqtt"] = CheckResult{
			Status: "enabled",
			Data: map[string]interface{}{
				"published": published,
				"skipped":   skipped,
			},
		}
	}

	c.JSON(http.StatusOK, health)
}

// ReadinessCheck reports ready once the serial link is open
// @Summary Readiness check
// @Description Ready when a serial port is open
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is ready"
// @Failure 503 {object} object{status=string,reason=string} "Service is not ready"
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if !h.bridge.IsConnected() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "serial port not connected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessCheck for Kubernetes liveness probe
// @Summary Liveness check
// @Description Check if service is alive
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is alive"
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
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

// internal/handler/port_handler.go
package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	serialscan "board-bridge/internal/discovery/serial"
	"board-bridge/internal/utils"
)

// PortScanner lists serial ports
type PortScanner interface {
	Scan(ctx context.Context) ([]serialscan.PortInfo, error)
}

// PortHandler handles serial port discovery
type PortHandler struct {
	scanner PortScanner
	logger  *utils.ServiceLogger
}

// NewPortHandler creates a new port handler
func NewPortHandler(scanner PortScanner, logger *zap.Logger) *PortHandler {
	return &PortHandler{
		scanner: scanner,
		logger:  utils.NewServiceLogger(logger, "port-handler"),
	}
}

// RegisterRoutes registers port routes
func (h *PortHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ports", h.ListPorts)
}

// ListPorts lists the serial ports on this host
// @Summary List serial ports
// @Description Enumerate the serial ports the bridge can open
// @Tags Ports
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]serialscan.PortInfo} "Ports retrieved"
// @Failure 500 {object} utils.APIResponse "Enumeration failed"
// @Router /api/v1/ports [get]
func (h *PortHandler) ListPorts(c *gin.Context) {
	ports, err := h.scanner.Scan(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list serial ports", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list serial ports", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, fmt.Sprintf("%d ports found", len(ports)), ports)
}

// internal/handler/connection_handler.go
package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"board-bridge/internal/bridge"
	"board-bridge/internal/protocol"
	"board-bridge/internal/utils"
)

// Bridge is the part of bridge.Manager the HTTP surface drives
type Bridge interface {
	Open(ctx context.Context, name string, baudRate int) error
	Close() error
	Send(cmd protocol.Command, mode protocol.TransportMode) error
	IsConnected() bool
	Status() bridge.Status
	Indicators() []bridge.IndicatorState
}

// ConnectionDefaults are used when a request leaves a field empty
type ConnectionDefaults struct {
	Port     string
	BaudRate int
	Mode     protocol.TransportMode
}

// ConnectRequest opens the serial link
type ConnectRequest struct {
	Port     string `json:"port" example:"/dev/ttyUSB0"`
	BaudRate int    `json:"baud_rate" example:"115200"`
}

// PingRequest selects the transport mode for a status ping
type PingRequest struct {
	Mode string `json:"mode,omitempty" example:"slave"`
}

// ConnectionHandler handles the serial link lifecycle
type ConnectionHandler struct {
	bridge     Bridge
	defaults   ConnectionDefaults
	baseLogger *zap.Logger
	logger     *utils.ServiceLogger
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(b Bridge, defaults ConnectionDefaults, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		bridge:     b,
		defaults:   defaults,
		baseLogger: logger,
		logger:     utils.NewServiceLogger(logger, "connection-handler"),
	}
}

// RegisterRoutes registers connection routes
func (h *ConnectionHandler) RegisterRoutes(router *gin.RouterGroup) {
	connection := router.Group("/connection")
	{
		connection.GET("", h.GetStatus)
		connection.POST("", h.Connect)
		connection.DELETE("", h.Disconnect)
		connection.POST("/ping", h.Ping)
	}
	router.GET("/indicators", h.GetIndicators)
}

// GetStatus returns the connection status
// @Summary Connection status
// @Description Get the serial link state and traffic counters
// @Tags Connection
// @Produce json
// @Success 200 {object} utils.APIResponse{data=bridge.Status} "Status retrieved"
// @Router /api/v1/connection [get]
func (h *ConnectionHandler) GetStatus(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Status retrieved", h.bridge.Status())
}

// Connect opens the serial port
// @Summary Open serial port
// @Description Open the serial link at the given baud rate and start reading
// @Tags Connection
// @Accept json
// @Produce json
// @Param request body ConnectRequest false "Port and baud rate, configured defaults when omitted"
// @Success 201 {object} utils.APIResponse{data=bridge.Status} "Connected"
// @Failure 400 {object} utils.APIResponse "Invalid baud rate"
// @Failure 404 {object} utils.APIResponse "Port not found"
// @Failure 409 {object} utils.APIResponse "Already connected or port busy"
// @Router /api/v1/connection [post]
func (h *ConnectionHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	if req.Port == "" {
		req.Port = h.defaults.Port
	}
	if req.BaudRate == 0 {
		req.BaudRate = h.defaults.BaudRate
	}
	if req.Port == "" {
		utils.ValidationErrorResponse(c, map[string]string{"port": "port is required"})
		return
	}

	bl := utils.NewBridgeLogger(h.baseLogger, req.Port)
	err := h.bridge.Open(c.Request.Context(), req.Port, req.BaudRate)
	bl.LogConnection("open", req.BaudRate, err)
	if err != nil {
		bridgeErrorResponse(c, "Failed to open serial port", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Connected", h.bridge.Status())
}

// Disconnect closes the serial port
// @Summary Close serial port
// @Description Stop the reader and release the port. Closing a closed link succeeds.
// @Tags Connection
// @Produce json
// @Success 200 {object} utils.APIResponse{data=bridge.Status} "Disconnected"
// @Failure 500 {object} utils.APIResponse "Port close failed"
// @Router /api/v1/connection [delete]
func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	port := h.bridge.Status().Port
	err := h.bridge.Close()
	if port != "" {
		utils.NewBridgeLogger(h.baseLogger, port).LogConnection("close", 0, err)
	}
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to close serial port", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Disconnected", h.bridge.Status())
}

// Ping sends a status ping
// @Summary Ping the board
// @Description Send a ping; the reply arrives as a RESPONSE or TEXT_LINE event
// @Tags Connection
// @Accept json
// @Produce json
// @Param request body PingRequest false "Transport mode"
// @Success 202 {object} utils.APIResponse "Ping sent"
// @Failure 502 {object} utils.APIResponse "Write failed"
// @Failure 503 {object} utils.APIResponse "Not connected"
// @Router /api/v1/connection/ping [post]
func (h *ConnectionHandler) Ping(c *gin.Context) {
	var req PingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	cmdReq := CommandRequest{Type: string(protocol.CommandPing), Mode: req.Mode}
	mode, err := cmdReq.ResolveMode(h.defaults.Mode)
	if err != nil {
		bridgeErrorResponse(c, "Invalid mode", err)
		return
	}

	start := time.Now()
	err = h.bridge.Send(protocol.Ping{}, mode)
	utils.NewBridgeLogger(h.baseLogger, h.bridge.Status().Port).
		LogCommand(string(protocol.CommandPing), mode.String(), protocol.Ping{}.Describe(), time.Since(start), err)
	if err != nil {
		bridgeErrorResponse(c, "Ping failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusAccepted, "Ping sent", gin.H{
		"mode": mode.String(),
	})
}

// GetIndicators returns the response indicators
// @Summary Response indicators
// @Description Get every known response code and whether it was seen recently
// @Tags Connection
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]bridge.IndicatorState} "Indicators retrieved"
// @Router /api/v1/indicators [get]
func (h *ConnectionHandler) GetIndicators(c *gin.Context) {
	indicators := h.bridge.Indicators()
	utils.SuccessResponse(c, http.StatusOK, fmt.Sprintf("%d indicators", len(indicators)), indicators)
}

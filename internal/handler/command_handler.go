// internal/handler/command_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"board-bridge/internal/bridge"
	"board-bridge/internal/protocol"
	"board-bridge/internal/utils"
)

// CommandResult is returned for an accepted command
type CommandResult struct {
	Type        string `json:"type"`
	Mode        string `json:"mode"`
	Description string `json:"description"`
	Wire        string `json:"wire"`
}

// ResponseCode describes one known board response
type ResponseCode struct {
	Code byte   `json:"code"`
	Hex  string `json:"hex"`
	Name string `json:"name"`
}

// CommandHandler handles board commands
type CommandHandler struct {
	bridge      Bridge
	defaultMode protocol.TransportMode
	baseLogger  *zap.Logger
	logger      *utils.ServiceLogger
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(b Bridge, defaultMode protocol.TransportMode, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{
		bridge:      b,
		defaultMode: defaultMode,
		baseLogger:  logger,
		logger:      utils.NewServiceLogger(logger, "command-handler"),
	}
}

// RegisterRoutes registers command routes
func (h *CommandHandler) RegisterRoutes(router *gin.RouterGroup) {
	commands := router.Group("/commands")
	{
		commands.POST("", h.SendCommand)
		commands.GET("/responses", h.ListResponses)
	}
}

// SendCommand encodes and writes one command
// @Summary Send a command
// @Description Encode a command for the transport mode and write it to the board
// @Tags Commands
// @Accept json
// @Produce json
// @Param request body CommandRequest true "Command"
// @Success 202 {object} utils.APIResponse{data=CommandResult} "Command sent"
// @Failure 400 {object} utils.APIResponse "Invalid request body"
// @Failure 422 {object} utils.APIResponse "Invalid command"
// @Failure 502 {object} utils.APIResponse "Write failed"
// @Failure 503 {object} utils.APIResponse "Not connected"
// @Router /api/v1/commands [post]
func (h *CommandHandler) SendCommand(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.execute(&req)
	if err != nil {
		bridgeErrorResponse(c, "Command failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusAccepted, "Command sent", result)
}

// execute is shared with the websocket handler
func (h *CommandHandler) execute(req *CommandRequest) (*CommandResult, error) {
	if !h.bridge.IsConnected() {
		return nil, bridge.ErrNotConnected
	}

	mode, err := req.ResolveMode(h.defaultMode)
	if err != nil {
		return nil, err
	}
	cmd, err := req.ToCommand()
	if err != nil {
		return nil, err
	}

	// Encode up front so the reply can show the exact wire bytes
	wire, err := protocol.Encode(cmd, mode)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = h.bridge.Send(cmd, mode)
	description := protocol.DescribeSent(cmd, mode, wire)
	utils.NewBridgeLogger(h.baseLogger, h.bridge.Status().Port).
		LogCommand(string(cmd.Type()), mode.String(), description, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return &CommandResult{
		Type:        string(cmd.Type()),
		Mode:        mode.String(),
		Description: description,
		Wire:        protocol.FormatHexBytes(wire),
	}, nil
}

// ListResponses returns the known response codes
// @Summary Known responses
// @Description List the response codes the board sends in binary mode
// @Tags Commands
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]ResponseCode} "Responses retrieved"
// @Router /api/v1/commands/responses [get]
func (h *CommandHandler) ListResponses(c *gin.Context) {
	codes := make([]ResponseCode, 0, len(protocol.KnownResponses))
	for _, code := range protocol.KnownResponses {
		codes = append(codes, ResponseCode{
			Code: code,
			Hex:  protocol.FormatHexBytes([]byte{code}),
			Name: protocol.ResponseName(code),
		})
	}
	utils.SuccessResponse(c, http.StatusOK, "Responses retrieved", codes)
}

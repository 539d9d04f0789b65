// internal/handler/websocket_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"board-bridge/internal/bridge"
	"board-bridge/internal/utils"
)

const (
	wsReadWait   = 60 * time.Second
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 54 * time.Second
)

// WebSocketHandler streams bridge events to clients and accepts commands
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	connections *ConnectionManager
	bridge      Bridge
	commands    *CommandHandler
	logger      *utils.ServiceLogger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(b Bridge, commands *CommandHandler, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return &WebSocketHandler{
		upgrader:    upgrader,
		connections: NewConnectionManager(),
		bridge:      b,
		commands:    commands,
		logger:      utils.NewServiceLogger(logger, "websocket-handler"),
	}
}

// originChecker allows requests without an Origin header, "*" or a listed origin
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/events", h.HandleEventConnection)
	router.GET("/stats", h.GetStats)
}

// GetStats reports connected event stream clients
// @Summary WebSocket clients
// @Description List clients connected to the event stream
// @Tags WebSocket
// @Produce json
// @Success 200 {object} utils.APIResponse{data=ConnectionStats} "Stats retrieved"
// @Router /ws/stats [get]
func (h *WebSocketHandler) GetStats(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "WebSocket stats retrieved", h.GetConnectionStats())
}

// HandleEventConnection upgrades the request to an event stream
// @Summary Event stream
// @Description WebSocket stream of bridge events; accepts command, ping, status, subscribe and unsubscribe messages
// @Tags WebSocket
// @Router /ws/events [get]
func (h *WebSocketHandler) HandleEventConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := &Client{
		ID:          uuid.New().String(),
		Connection:  conn,
		Send:        make(chan []byte, 256),
		UserAgent:   c.Request.UserAgent(),
		RemoteAddr:  c.Request.RemoteAddr,
		ConnectedAt: time.Now(),
	}

	h.connections.Register(client)
	h.logger.Info("Event WebSocket client connected",
		zap.String("client_id", client.ID),
		zap.String("remote_addr", client.RemoteAddr),
	)

	h.sendStatus(client, "initial_status", "")

	go h.handleClientRead(client)
	go h.handleClientWrite(client)
}

// HandleEvent implements EventSink
func (h *WebSocketHandler) HandleEvent(event bridge.Event) {
	message := &WebSocketMessage{
		Type:      "event",
		Data:      event,
		Timestamp: event.Timestamp,
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message", zap.Error(err))
		return
	}

	if skipped := h.connections.Broadcast(event.Type, messageBytes); skipped > 0 {
		h.logger.Warn("Client send channel full during broadcast",
			zap.String("event_type", string(event.Type)),
			zap.Int("clients_skipped", skipped),
		)
	}
}

// handleClientRead handles reading messages from WebSocket client
func (h *WebSocketHandler) handleClientRead(client *Client) {
	defer func() {
		h.connections.Unregister(client)
		client.Connection.Close()
		h.logger.Info("Event WebSocket client disconnected", zap.String("client_id", client.ID))
	}()

	client.Connection.SetReadDeadline(time.Now().Add(wsReadWait))
	client.Connection.SetPongHandler(func(string) error {
		client.Connection.SetReadDeadline(time.Now().Add(wsReadWait))
		return nil
	})

	for {
		_, messageBytes, err := client.Connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
			}
			break
		}

		var message inboundMessage
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			h.sendError(client, "", "invalid message: "+err.Error())
			continue
		}

		h.handleClientMessage(client, &message)
	}
}

// handleClientWrite handles writing messages to WebSocket client
func (h *WebSocketHandler) handleClientWrite(client *Client) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		client.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Connection.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				client.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Connection.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Error("WebSocket write error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
				return
			}

		case <-ticker.C:
			client.Connection.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// inboundMessage is a client request; Data is decoded per Type
type inboundMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

type topicRequest struct {
	Topic string `json:"topic"`
}

// handleClientMessage handles incoming client messages
func (h *WebSocketHandler) handleClientMessage(client *Client, message *inboundMessage) {
	switch message.Type {
	case "command":
		h.handleCommand(client, message)
	case "status":
		h.sendStatus(client, "status", message.RequestID)
	case "subscribe", "unsubscribe":
		var req topicRequest
		if err := json.Unmarshal(message.Data, &req); err != nil || req.Topic == "" {
			h.sendError(client, message.RequestID, "topic is required")
			return
		}
		eventType := bridge.EventType(strings.ToUpper(req.Topic))
		if message.Type == "subscribe" {
			client.Subscribe(eventType)
		} else {
			client.Unsubscribe(eventType)
		}
		h.sendMessage(client, &WebSocketMessage{
			Type:      message.Type + "d",
			Data:      map[string]interface{}{"topic": eventType},
			Timestamp: time.Now(),
			RequestID: message.RequestID,
		})
	case "ping":
		h.sendMessage(client, &WebSocketMessage{
			Type:      "pong",
			Timestamp: time.Now(),
			RequestID: message.RequestID,
		})
	default:
		h.logger.Warn("Unknown message type",
			zap.String("type", message.Type),
			zap.String("client_id", client.ID),
		)
		h.sendError(client, message.RequestID, "unknown message type: "+message.Type)
	}
}

// handleCommand sends a command through the bridge and replies with the result
func (h *WebSocketHandler) handleCommand(client *Client, message *inboundMessage) {
	var req CommandRequest
	if err := json.Unmarshal(message.Data, &req); err != nil || req.Type == "" {
		h.sendError(client, message.RequestID, "invalid command data")
		return
	}

	result, err := h.commands.execute(&req)
	response := map[string]interface{}{
		"success": err == nil,
		"result":  result,
	}
	if err != nil {
		response["error"] = err.Error()
		response["status"] = statusForError(err)
	}

	h.sendMessage(client, &WebSocketMessage{
		Type:      "command_response",
		Data:      response,
		Timestamp: time.Now(),
		RequestID: message.RequestID,
	})
}

func (h *WebSocketHandler) sendStatus(client *Client, messageType, requestID string) {
	h.sendMessage(client, &WebSocketMessage{
		Type: messageType,
		Data: map[string]interface{}{
			"connection": h.bridge.Status(),
			"indicators": h.bridge.Indicators(),
		},
		Timestamp: time.Now(),
		RequestID: requestID,
	})
}

// sendMessage sends a message to a client
func (h *WebSocketHandler) sendMessage(client *Client, message *WebSocketMessage) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal WebSocket message", zap.Error(err))
		return
	}

	if !h.connections.Deliver(client, messageBytes) {
		h.logger.Warn("Client send channel full, dropping message",
			zap.String("client_id", client.ID),
		)
	}
}

// sendError sends an error message to a client
func (h *WebSocketHandler) sendError(client *Client, requestID, errorMsg string) {
	h.sendMessage(client, &WebSocketMessage{
		Type: "error",
		Data: map[string]interface{}{
			"error": errorMsg,
		},
		Timestamp: time.Now(),
		RequestID: requestID,
	})
}

// GetConnectionStats returns connection statistics
func (h *WebSocketHandler) GetConnectionStats() *ConnectionStats {
	return h.connections.GetStats()
}

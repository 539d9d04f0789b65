// internal/handler/websocket_types.go
package handler

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"board-bridge/internal/bridge"
)

// Client represents a WebSocket client
type Client struct {
	ID          string          `json:"id"`
	Connection  *websocket.Conn `json:"-"`
	Send        chan []byte     `json:"-"`
	UserAgent   string          `json:"user_agent"`
	RemoteAddr  string          `json:"remote_addr"`
	ConnectedAt time.Time       `json:"connected_at"`

	// subscriptions filters broadcast events; empty means every type
	subMutex      sync.RWMutex
	subscriptions map[bridge.EventType]bool
}

// Subscribe adds an event type to the client filter
func (c *Client) Subscribe(eventType bridge.EventType) {
	c.subMutex.Lock()
	defer c.subMutex.Unlock()
	if c.subscriptions == nil {
		c.subscriptions = make(map[bridge.EventType]bool)
	}
	c.subscriptions[eventType] = true
}

// Unsubscribe removes an event type from the client filter
func (c *Client) Unsubscribe(eventType bridge.EventType) {
	c.subMutex.Lock()
	defer c.subMutex.Unlock()
	delete(c.subscriptions, eventType)
}

// Wants reports whether the client receives events of this type
func (c *Client) Wants(eventType bridge.EventType) bool {
	c.subMutex.RLock()
	defer c.subMutex.RUnlock()
	return len(c.subscriptions) == 0 || c.subscriptions[eventType]
}

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// ConnectionManager manages WebSocket connections. A client's Send channel
// is only closed under the write lock, and broadcasts hold the read lock,
// so nothing is sent on a closed channel.
type ConnectionManager struct {
	clients map[string]*Client
	mutex   sync.RWMutex
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients: make(map[string]*Client),
	}
}

// Register registers a new client
func (cm *ConnectionManager) Register(client *Client) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.clients[client.ID] = client
}

// Unregister removes a client and closes its send channel
func (cm *ConnectionManager) Unregister(client *Client) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	if _, ok := cm.clients[client.ID]; ok {
		delete(cm.clients, client.ID)
		close(client.Send)
	}
}

// Deliver queues message for one registered client. It returns false when
// the client is gone or its queue is full.
func (cm *ConnectionManager) Deliver(client *Client, message []byte) bool {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	if _, ok := cm.clients[client.ID]; !ok {
		return false
	}
	select {
	case client.Send <- message:
		return true
	default:
		return false
	}
}

// Broadcast queues message for every client accepting eventType and
// returns how many were skipped because their queue was full.
func (cm *ConnectionManager) Broadcast(eventType bridge.EventType, message []byte) int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	skipped := 0
	for _, client := range cm.clients {
		if !client.Wants(eventType) {
			continue
		}
		select {
		case client.Send <- message:
		default:
			skipped++
		}
	}
	return skipped
}

// GetStats returns connection statistics
func (cm *ConnectionManager) GetStats() *ConnectionStats {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	stats := &ConnectionStats{
		TotalConnections: len(cm.clients),
		Clients:          make([]*Client, 0, len(cm.clients)),
	}
	for _, client := range cm.clients {
		stats.Clients = append(stats.Clients, client)
	}
	return stats
}

// ConnectionStats represents connection statistics
type ConnectionStats struct {
	TotalConnections int       `json:"total_connections"`
	Clients          []*Client `json:"clients"`
}

// internal/bridge/events.go
package bridge

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventConnectionOpened EventType = "CONNECTION_OPENED"
	EventConnectionClosed EventType = "CONNECTION_CLOSED"
	EventConnectionLost   EventType = "CONNECTION_LOST"
	EventTextLine         EventType = "TEXT_LINE"
	EventResponse         EventType = "RESPONSE"
	EventIndicatorCleared EventType = "INDICATOR_CLEARED"
	EventCommandSent      EventType = "COMMAND_SENT"
)

// Event is an immutable notification from the bridge. Exactly one of the
// payload pointers is set, matching Type.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Type      EventType         `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Conn      *ConnectionEvent  `json:"connection,omitempty"`
	Line      *TextLineEvent    `json:"line,omitempty"`
	Response  *ResponseEvent    `json:"response,omitempty"`
	Indicator *IndicatorEvent   `json:"indicator,omitempty"`
	Command   *CommandSentEvent `json:"command,omitempty"`
}

// ConnectionEvent describes an open, close or loss of the serial link
type ConnectionEvent struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate"`
	Error    string `json:"error,omitempty"`
}

// TextLineEvent carries a free-form line printed by the board
type TextLineEvent struct {
	Text string `json:"text"`
}

// ResponseEvent is a classified protocol byte
type ResponseEvent struct {
	Code       byte      `json:"code"`
	Name       string    `json:"name"`
	ObservedAt time.Time `json:"observed_at"`
}

// IndicatorEvent reports an indicator going inactive
type IndicatorEvent struct {
	Code byte   `json:"code"`
	Name string `json:"name"`
}

// CommandSentEvent records a successful write
type CommandSentEvent struct {
	Type        string `json:"type"`
	Mode        string `json:"mode"`
	Description string `json:"description"`
	Bytes       int    `json:"bytes"`
}

func newEvent(t EventType, now time.Time) Event {
	return Event{
		ID:        uuid.New(),
		Type:      t,
		Timestamp: now,
	}
}

// internal/bridge/errors.go
package bridge

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConnected is returned by Send when no port is open
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnected is returned by Open when a connection exists
	ErrAlreadyConnected = errors.New("already connected")
)

// ConnectFailure classifies why a port could not be opened
type ConnectFailure string

const (
	ConnectPortNotFound     ConnectFailure = "port_not_found"
	ConnectPortBusy         ConnectFailure = "port_busy"
	ConnectPermissionDenied ConnectFailure = "permission_denied"
	ConnectInvalidBaudRate  ConnectFailure = "invalid_baud_rate"
	ConnectUnknown          ConnectFailure = "unknown"
)

// ConnectError reports a failed Open. The manager stays disconnected.
type ConnectError struct {
	Port     string
	BaudRate int
	Reason   ConnectFailure
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to open %s @ %d (%s): %v", e.Port, e.BaudRate, e.Reason, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// ErrorCode is the API code for the failure reason, e.g. PORT_BUSY
func (e *ConnectError) ErrorCode() string {
	if e.Reason == ConnectUnknown || e.Reason == "" {
		return "CONNECT_FAILED"
	}
	return strings.ToUpper(string(e.Reason))
}

// SendError reports a failed write. Connection state is not changed by it.
type SendError struct {
	Command string
	Err     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send %s: %v", e.Command, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

func (e *SendError) ErrorCode() string { return "DEVICE_IO_ERROR" }

// IsConnectError returns true if err carries a ConnectError
func IsConnectError(err error) bool {
	var target *ConnectError
	return errors.As(err, &target)
}

// ConnectReason returns the failure reason carried by err, or
// ConnectUnknown when err is not a ConnectError
func ConnectReason(err error) ConnectFailure {
	var target *ConnectError
	if errors.As(err, &target) {
		return target.Reason
	}
	return ConnectUnknown
}

// IsSendError returns true if err carries a SendError
func IsSendError(err error) bool {
	var target *SendError
	return errors.As(err, &target)
}

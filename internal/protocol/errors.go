// internal/protocol/errors.go
package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCommand is wrapped by every command validation failure
	ErrInvalidCommand = errors.New("invalid command")
	// ErrMalformedRaw is wrapped by MalformedRawError
	ErrMalformedRaw = errors.New("malformed raw payload")
)

// MalformedRawError reports a raw binary payload that is not a list of hex bytes
type MalformedRawError struct {
	Token string
	Index int
}

func (e *MalformedRawError) Error() string {
	if e.Token == "" {
		return "malformed raw payload: no hex bytes"
	}
	return fmt.Sprintf("malformed raw payload: token %d %q is not a hex byte", e.Index, e.Token)
}

// Unwrap lets errors.Is match ErrMalformedRaw
func (e *MalformedRawError) Unwrap() error {
	return ErrMalformedRaw
}

func (e *MalformedRawError) ErrorCode() string { return "MALFORMED_RAW" }

// IsMalformedRaw returns true if err carries a MalformedRawError
func IsMalformedRaw(err error) bool {
	var target *MalformedRawError
	return errors.As(err, &target)
}

func invalidCommand(t CommandType, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidCommand, t, fmt.Sprintf(format, args...))
}

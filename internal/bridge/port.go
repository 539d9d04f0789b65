// internal/bridge/port.go
package bridge

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// SupportedBaudRates are the rates the board firmware is built for
var SupportedBaudRates = []int{9600, 19200, 57600, 115200, 230400}

// DefaultReadTimeout keeps reads close to "whatever is available now"
const DefaultReadTimeout = 10 * time.Millisecond

// Port is the subset of go.bug.st/serial.Port the bridge uses. Reads and
// writes may run concurrently from different goroutines.
type Port interface {
	// Read returns 0, nil when nothing arrived within the read timeout
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Opener opens a named port at a baud rate
type Opener interface {
	Open(name string, baudRate int) (Port, error)
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(name string, baudRate int) (Port, error)

// Open implements Opener
func (f OpenerFunc) Open(name string, baudRate int) (Port, error) {
	return f(name, baudRate)
}

// SerialOpener opens real serial devices, 8N1
type SerialOpener struct {
	ReadTimeout time.Duration
}

// NewSerialOpener creates an opener with the given read timeout
func NewSerialOpener(readTimeout time.Duration) *SerialOpener {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	return &SerialOpener{ReadTimeout: readTimeout}
}

// Open implements Opener
func (o *SerialOpener) Open(name string, baudRate int) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}

	if err := port.SetReadTimeout(o.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	return port, nil
}

// IsSupportedBaudRate reports whether rate is one of SupportedBaudRates
func IsSupportedBaudRate(rate int) bool {
	for _, r := range SupportedBaudRates {
		if r == rate {
			return true
		}
	}
	return false
}

// openFailureReason classifies an open error for ConnectError
func openFailureReason(err error) ConnectFailure {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortBusy:
			return ConnectPortBusy
		case serial.PortNotFound:
			return ConnectPortNotFound
		case serial.PermissionDenied:
			return ConnectPermissionDenied
		case serial.InvalidSpeed:
			return ConnectInvalidBaudRate
		}
	}
	return ConnectUnknown
}

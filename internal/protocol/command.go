// internal/protocol/command.go
package protocol

import (
	"fmt"
	"strings"
)

// TransportMode selects how a command is put on the wire
type TransportMode int

const (
	// ModeMaster sends newline-terminated text commands
	ModeMaster TransportMode = iota
	// ModeSlave sends fixed 3-byte binary frames
	ModeSlave
)

// String returns the mode name
func (m TransportMode) String() string {
	switch m {
	case ModeMaster:
		return "master"
	case ModeSlave:
		return "slave"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseTransportMode accepts "master"/"text" and "slave"/"binary"
func ParseTransportMode(s string) (TransportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "master", "text":
		return ModeMaster, nil
	case "slave", "binary":
		return ModeSlave, nil
	default:
		return ModeMaster, fmt.Errorf("unknown transport mode %q", s)
	}
}

// Binary opcodes
const (
	OpPwm      byte = 0x01
	OpDigital  byte = 0x02
	OpServo    byte = 0x03
	OpNeopixel byte = 0x04
	OpPing     byte = 0xF0
	OpReset    byte = 0xFF
)

// Limits accepted by the board
const (
	MinMotor    = 1
	MaxMotor    = 4
	MaxServo    = 180
	MinTerminal = 1
	MaxTerminal = 2
)

// Neopixel colour codes understood by the firmware
const (
	NeoOff   byte = 0x00
	NeoRed   byte = 0x01
	NeoGreen byte = 0x02
	NeoBlue  byte = 0x03
	NeoWhite byte = 0xFF
)

var neopixelNames = map[byte]string{
	NeoOff:   "OFF",
	NeoRed:   "red",
	NeoGreen: "green",
	NeoBlue:  "blue",
	NeoWhite: "white",
}

// NeopixelName returns the colour name for a code, or its hex form
func NeopixelName(code byte) string {
	if name, ok := neopixelNames[code]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", code)
}

// CommandType names a command variant
type CommandType string

const (
	CommandPing     CommandType = "ping"
	CommandReset    CommandType = "reset"
	CommandPwm      CommandType = "pwm"
	CommandServo    CommandType = "servo"
	CommandDigital  CommandType = "digital"
	CommandNeopixel CommandType = "neopixel"
	CommandRaw      CommandType = "raw"
)

// Command is one request for the board. The concrete types below are the
// only implementations.
type Command interface {
	Type() CommandType
	Validate() error
	// Describe returns a short operator-facing label
	Describe() string

	command()
}

// Ping asks the board for a PONG
type Ping struct{}

// Reset restarts the board
type Reset struct{}

// Pwm sets the duty value of a motor output
type Pwm struct {
	Motor byte
	Value byte
}

// Servo moves the servo to an angle in degrees
type Servo struct {
	Angle byte
}

// Digital drives one motor terminal high or low. PinID packs the motor in
// the high nibble and the terminal in the low nibble.
type Digital struct {
	PinID byte
	Value byte
}

// Neopixel sets the on-board LED colour
type Neopixel struct {
	Code byte
}

// Raw is sent as typed by the operator: text in master mode, hex bytes in
// slave mode.
type Raw struct {
	Payload string
}

func (Ping) Type() CommandType     { return CommandPing }
func (Reset) Type() CommandType    { return CommandReset }
func (Pwm) Type() CommandType      { return CommandPwm }
func (Servo) Type() CommandType    { return CommandServo }
func (Digital) Type() CommandType  { return CommandDigital }
func (Neopixel) Type() CommandType { return CommandNeopixel }
func (Raw) Type() CommandType      { return CommandRaw }

func (Ping) command()     {}
func (Reset) command()    {}
func (Pwm) command()      {}
func (Servo) command()    {}
func (Digital) command()  {}
func (Neopixel) command() {}
func (Raw) command()      {}

func (Ping) Validate() error     { return nil }
func (Reset) Validate() error    { return nil }
func (Neopixel) Validate() error { return nil }

func (c Pwm) Validate() error {
	if c.Motor < MinMotor || c.Motor > MaxMotor {
		return invalidCommand(CommandPwm, "motor must be %d-%d, got %d", MinMotor, MaxMotor, c.Motor)
	}
	return nil
}

func (c Servo) Validate() error {
	if c.Angle > MaxServo {
		return invalidCommand(CommandServo, "angle must be 0-%d, got %d", MaxServo, c.Angle)
	}
	return nil
}

func (c Digital) Validate() error {
	if c.Value > 1 {
		return invalidCommand(CommandDigital, "value must be 0 or 1, got %d", c.Value)
	}
	return nil
}

func (c Raw) Validate() error {
	if strings.TrimSpace(c.Payload) == "" {
		return invalidCommand(CommandRaw, "payload is empty")
	}
	return nil
}

func (Ping) Describe() string  { return "PING" }
func (Reset) Describe() string { return "RESET" }

func (c Pwm) Describe() string {
	return fmt.Sprintf("PWM M%d=%d", c.Motor, c.Value)
}

func (c Servo) Describe() string {
	return fmt.Sprintf("SERVO=%d°", c.Angle)
}

func (c Digital) Describe() string {
	return fmt.Sprintf("DIGITAL %#04x=%d", c.PinID, c.Value)
}

func (c Neopixel) Describe() string {
	return "NEO=" + NeopixelName(c.Code)
}

func (c Raw) Describe() string {
	return "RAW " + c.Payload
}

// PinID packs a motor number and terminal index into a digital pin id,
// e.g. motor 4 terminal 2 is 0x42.
func PinID(motor, terminal byte) (byte, error) {
	if motor < MinMotor || motor > MaxMotor {
		return 0, invalidCommand(CommandDigital, "motor must be %d-%d, got %d", MinMotor, MaxMotor, motor)
	}
	if terminal < MinTerminal || terminal > MaxTerminal {
		return 0, invalidCommand(CommandDigital, "terminal must be %d-%d, got %d", MinTerminal, MaxTerminal, terminal)
	}
	return motor<<4 | terminal, nil
}

// textPinID renders a packed pin id the way the text protocol expects it:
// motor*10 + terminal.
func textPinID(pinID byte) int {
	return int(pinID>>4)*10 + int(pinID&0x0F)
}

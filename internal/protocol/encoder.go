// internal/protocol/encoder.go
package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// FrameSize is the length of every binary command frame
const FrameSize = 3

// Encode maps a command to the bytes written to the board.
//
// Slave mode frame structure:
//
//	[OPCODE][PIN_ID][VALUE]
//
// Master mode is a single ASCII line terminated by '\n'.
func Encode(cmd Command, mode TransportMode) ([]byte, error) {
	if cmd == nil {
		return nil, fmt.Errorf("%w: nil command", ErrInvalidCommand)
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	switch mode {
	case ModeSlave:
		return encodeBinary(cmd)
	case ModeMaster:
		line, err := encodeText(cmd)
		if err != nil {
			return nil, err
		}
		return []byte(line + "\n"), nil
	default:
		return nil, fmt.Errorf("unsupported transport mode %s", mode)
	}
}

func encodeBinary(cmd Command) ([]byte, error) {
	switch c := cmd.(type) {
	case Ping:
		return []byte{OpPing, 0x00, 0x00}, nil
	case Reset:
		return []byte{OpReset, 0x00, 0x00}, nil
	case Pwm:
		return []byte{OpPwm, c.Motor, c.Value}, nil
	case Servo:
		return []byte{OpServo, 0x00, c.Angle}, nil
	case Digital:
		return []byte{OpDigital, c.PinID, c.Value}, nil
	case Neopixel:
		return []byte{OpNeopixel, 0x00, c.Code}, nil
	case Raw:
		return ParseHexBytes(c.Payload)
	default:
		return nil, fmt.Errorf("%w: unknown command %T", ErrInvalidCommand, cmd)
	}
}

func encodeText(cmd Command) (string, error) {
	switch c := cmd.(type) {
	case Ping:
		return "ping", nil
	case Reset:
		return "reset", nil
	case Pwm:
		return fmt.Sprintf("pwm %d %d", c.Motor, c.Value), nil
	case Servo:
		return fmt.Sprintf("servo %d", c.Angle), nil
	case Digital:
		return fmt.Sprintf("digital %d %d", textPinID(c.PinID), c.Value), nil
	case Neopixel:
		if c.Code == NeoWhite {
			return "neo ff", nil
		}
		return fmt.Sprintf("neo %d", c.Code), nil
	case Raw:
		return c.Payload, nil
	default:
		return "", fmt.Errorf("%w: unknown command %T", ErrInvalidCommand, cmd)
	}
}

// ParseHexBytes decodes whitespace separated hex byte literals such as
// "01 0a FF". Any token that is not a one or two digit hex number fails the
// whole payload.
func ParseHexBytes(payload string) ([]byte, error) {
	tokens := strings.Fields(payload)
	if len(tokens) == 0 {
		return nil, &MalformedRawError{}
	}

	out := make([]byte, 0, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil || len(tok) > 2 {
			return nil, &MalformedRawError{Token: tok, Index: i}
		}
		out = append(out, byte(v))
	}
	return out, nil
}

// FormatHexBytes renders bytes as upper-case space separated hex
func FormatHexBytes(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

// DescribeSent returns the log label for a command that was written as wire.
// Text sends show the line itself, binary sends show the command label.
func DescribeSent(cmd Command, mode TransportMode, wire []byte) string {
	if mode == ModeMaster {
		return strings.TrimRight(string(wire), "\n")
	}
	if _, ok := cmd.(Raw); ok {
		label := "BIN " + FormatHexBytes(wire)
		// a raw frame that spells a typed command is labelled with it
		if decoded, err := DecodeBinary(wire); err == nil {
			if _, still := decoded.(Raw); !still {
				label += " (" + decoded.Describe() + ")"
			}
		}
		return label
	}
	return cmd.Describe()
}

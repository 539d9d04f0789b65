// internal/protocol/decoder.go
package protocol

import "fmt"

// DecodeBinary is the inverse of the slave-mode encoding. Frames that are not
// a canonical 3-byte command come back as Raw with their bytes in hex, so
// DecodeBinary(Encode(cmd, ModeSlave)) == cmd for every typed command.
func DecodeBinary(frame []byte) (Command, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("empty frame")
	}
	if len(frame) != FrameSize {
		return Raw{Payload: FormatHexBytes(frame)}, nil
	}

	op, pin, value := frame[0], frame[1], frame[2]
	var cmd Command
	switch op {
	case OpPing:
		if pin == 0 && value == 0 {
			cmd = Ping{}
		}
	case OpReset:
		if pin == 0 && value == 0 {
			cmd = Reset{}
		}
	case OpPwm:
		cmd = Pwm{Motor: pin, Value: value}
	case OpServo:
		if pin == 0 {
			cmd = Servo{Angle: value}
		}
	case OpDigital:
		cmd = Digital{PinID: pin, Value: value}
	case OpNeopixel:
		if pin == 0 {
			cmd = Neopixel{Code: value}
		}
	}

	if cmd == nil || cmd.Validate() != nil {
		return Raw{Payload: FormatHexBytes(frame)}, nil
	}
	return cmd, nil
}

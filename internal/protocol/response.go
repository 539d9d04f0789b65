// internal/protocol/response.go
package protocol

import "fmt"

// Response codes sent back by the board in slave mode
const (
	RespPong     byte = 0xAA
	RespPwm      byte = 0x01
	RespDigital  byte = 0x02
	RespServo    byte = 0x03
	RespNeopixel byte = 0x04
	RespReset    byte = 0xBB
	RespError    byte = 0xEE
)

// KnownResponses lists every named response code in display order
var KnownResponses = []byte{
	RespPong,
	RespPwm,
	RespDigital,
	RespServo,
	RespNeopixel,
	RespReset,
	RespError,
}

// ResponseName returns the name of a response code. Unknown codes are
// rendered as hex.
func ResponseName(code byte) string {
	switch code {
	case RespPong:
		return "PONG/OK"
	case RespPwm:
		return "PWM OK"
	case RespDigital:
		return "DIGITAL OK"
	case RespServo:
		return "SERVO OK"
	case RespNeopixel:
		return "NEOPIXEL OK"
	case RespReset:
		return "RESET OK"
	case RespError:
		return "ERROR"
	default:
		return fmt.Sprintf("0x%02X", code)
	}
}

// IsKnownResponse reports whether code has a fixed name
func IsKnownResponse(code byte) bool {
	for _, c := range KnownResponses {
		if c == code {
			return true
		}
	}
	return false
}

// internal/handler/command_request.go
package handler

import (
	"fmt"
	"strings"

	"board-bridge/internal/protocol"
)

// CommandRequest is the JSON form of a board command. Only the fields used
// by Type are read.
type CommandRequest struct {
	Type     string `json:"type" binding:"required" example:"pwm"`
	Mode     string `json:"mode,omitempty" example:"slave"`
	Motor    *int   `json:"motor,omitempty" example:"1"`
	Value    *int   `json:"value,omitempty" example:"128"`
	Angle    *int   `json:"angle,omitempty" example:"90"`
	PinID    *int   `json:"pin_id,omitempty" example:"66"`
	Terminal *int   `json:"terminal,omitempty" example:"2"`
	Code     *int   `json:"code,omitempty" example:"1"`
	Color    string `json:"color,omitempty" example:"red"`
	Payload  string `json:"payload,omitempty" example:"01 02 80"`
}

// ToCommand builds the protocol command described by the request
func (r *CommandRequest) ToCommand() (protocol.Command, error) {
	switch protocol.CommandType(strings.ToLower(r.Type)) {
	case protocol.CommandPing:
		return protocol.Ping{}, nil

	case protocol.CommandReset:
		return protocol.Reset{}, nil

	case protocol.CommandPwm:
		motor, err := requireByte("motor", r.Motor)
		if err != nil {
			return nil, err
		}
		value, err := requireByte("value", r.Value)
		if err != nil {
			return nil, err
		}
		return protocol.Pwm{Motor: motor, Value: value}, nil

	case protocol.CommandServo:
		angle, err := requireByte("angle", r.Angle)
		if err != nil {
			return nil, err
		}
		return protocol.Servo{Angle: angle}, nil

	case protocol.CommandDigital:
		pinID, err := r.digitalPin()
		if err != nil {
			return nil, err
		}
		value, err := requireByte("value", r.Value)
		if err != nil {
			return nil, err
		}
		return protocol.Digital{PinID: pinID, Value: value}, nil

	case protocol.CommandNeopixel:
		if r.Color != "" {
			code, ok := neopixelCode(r.Color)
			if !ok {
				return nil, fmt.Errorf("%w: neopixel: unknown color %q", protocol.ErrInvalidCommand, r.Color)
			}
			return protocol.Neopixel{Code: code}, nil
		}
		code, err := requireByte("code", r.Code)
		if err != nil {
			return nil, err
		}
		return protocol.Neopixel{Code: code}, nil

	case protocol.CommandRaw:
		return protocol.Raw{Payload: r.Payload}, nil

	default:
		return nil, fmt.Errorf("%w: unknown command type %q", protocol.ErrInvalidCommand, r.Type)
	}
}

// ResolveMode returns the requested mode or fallback when none was given
func (r *CommandRequest) ResolveMode(fallback protocol.TransportMode) (protocol.TransportMode, error) {
	if r.Mode == "" {
		return fallback, nil
	}
	mode, err := protocol.ParseTransportMode(r.Mode)
	if err != nil {
		return fallback, fmt.Errorf("%w: %v", protocol.ErrInvalidCommand, err)
	}
	return mode, nil
}

// digitalPin accepts either a packed pin_id or a motor and terminal pair
func (r *CommandRequest) digitalPin() (byte, error) {
	if r.PinID != nil {
		return requireByte("pin_id", r.PinID)
	}
	motor, err := requireByte("motor", r.Motor)
	if err != nil {
		return 0, err
	}
	terminal, err := requireByte("terminal", r.Terminal)
	if err != nil {
		return 0, err
	}
	return protocol.PinID(motor, terminal)
}

func requireByte(field string, v *int) (byte, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: %s is required", protocol.ErrInvalidCommand, field)
	}
	if *v < 0 || *v > 0xFF {
		return 0, fmt.Errorf("%w: %s must be 0-255, got %d", protocol.ErrInvalidCommand, field, *v)
	}
	return byte(*v), nil
}

var neopixelCodes = []byte{
	protocol.NeoOff,
	protocol.NeoRed,
	protocol.NeoGreen,
	protocol.NeoBlue,
	protocol.NeoWhite,
}

func neopixelCode(name string) (byte, bool) {
	for _, code := range neopixelCodes {
		if strings.EqualFold(protocol.NeopixelName(code), name) {
			return code, true
		}
	}
	return 0, false
}

package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBannerLine(t *testing.T) {
	tests := []struct {
		line   string
		banner bool
	}{
		{"=== menu ===", true},
		{"Comandos disponibles:", true},
		{"  ping", true},
		{"ping", true},
		{"pwm <1-4> <0-255>", true},
		{"  digital <11-42> <0|1>", true},
		{"UART a 115200", true},
		{"Estado: listo", true},
		{"Custom status: OK", false},
		{"PONG", false},
		{"pinged", false},
		{"neopixel ready", false},
		{"  pwm 1 200", true},
		{"servo - mueve el servo", true},
		{"reset", true},
		{"pwm 1 200 ok", false},
		{"digital 11 1", false},
		{"neo ff", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.banner, IsBannerLine(tt.line))
		})
	}
}

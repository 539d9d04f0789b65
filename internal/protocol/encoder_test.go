package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBinary(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want []byte
	}{
		{name: "ping", cmd: Ping{}, want: []byte{0xF0, 0x00, 0x00}},
		{name: "reset", cmd: Reset{}, want: []byte{0xFF, 0x00, 0x00}},
		{name: "pwm", cmd: Pwm{Motor: 3, Value: 200}, want: []byte{0x01, 0x03, 0xC8}},
		{name: "servo", cmd: Servo{Angle: 90}, want: []byte{0x03, 0x00, 0x5A}},
		{name: "digital", cmd: Digital{PinID: 0x42, Value: 1}, want: []byte{0x02, 0x42, 0x01}},
		{name: "neopixel white", cmd: Neopixel{Code: NeoWhite}, want: []byte{0x04, 0x00, 0xFF}},
		{name: "raw hex", cmd: Raw{Payload: " 01 0a  FF "}, want: []byte{0x01, 0x0A, 0xFF}},
		{name: "raw single digit", cmd: Raw{Payload: "f 1"}, want: []byte{0x0F, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.cmd, ModeSlave)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeText(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{name: "ping", cmd: Ping{}, want: "ping\n"},
		{name: "reset", cmd: Reset{}, want: "reset\n"},
		{name: "pwm", cmd: Pwm{Motor: 1, Value: 255}, want: "pwm 1 255\n"},
		{name: "servo", cmd: Servo{Angle: 180}, want: "servo 180\n"},
		{name: "neopixel code", cmd: Neopixel{Code: NeoBlue}, want: "neo 3\n"},
		{name: "neopixel white", cmd: Neopixel{Code: 0xFF}, want: "neo ff\n"},
		{name: "digital m1 t1", cmd: Digital{PinID: 0x11, Value: 1}, want: "digital 11 1\n"},
		{name: "digital m4 t2", cmd: Digital{PinID: 0x42, Value: 0}, want: "digital 42 0\n"},
		{name: "raw", cmd: Raw{Payload: "status please"}, want: "status please\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.cmd, ModeMaster)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEncodeRejectsMalformedRaw(t *testing.T) {
	for _, payload := range []string{"01 zz 03", "100", "0x01", "", "   "} {
		t.Run(payload, func(t *testing.T) {
			_, err := Encode(Raw{Payload: payload}, ModeSlave)
			require.Error(t, err)
			if payload == "" || payload == "   " {
				assert.ErrorIs(t, err, ErrInvalidCommand)
				return
			}
			assert.ErrorIs(t, err, ErrMalformedRaw)
			assert.True(t, IsMalformedRaw(err))
		})
	}
}

func TestEncodeValidatesRanges(t *testing.T) {
	cmds := []Command{
		Pwm{Motor: 0, Value: 10},
		Pwm{Motor: 5, Value: 10},
		Servo{Angle: 181},
		Digital{PinID: 0x11, Value: 2},
		nil,
	}
	for _, cmd := range cmds {
		for _, mode := range []TransportMode{ModeMaster, ModeSlave} {
			_, err := Encode(cmd, mode)
			assert.ErrorIs(t, err, ErrInvalidCommand, "%#v in %s", cmd, mode)
		}
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	cmds := []Command{
		Ping{},
		Reset{},
		Pwm{Motor: 1, Value: 0},
		Pwm{Motor: 4, Value: 255},
		Servo{Angle: 0},
		Servo{Angle: 180},
		Digital{PinID: 0x11, Value: 1},
		Digital{PinID: 0x32, Value: 0},
		Neopixel{Code: NeoOff},
		Neopixel{Code: NeoWhite},
		Raw{Payload: "10 20 30"},
		Raw{Payload: "AB"},
	}

	for _, cmd := range cmds {
		wire, err := Encode(cmd, ModeSlave)
		require.NoError(t, err)
		got, err := DecodeBinary(wire)
		require.NoError(t, err)
		assert.Equal(t, cmd, got)
	}
}

func TestDecodeBinaryNonCanonical(t *testing.T) {
	got, err := DecodeBinary([]byte{OpPing, 0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, Raw{Payload: "F0 01 00"}, got)

	got, err = DecodeBinary([]byte{OpPwm, 0x09, 0x10})
	require.NoError(t, err)
	assert.Equal(t, Raw{Payload: "01 09 10"}, got)

	_, err = DecodeBinary(nil)
	assert.Error(t, err)
}

func TestPinID(t *testing.T) {
	id, err := PinID(4, 2)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), id)

	_, err = PinID(5, 1)
	assert.ErrorIs(t, err, ErrInvalidCommand)
	_, err = PinID(1, 3)
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestParseTransportMode(t *testing.T) {
	m, err := ParseTransportMode("Binary")
	require.NoError(t, err)
	assert.Equal(t, ModeSlave, m)

	m, err = ParseTransportMode("master")
	require.NoError(t, err)
	assert.Equal(t, ModeMaster, m)

	_, err = ParseTransportMode("duplex")
	assert.Error(t, err)
}

func TestDescribeSent(t *testing.T) {
	wire, err := Encode(Raw{Payload: "1 ff"}, ModeSlave)
	require.NoError(t, err)
	assert.Equal(t, "BIN 01 FF", DescribeSent(Raw{Payload: "1 ff"}, ModeSlave, wire))
	assert.Equal(t, "BIN 03 00 5A (SERVO=90°)", DescribeSent(Raw{Payload: "03 00 5a"}, ModeSlave, []byte{0x03, 0x00, 0x5A}))
	assert.Equal(t, "BIN 03 07 5A", DescribeSent(Raw{Payload: "03 07 5a"}, ModeSlave, []byte{0x03, 0x07, 0x5A}))

	wire, err = Encode(Digital{PinID: 0x21, Value: 1}, ModeMaster)
	require.NoError(t, err)
	assert.Equal(t, "digital 21 1", DescribeSent(Digital{PinID: 0x21, Value: 1}, ModeMaster, wire))

	assert.Equal(t, "NEO=red", DescribeSent(Neopixel{Code: NeoRed}, ModeSlave, nil))
	assert.Equal(t, "PWM M2=40", DescribeSent(Pwm{Motor: 2, Value: 40}, ModeSlave, nil))
}

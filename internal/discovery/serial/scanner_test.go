package serial

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

func TestScanSortsAndDescribes(t *testing.T) {
	s := NewScannerWithLister(nil, func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{
			{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1a86", PID: "7523"},
			{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043", Product: "Arduino Uno ", SerialNumber: "8573"},
			{Name: "/dev/ttyS0"},
			nil,
		}, nil
	})

	ports, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, ports, 3)

	assert.Equal(t, "/dev/ttyACM0", ports[0].Name)
	assert.Equal(t, "Arduino Uno", ports[0].Description)
	assert.Equal(t, "8573", ports[0].SerialNumber)
	assert.Equal(t, "/dev/ttyACM0 - Arduino Uno", ports[0].Label())

	assert.Equal(t, "/dev/ttyS0", ports[1].Name)
	assert.False(t, ports[1].IsUSB)
	assert.Equal(t, "/dev/ttyS0", ports[1].Label())

	assert.Equal(t, "USB VID:PID=1A86:7523", ports[2].Description)
}

func TestScanPropagatesErrors(t *testing.T) {
	s := NewScannerWithLister(nil, func() ([]*enumerator.PortDetails, error) {
		return nil, errors.New("enumeration unsupported")
	})

	_, err := s.Scan(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enumeration unsupported")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

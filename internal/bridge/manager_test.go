package bridge

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board-bridge/internal/protocol"
)

func newTestManager(port *mockPort) *Manager {
	return NewManager(openerFor(port), Options{PollInterval: time.Millisecond})
}

func TestManagerOpenSendClose(t *testing.T) {
	port := newMockPort()
	m := newTestManager(port)
	assert.Equal(t, StateDisconnected, m.State())

	require.NoError(t, m.Open(context.Background(), "/dev/ttyUSB0", 115200))
	assert.Equal(t, StateConnected, m.State())
	opened := waitEvent(t, m.Events(), EventConnectionOpened)
	assert.Equal(t, "/dev/ttyUSB0", opened.Conn.Port)
	assert.Equal(t, 115200, opened.Conn.BaudRate)

	require.NoError(t, m.Send(protocol.Pwm{Motor: 2, Value: 128}, protocol.ModeSlave))
	require.NoError(t, m.Send(protocol.Digital{PinID: 0x42, Value: 0}, protocol.ModeMaster))
	assert.Equal(t, append([]byte{0x01, 0x02, 0x80}, []byte("digital 42 0\n")...), port.writtenBytes())

	sent := waitEvent(t, m.Events(), EventCommandSent)
	assert.Equal(t, "PWM M2=128", sent.Command.Description)
	assert.Equal(t, "slave", sent.Command.Mode)
	sent = waitEvent(t, m.Events(), EventCommandSent)
	assert.Equal(t, "digital 42 0", sent.Command.Description)

	status := m.Status()
	assert.Equal(t, "connected", status.State)
	assert.Equal(t, int64(2), status.CommandsSent)
	assert.Equal(t, int64(3+len("digital 42 0\n")), status.BytesWritten)

	require.NoError(t, m.Close())
	assert.Equal(t, StateDisconnected, m.State())
	assert.True(t, port.isClosed())
	waitEvent(t, m.Events(), EventConnectionClosed)

	// idempotent
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Empty(t, collect(m.Events(), 20*time.Millisecond))
}

func TestManagerSendNotConnected(t *testing.T) {
	m := newTestManager(newMockPort())

	err := m.Send(protocol.Ping{}, protocol.ModeSlave)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.True(t, IsSendError(err))
}

func TestManagerMalformedRawWritesNothing(t *testing.T) {
	port := newMockPort()
	m := newTestManager(port)
	require.NoError(t, m.Open(context.Background(), "COM3", 9600))
	defer m.Close()

	err := m.Send(protocol.Raw{Payload: "01 zz"}, protocol.ModeSlave)
	assert.ErrorIs(t, err, protocol.ErrMalformedRaw)
	assert.Empty(t, port.writtenBytes())
}

func TestManagerWriteFailureKeepsConnection(t *testing.T) {
	port := newMockPort()
	port.writeErr = errors.New("write timeout")
	m := newTestManager(port)
	require.NoError(t, m.Open(context.Background(), "COM3", 9600))
	defer m.Close()

	for i := 0; i < 3; i++ {
		err := m.Send(protocol.Ping{}, protocol.ModeSlave)
		require.Error(t, err)
		assert.True(t, IsSendError(err))
		assert.ErrorIs(t, err, port.writeErr)
	}
	assert.Equal(t, StateConnected, m.State())
	assert.False(t, port.isClosed())
}

func TestManagerShortWrite(t *testing.T) {
	port := newMockPort()
	port.shortWrite = true
	m := newTestManager(port)
	require.NoError(t, m.Open(context.Background(), "COM3", 9600))
	defer m.Close()

	err := m.Send(protocol.Reset{}, protocol.ModeSlave)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete write")
	assert.Equal(t, StateConnected, m.State())
}

func TestManagerOpenErrors(t *testing.T) {
	m := NewManager(OpenerFunc(func(name string, baudRate int) (Port, error) {
		return nil, errors.New("no such device")
	}), Options{})

	err := m.Open(context.Background(), "/dev/missing", 9600)
	require.Error(t, err)
	var connErr *ConnectError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, ConnectUnknown, connErr.Reason)
	assert.Equal(t, StateDisconnected, m.State())

	err = m.Open(context.Background(), "/dev/ttyUSB0", 38400)
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, ConnectInvalidBaudRate, connErr.Reason)
	assert.True(t, IsConnectError(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, ConnectInvalidBaudRate, ConnectReason(err))
	assert.Equal(t, ConnectUnknown, ConnectReason(ErrNotConnected))
	assert.False(t, IsConnectError(ErrNotConnected))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Open(ctx, "/dev/ttyUSB0", 9600), context.Canceled)
}

func TestManagerOpenTwice(t *testing.T) {
	m := newTestManager(newMockPort())
	require.NoError(t, m.Open(context.Background(), "COM1", 57600))
	defer m.Close()

	assert.ErrorIs(t, m.Open(context.Background(), "COM1", 57600), ErrAlreadyConnected)
	assert.Equal(t, StateConnected, m.State())
}

func TestManagerDeliversFrames(t *testing.T) {
	port := newMockPort()
	m := newTestManager(port)
	require.NoError(t, m.Open(context.Background(), "COM1", 115200))
	defer m.Close()

	port.feed(
		[]byte("=== menu ===\r\n  ping\r\n"),
		[]byte("Custom status: OK\n\xAA"),
	)

	line := waitEvent(t, m.Events(), EventTextLine)
	assert.Equal(t, "Custom status: OK", line.Line.Text)

	resp := waitEvent(t, m.Events(), EventResponse)
	assert.Equal(t, byte(0xAA), resp.Response.Code)
	assert.Equal(t, "PONG/OK", resp.Response.Name)

	for _, ind := range m.Indicators() {
		if ind.Code == 0xAA {
			assert.True(t, ind.Active)
		}
	}
	assert.Equal(t, int64(len("=== menu ===\r\n  ping\r\nCustom status: OK\n\xAA")), m.Status().BytesRead)
}

func TestManagerBannerNeverSurfaces(t *testing.T) {
	port := newMockPort([]byte("=== menu ===\n  ping\nComandos:\nlast\n"))
	m := newTestManager(port)
	require.NoError(t, m.Open(context.Background(), "COM1", 115200))
	defer m.Close()

	line := waitEvent(t, m.Events(), EventTextLine)
	assert.Equal(t, "last", line.Line.Text)
}

func TestManagerKeepsCommandEchoReplies(t *testing.T) {
	port := newMockPort([]byte("  pwm <1-4> <0-255>\npwm 1 200 ok\n"))
	m := newTestManager(port)
	require.NoError(t, m.Open(context.Background(), "COM1", 115200))
	defer m.Close()

	line := waitEvent(t, m.Events(), EventTextLine)
	assert.Equal(t, "pwm 1 200 ok", line.Line.Text)
}

func TestManagerIndicatorClearsThroughEvents(t *testing.T) {
	clock := newFakeClock()
	port := newMockPort([]byte{0xBB})
	m := NewManager(openerFor(port), Options{PollInterval: time.Millisecond, Clock: clock})
	require.NoError(t, m.Open(context.Background(), "COM1", 9600))
	defer m.Close()

	waitEvent(t, m.Events(), EventResponse)
	clock.Advance(DefaultIndicatorHold)

	cleared := waitEvent(t, m.Events(), EventIndicatorCleared)
	assert.Equal(t, byte(0xBB), cleared.Indicator.Code)
	assert.Equal(t, "RESET OK", cleared.Indicator.Name)
}

func TestManagerConnectionLost(t *testing.T) {
	port := newMockPort()
	m := newTestManager(port)
	require.NoError(t, m.Open(context.Background(), "/dev/ttyACM0", 230400))

	port.fail(errors.New("input/output error"))

	lost := waitEvent(t, m.Events(), EventConnectionLost)
	assert.Equal(t, "/dev/ttyACM0", lost.Conn.Port)
	assert.Contains(t, lost.Conn.Error, "input/output error")

	require.Eventually(t, func() bool {
		return m.State() == StateDisconnected
	}, time.Second, time.Millisecond)
	assert.True(t, port.isClosed())

	err := m.Send(protocol.Ping{}, protocol.ModeMaster)
	assert.ErrorIs(t, err, ErrNotConnected)

	// closing after a loss is still a no-op
	require.NoError(t, m.Close())

	postClose, midRead := port.violations()
	assert.Zero(t, postClose)
	assert.False(t, midRead)
}

func TestManagerCloseDuringRead(t *testing.T) {
	var ports []*mockPort
	opener := OpenerFunc(func(name string, baudRate int) (Port, error) {
		port := newMockPort()
		port.readDelay = 10 * time.Millisecond
		ports = append(ports, port)
		return port, nil
	})
	m := NewManager(opener, Options{PollInterval: time.Millisecond})

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Open(context.Background(), "COM7", 19200))
		port := ports[len(ports)-1]
		require.Eventually(t, func() bool {
			return port.readCount() > 0
		}, time.Second, time.Millisecond)
		require.NoError(t, m.Close())
	}

	for i, port := range ports {
		reads := port.readCount()
		time.Sleep(15 * time.Millisecond)
		assert.Equal(t, reads, port.readCount(), "port %d read after close", i)

		postClose, midRead := port.violations()
		assert.Zero(t, postClose, "port %d", i)
		assert.False(t, midRead, "port %d", i)
		assert.True(t, port.isClosed(), "port %d", i)
	}
}

func TestManagerDropsEventsWhenFull(t *testing.T) {
	port := newMockPort()
	m := NewManager(openerFor(port), Options{PollInterval: time.Millisecond, EventBuffer: 1})
	require.NoError(t, m.Open(context.Background(), "COM1", 9600))
	defer m.Close()

	require.NoError(t, m.Send(protocol.Ping{}, protocol.ModeMaster))
	require.NoError(t, m.Send(protocol.Ping{}, protocol.ModeMaster))
	assert.Equal(t, int64(2), m.Status().DroppedEvents)
}

package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"board-bridge/internal/protocol"
)

type frameSink struct {
	mutex  sync.Mutex
	frames []protocol.Frame
}

func (s *frameSink) handle(f protocol.Frame) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.frames = append(s.frames, f)
}

func (s *frameSink) snapshot() []protocol.Frame {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]protocol.Frame(nil), s.frames...)
}

func TestFrameReaderDrainsInOrder(t *testing.T) {
	port := newMockPort(
		[]byte("hel"),
		[]byte("lo\r\n\xAA\x01"),
		[]byte("abc\r\ndef\n"),
	)
	sink := &frameSink{}
	reader := NewFrameReader(port, time.Millisecond, sink.handle, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reader.Run(ctx) }()

	want := []protocol.Frame{
		protocol.TextLine("hello"),
		protocol.ProtocolByte(0xAA),
		protocol.ProtocolByte(0x01),
		protocol.TextLine("abc"),
		protocol.TextLine("def"),
	}
	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == len(want)
	}, 2*time.Second, 2*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, want, sink.snapshot())
}

func TestFrameReaderOneFramePerTick(t *testing.T) {
	port := newMockPort([]byte("\xAA\xBB\xEE"))
	sink := &frameSink{}
	reader := NewFrameReader(port, time.Hour, sink.handle, nil)

	require.NoError(t, reader.tick())
	assert.Len(t, sink.snapshot(), 1)

	require.NoError(t, reader.tick())
	require.NoError(t, reader.tick())
	assert.Equal(t, []protocol.Frame{
		protocol.ProtocolByte(0xAA),
		protocol.ProtocolByte(0xBB),
		protocol.ProtocolByte(0xEE),
	}, sink.snapshot())
}

func TestFrameReaderStopsOnReadFault(t *testing.T) {
	port := newMockPort()
	faultErr := errors.New("device unplugged")
	port.fail(faultErr)

	reader := NewFrameReader(port, time.Millisecond, nil, nil)
	err := reader.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, faultErr)

	reads := port.readCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, reads, port.readCount())
}

func TestFrameReaderCountsBytes(t *testing.T) {
	port := newMockPort([]byte("12345"))
	reader := NewFrameReader(port, time.Hour, nil, nil)

	var total int
	reader.onRead = func(n int) { total += n }
	require.NoError(t, reader.tick())
	require.NoError(t, reader.tick())
	assert.Equal(t, 5, total)
}

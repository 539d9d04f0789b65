// internal/bridge/reader.go
package bridge

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"board-bridge/internal/protocol"
)

// DefaultPollInterval is the pause between reader ticks
const DefaultPollInterval = 15 * time.Millisecond

const readChunkSize = 4096

// FrameReader polls a port and turns its byte stream into frames. The read
// buffer is only touched from the goroutine running Run.
type FrameReader struct {
	port     Port
	interval time.Duration
	handle   func(protocol.Frame)
	onRead   func(n int)
	logger   *zap.Logger

	buf     protocol.FrameBuffer
	scratch []byte
}

// NewFrameReader creates a reader delivering frames to handle
func NewFrameReader(port Port, interval time.Duration, handle func(protocol.Frame), logger *zap.Logger) *FrameReader {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FrameReader{
		port:     port,
		interval: interval,
		handle:   handle,
		logger:   logger,
		scratch:  make([]byte, readChunkSize),
	}
}

// Run ticks until ctx is cancelled or a read fails. A cancelled context
// returns nil; a read failure is returned and no further reads are made.
func (r *FrameReader) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("Frame reader started", zap.Duration("interval", r.interval))

	for {
		if ctx.Err() != nil {
			r.logger.Debug("Frame reader stopped", zap.Int("buffered", r.buf.Len()))
			return nil
		}

		if err := r.tick(); err != nil {
			r.logger.Error("Frame reader failed", zap.Error(err))
			return err
		}

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}
}

// tick reads whatever is available and emits at most one frame
func (r *FrameReader) tick() error {
	n, err := r.port.Read(r.scratch)
	if n > 0 {
		r.buf.Append(r.scratch[:n])
		if r.onRead != nil {
			r.onRead(n)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to read from serial port: %w", err)
	}

	if frame, ok := r.buf.Next(); ok && r.handle != nil {
		r.handle(frame)
	}
	return nil
}

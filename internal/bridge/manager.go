// internal/bridge/manager.go
package bridge

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"board-bridge/internal/protocol"
)

// DefaultEventBuffer is the capacity of the outgoing event channel
const DefaultEventBuffer = 256

// State is the connection lifecycle state
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Options tune a Manager. Zero values fall back to the defaults.
type Options struct {
	PollInterval  time.Duration
	IndicatorHold time.Duration
	EventBuffer   int
	Clock         Clock
	Logger        *zap.Logger
}

// Status is a point-in-time view of the manager
type Status struct {
	State         string     `json:"state"`
	Port          string     `json:"port,omitempty"`
	BaudRate      int        `json:"baud_rate,omitempty"`
	ConnectedAt   *time.Time `json:"connected_at,omitempty"`
	LastActivity  *time.Time `json:"last_activity,omitempty"`
	BytesRead     int64      `json:"bytes_read"`
	BytesWritten  int64      `json:"bytes_written"`
	CommandsSent  int64      `json:"commands_sent"`
	DroppedEvents int64      `json:"dropped_events"`
}

type connection struct {
	port     Port
	name     string
	baudRate int
	openedAt time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// Manager owns the serial handle and its frame reader. It is the single
// path for commands going out and frames coming in. Events are delivered on
// a buffered channel; when the consumer falls behind, events are dropped and
// counted rather than blocking the reader.
type Manager struct {
	opener     Opener
	opts       Options
	clock      Clock
	logger     *zap.Logger
	classifier *Classifier
	events     chan Event

	// mutex guards conn; the handle is only released under the write lock
	// and after the reader goroutine has exited.
	mutex sync.RWMutex
	conn  *connection
	state atomic.Int32

	writeMutex sync.Mutex

	bytesRead    atomic.Int64
	bytesWritten atomic.Int64
	commandsSent atomic.Int64
	dropped      atomic.Int64
	lastActivity atomic.Int64
}

// NewManager creates a disconnected manager
func NewManager(opener Opener, opts Options) *Manager {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.IndicatorHold <= 0 {
		opts.IndicatorHold = DefaultIndicatorHold
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = DefaultEventBuffer
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	m := &Manager{
		opener: opener,
		opts:   opts,
		clock:  opts.Clock,
		logger: opts.Logger.With(zap.String("component", "bridge")),
		events: make(chan Event, opts.EventBuffer),
	}
	m.classifier = NewClassifier(opts.IndicatorHold, opts.Clock, m.emit)
	return m
}

// Events returns the channel carrying every bridge event
func (m *Manager) Events() <-chan Event {
	return m.events
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	return State(m.state.Load())
}

// IsConnected reports whether a port is open
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// Open opens the port and starts the frame reader
func (m *Manager) Open(ctx context.Context, name string, baudRate int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !IsSupportedBaudRate(baudRate) {
		return &ConnectError{
			Port:     name,
			BaudRate: baudRate,
			Reason:   ConnectInvalidBaudRate,
			Err:      fmt.Errorf("baud rate must be one of %v", SupportedBaudRates),
		}
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.conn != nil {
		return ErrAlreadyConnected
	}

	m.setState(StateConnecting)
	m.logger.Info("Opening serial port",
		zap.String("port", name),
		zap.Int("baud_rate", baudRate),
	)

	port, err := m.opener.Open(name, baudRate)
	if err != nil {
		m.setState(StateDisconnected)
		connErr := &ConnectError{
			Port:     name,
			BaudRate: baudRate,
			Reason:   openFailureReason(err),
			Err:      err,
		}
		m.logger.Error("Failed to open serial port", zap.Error(connErr))
		return connErr
	}

	readerCtx, cancel := context.WithCancel(context.Background())
	conn := &connection{
		port:     port,
		name:     name,
		baudRate: baudRate,
		openedAt: m.clock.Now(),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	m.conn = conn
	m.setState(StateConnected)
	m.touch()

	reader := NewFrameReader(port, m.opts.PollInterval, m.handleFrame, m.logger)
	reader.onRead = func(n int) {
		m.bytesRead.Add(int64(n))
		m.touch()
	}
	go m.runReader(readerCtx, conn, reader)

	m.logger.Info("Serial port opened successfully",
		zap.String("port", name),
		zap.Int("baud_rate", baudRate),
	)
	ev := newEvent(EventConnectionOpened, conn.openedAt)
	ev.Conn = &ConnectionEvent{Port: name, BaudRate: baudRate}
	m.emit(ev)
	return nil
}

// Close stops the reader, waits for it to exit, then releases the port.
// Calling Close on a disconnected manager is a no-op.
func (m *Manager) Close() error {
	m.mutex.Lock()
	conn := m.conn
	if conn == nil {
		m.mutex.Unlock()
		return nil
	}
	err := m.teardown(conn)
	m.mutex.Unlock()

	ev := newEvent(EventConnectionClosed, m.clock.Now())
	ev.Conn = &ConnectionEvent{Port: conn.name, BaudRate: conn.baudRate}
	if err != nil {
		ev.Conn.Error = err.Error()
		m.logger.Error("Failed to close serial port", zap.Error(err))
	} else {
		m.logger.Info("Serial port closed", zap.String("port", conn.name))
	}
	m.emit(ev)

	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// Send encodes cmd for mode and writes it synchronously. A failed write is
// reported but does not change the connection state.
func (m *Manager) Send(cmd protocol.Command, mode protocol.TransportMode) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	label := "command"
	if cmd != nil {
		label = string(cmd.Type())
	}

	conn := m.conn
	if conn == nil {
		return &SendError{Command: label, Err: ErrNotConnected}
	}

	wire, err := protocol.Encode(cmd, mode)
	if err != nil {
		return err
	}

	m.writeMutex.Lock()
	n, err := conn.port.Write(wire)
	m.writeMutex.Unlock()

	if err != nil {
		m.logger.Error("Serial write failed",
			zap.Error(err),
			zap.String("command", label),
			zap.Int("bytes_to_write", len(wire)),
		)
		return &SendError{Command: label, Err: err}
	}
	if n != len(wire) {
		return &SendError{
			Command: label,
			Err:     fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(wire)),
		}
	}

	m.bytesWritten.Add(int64(n))
	m.commandsSent.Add(1)
	m.touch()

	description := protocol.DescribeSent(cmd, mode, wire)
	m.logger.Debug("Command sent",
		zap.String("command", label),
		zap.String("mode", mode.String()),
		zap.String("description", description),
		zap.Binary("data", wire),
	)

	ev := newEvent(EventCommandSent, m.clock.Now())
	ev.Command = &CommandSentEvent{
		Type:        label,
		Mode:        mode.String(),
		Description: description,
		Bytes:       n,
	}
	m.emit(ev)
	return nil
}

// Indicators returns the response indicator snapshot
func (m *Manager) Indicators() []IndicatorState {
	return m.classifier.Indicators()
}

// Status returns a snapshot of the connection and its counters
func (m *Manager) Status() Status {
	m.mutex.RLock()
	conn := m.conn
	m.mutex.RUnlock()

	status := Status{
		State:         m.State().String(),
		BytesRead:     m.bytesRead.Load(),
		BytesWritten:  m.bytesWritten.Load(),
		CommandsSent:  m.commandsSent.Load(),
		DroppedEvents: m.dropped.Load(),
	}
	if conn != nil {
		openedAt := conn.openedAt
		status.Port = conn.name
		status.BaudRate = conn.baudRate
		status.ConnectedAt = &openedAt
	}
	if ns := m.lastActivity.Load(); ns != 0 {
		last := time.Unix(0, ns)
		status.LastActivity = &last
	}
	return status
}

func (m *Manager) runReader(ctx context.Context, conn *connection, reader *FrameReader) {
	err := func() error {
		defer close(conn.done)
		return reader.Run(ctx)
	}()
	if err != nil {
		m.connectionLost(conn, err)
	}
}

// connectionLost runs the close sequence on behalf of a failed reader
func (m *Manager) connectionLost(conn *connection, cause error) {
	m.mutex.Lock()
	if m.conn != conn {
		// Close already released this connection
		m.mutex.Unlock()
		return
	}
	closeErr := m.teardown(conn)
	m.mutex.Unlock()

	m.logger.Warn("Serial connection lost",
		zap.String("port", conn.name),
		zap.Error(cause),
	)
	if closeErr != nil {
		m.logger.Debug("Close after connection loss failed", zap.Error(closeErr))
	}

	ev := newEvent(EventConnectionLost, m.clock.Now())
	ev.Conn = &ConnectionEvent{
		Port:     conn.name,
		BaudRate: conn.baudRate,
		Error:    cause.Error(),
	}
	m.emit(ev)
}

// teardown must be called with the write lock held
func (m *Manager) teardown(conn *connection) error {
	conn.cancel()
	<-conn.done

	err := conn.port.Close()
	m.conn = nil
	m.classifier.Reset()
	m.setState(StateDisconnected)
	return err
}

func (m *Manager) handleFrame(frame protocol.Frame) {
	switch frame.Kind {
	case protocol.FrameProtocolByte:
		resp := m.classifier.Observe(frame.Byte)
		m.logger.Debug("Response received",
			zap.Uint8("code", resp.Code),
			zap.String("name", resp.Name),
		)
	case protocol.FrameTextLine:
		if IsBannerLine(frame.Text) {
			m.logger.Debug("Banner line filtered", zap.String("line", frame.Text))
			return
		}
		ev := newEvent(EventTextLine, m.clock.Now())
		ev.Line = &TextLineEvent{Text: frame.Text}
		m.emit(ev)
	}
}

// emit never blocks; a full buffer drops the event
func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		m.dropped.Add(1)
		m.logger.Warn("Event buffer full, dropping event",
			zap.String("event_type", string(ev.Type)),
		)
	}
}

func (m *Manager) setState(s State) {
	m.state.Store(int32(s))
}

func (m *Manager) touch() {
	m.lastActivity.Store(m.clock.Now().UnixNano())
}

package bridge

import (
	"bytes"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errPortClosed = errors.New("port closed")

// mockPort hands out one queued chunk per Read and rejects any access after
// Close, recording it as a violation.
type mockPort struct {
	mutex      sync.Mutex
	incoming   [][]byte
	written    bytes.Buffer
	closed     bool
	reading    bool
	reads      int
	readErr    error
	writeErr   error
	shortWrite bool
	readDelay  time.Duration

	postCloseAccess int
	closedMidRead   bool
}

func newMockPort(chunks ...[]byte) *mockPort {
	return &mockPort{incoming: chunks}
}

func (p *mockPort) Read(buf []byte) (int, error) {
	p.mutex.Lock()
	if p.closed {
		p.postCloseAccess++
		p.mutex.Unlock()
		return 0, errPortClosed
	}
	p.reads++
	p.reading = true
	delay := p.readDelay
	p.mutex.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.reading = false
	if p.readErr != nil {
		return 0, p.readErr
	}
	if len(p.incoming) == 0 {
		return 0, nil
	}
	chunk := p.incoming[0]
	p.incoming = p.incoming[1:]
	return copy(buf, chunk), nil
}

func (p *mockPort) Write(data []byte) (int, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		p.postCloseAccess++
		return 0, errPortClosed
	}
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	if p.shortWrite {
		p.written.Write(data[:len(data)-1])
		return len(data) - 1, nil
	}
	p.written.Write(data)
	return len(data), nil
}

func (p *mockPort) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.reading {
		p.closedMidRead = true
	}
	p.closed = true
	return nil
}

func (p *mockPort) feed(chunks ...[]byte) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.incoming = append(p.incoming, chunks...)
}

func (p *mockPort) fail(err error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.readErr = err
}

func (p *mockPort) readCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.reads
}

func (p *mockPort) isClosed() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.closed
}

func (p *mockPort) writtenBytes() []byte {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]byte(nil), p.written.Bytes()...)
}

func (p *mockPort) violations() (int, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.postCloseAccess, p.closedMidRead
}

func openerFor(port *mockPort) Opener {
	return OpenerFunc(func(name string, baudRate int) (Port, error) {
		return port, nil
	})
}

// fakeClock fires timers only when advanced
type fakeClock struct {
	mutex  sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mutex.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mutex.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn()
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mutex.Lock()
	defer t.clock.mutex.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// waitEvent returns the next event of type want, skipping others
func waitEvent(t *testing.T, events <-chan Event, want EventType) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == want {
				return ev
			}
		case <-timeout:
			require.FailNowf(t, "timeout", "no %s event", want)
			return Event{}
		}
	}
}

// collect drains events until none arrive for the quiet period
func collect(events <-chan Event, quiet time.Duration) []Event {
	var out []Event
	for {
		select {
		case ev := <-events:
			out = append(out, ev)
		case <-time.After(quiet):
			return out
		}
	}
}

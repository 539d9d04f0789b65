// internal/bridge/classifier.go
package bridge

import (
	"sync"
	"time"

	"board-bridge/internal/protocol"
)

// DefaultIndicatorHold is how long an indicator stays lit after its response
const DefaultIndicatorHold = 1400 * time.Millisecond

// IndicatorState is a snapshot of one response indicator
type IndicatorState struct {
	Code        byte      `json:"code"`
	Name        string    `json:"name"`
	Active      bool      `json:"active"`
	ActiveUntil time.Time `json:"active_until,omitempty"`
}

type indicator struct {
	active      bool
	activeUntil time.Time
	gen         uint64
	timer       Timer
}

// Classifier names protocol bytes and keeps one transient indicator per
// known response code. Re-triggering an active indicator restarts its hold
// window; each window that lapses clears the indicator exactly once.
type Classifier struct {
	hold  time.Duration
	clock Clock
	emit  func(Event)

	mutex      sync.Mutex
	indicators map[byte]*indicator
}

// NewClassifier creates a classifier that reports through emit. emit is
// called with the classifier lock held and must not call back into it.
func NewClassifier(hold time.Duration, clock Clock, emit func(Event)) *Classifier {
	if hold <= 0 {
		hold = DefaultIndicatorHold
	}
	if clock == nil {
		clock = RealClock()
	}
	if emit == nil {
		emit = func(Event) {}
	}

	c := &Classifier{
		hold:       hold,
		clock:      clock,
		emit:       emit,
		indicators: make(map[byte]*indicator, len(protocol.KnownResponses)),
	}
	for _, code := range protocol.KnownResponses {
		c.indicators[code] = &indicator{}
	}
	return c
}

// Observe handles one protocol byte: it emits the response and re-arms the
// matching indicator, if any.
func (c *Classifier) Observe(code byte) ResponseEvent {
	now := c.clock.Now()
	resp := ResponseEvent{
		Code:       code,
		Name:       protocol.ResponseName(code),
		ObservedAt: now,
	}

	// emit never blocks; events leave in the same order the state changes
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ev := newEvent(EventResponse, now)
	ev.Response = &resp
	c.emit(ev)

	ind, ok := c.indicators[code]
	if !ok {
		return resp
	}
	if ind.timer != nil {
		ind.timer.Stop()
	}
	ind.gen++
	gen := ind.gen
	ind.active = true
	ind.activeUntil = now.Add(c.hold)
	ind.timer = c.clock.AfterFunc(c.hold, func() {
		c.expire(code, gen)
	})

	return resp
}

func (c *Classifier) expire(code byte, gen uint64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ind := c.indicators[code]
	if ind == nil || ind.gen != gen || !ind.active {
		return
	}
	ind.active = false
	ind.timer = nil

	ev := newEvent(EventIndicatorCleared, c.clock.Now())
	ev.Indicator = &IndicatorEvent{Code: code, Name: protocol.ResponseName(code)}
	c.emit(ev)
}

// IsActive reports whether the indicator for code is lit
func (c *Classifier) IsActive(code byte) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	ind, ok := c.indicators[code]
	return ok && ind.active
}

// Indicators returns every indicator in display order
func (c *Classifier) Indicators() []IndicatorState {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	states := make([]IndicatorState, 0, len(protocol.KnownResponses))
	for _, code := range protocol.KnownResponses {
		ind := c.indicators[code]
		state := IndicatorState{
			Code:   code,
			Name:   protocol.ResponseName(code),
			Active: ind.active,
		}
		if ind.active {
			state.ActiveUntil = ind.activeUntil
		}
		states = append(states, state)
	}
	return states
}

// Reset stops pending clears and turns every indicator off without events
func (c *Classifier) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, ind := range c.indicators {
		if ind.timer != nil {
			ind.timer.Stop()
			ind.timer = nil
		}
		ind.gen++
		ind.active = false
		ind.activeUntil = time.Time{}
	}
}

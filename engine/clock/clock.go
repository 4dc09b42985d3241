package clock

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

var (
	// ErrRunning is returned by Start when the clock is already running.
	ErrRunning = errors.New("clock already running")
	// ErrNilHandler is returned by Start when the handler is nil.
	ErrNilHandler = errors.New("nil clock handler")
)

// Default rates in frames per second.
const (
	DefaultUpdateRate     = 30
	DefaultPresentRate    = 60
	DefaultMinPresentRate = 10
)

// Handler receives the ticks of a running Clock.
type Handler interface {
	// Update runs on ticks where at least one update interval has elapsed since the previous update.
	// The first tick after Start always updates, with a zero delta.
	//
	// Parameters:
	//   - now: the display timestamp in seconds
	//   - delta: seconds since the previous update
	Update(now, delta float64)

	// Render runs on every tick, after Update when both run.
	//
	// Parameters:
	//   - now: the display timestamp in seconds
	Render(now float64)
}

// Clock decouples update ticks from render ticks on top of a DisplayLink.
type Clock interface {
	// Start registers the clock on its display link and begins delivering ticks to h.
	//
	// Parameters:
	//   - h: the handler receiving ticks
	//
	// Returns:
	//   - error: ErrRunning, ErrNilHandler, or the link's registration error
	Start(h Handler) error

	// Stop unregisters the clock and drops the handler. Safe to call when stopped, including
	// from inside a tick, where the current tick skips its Render.
	// A tick already running on another goroutine finishes the handler call it is in; hosts
	// that stop from outside the link's ticks serialize with them, e.g. through TickerLink.Do.
	Stop()

	// Running reports whether the clock is registered on its link.
	//
	// Returns:
	//   - bool: true between a successful Start and Stop
	Running() bool

	// UpdateRate returns the update rate in updates per second.
	//
	// Returns:
	//   - float64: the configured update rate
	UpdateRate() float64

	// RateRange returns the presentation rate range registered on the link.
	//
	// Returns:
	//   - RateRange: the configured presentation rate range
	RateRange() RateRange
}

type clock struct {
	link       DisplayLink
	rate       RateRange
	updateRate float64

	// mu guards the fields below. It is never held across a handler call.
	mu      sync.Mutex
	handle  Handle
	handler Handler
	// gen changes on every Start and Stop so a tick can tell its handler was replaced.
	gen        uint64
	lastUpdate float64
	updated    bool
}

var _ Clock = &clock{}

// NewClock creates a stopped Clock on link. Defaults to 30 updates per second and a
// presentation range of 10 to 60 frames per second, preferring 60.
//
// Parameters:
//   - link: the display link the clock registers on
//   - options: functional options to configure rates
//
// Returns:
//   - Clock: the configured clock
//   - error: error if the configured rates are invalid
func NewClock(link DisplayLink, options ...ClockBuilderOption) (Clock, error) {
	c := &clock{
		link:       link,
		updateRate: DefaultUpdateRate,
		rate: RateRange{
			Min:       DefaultMinPresentRate,
			Max:       DefaultPresentRate,
			Preferred: DefaultPresentRate,
		},
	}
	for _, opt := range options {
		opt(c)
	}
	if link == nil {
		return nil, errors.New("nil display link")
	}
	if c.updateRate <= 0 {
		return nil, fmt.Errorf("update rate must be positive, got %g", c.updateRate)
	}
	if err := c.rate.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *clock) Start(h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	c.mu.Lock()
	if c.handler != nil {
		c.mu.Unlock()
		return ErrRunning
	}
	c.handler = h
	c.updated = false
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	handle, err := c.link.Register(c.rate, c.tick)

	c.mu.Lock()
	if err != nil {
		if c.gen == gen {
			c.handler = nil
			c.gen++
		}
		c.mu.Unlock()
		return fmt.Errorf("failed to register clock: %w", err)
	}
	if c.gen != gen {
		// stopped while registering
		c.mu.Unlock()
		c.link.Unregister(handle)
		return nil
	}
	c.handle = handle
	c.mu.Unlock()

	common.Logger().Info("clock started", "update_rate", c.updateRate, "present_rate", c.rate.Preferred)
	return nil
}

func (c *clock) Stop() {
	c.mu.Lock()
	if c.handler == nil {
		c.mu.Unlock()
		return
	}
	handle := c.handle
	c.handle = 0
	c.handler = nil
	c.gen++
	c.mu.Unlock()

	c.link.Unregister(handle)
	common.Logger().Info("clock stopped")
}

func (c *clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler != nil
}

func (c *clock) UpdateRate() float64 {
	return c.updateRate
}

func (c *clock) RateRange() RateRange {
	return c.rate
}

// current reports whether the handler of generation gen is still the running one.
func (c *clock) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen && c.handler != nil
}

func (c *clock) tick(now float64) {
	c.mu.Lock()
	h, gen := c.handler, c.gen
	if h == nil {
		c.mu.Unlock()
		return
	}
	update := !c.updated || now-c.lastUpdate >= 1/c.updateRate-tolerance
	var delta float64
	if update {
		if c.updated {
			delta = now - c.lastUpdate
		}
		c.updated = true
		c.lastUpdate = now
	}
	c.mu.Unlock()

	if update {
		h.Update(now, delta)
		if !c.current(gen) {
			return
		}
	}
	h.Render(now)
}

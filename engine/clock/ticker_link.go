package clock

import (
	"sync"
	"time"
)

type tickerEntry struct {
	tick   TickFunc
	active bool
	stop   chan struct{}
}

// TickerLink is a DisplayLink for headless hosts. Each registration runs on a time.Ticker at
// its RateRange.Preferred rate. Callbacks of all registrations are serialized, so they observe
// a single logical thread. Work the host does on that thread from its own goroutine, such as
// stopping a clock or releasing a view, goes through Do.
type TickerLink struct {
	start time.Time

	mu      sync.Mutex
	next    Handle
	entries map[Handle]*tickerEntry

	fireMu sync.Mutex
	wg     sync.WaitGroup
}

var _ DisplayLink = &TickerLink{}

// NewTickerLink creates a TickerLink whose timestamps count seconds from its creation.
//
// Returns:
//   - *TickerLink: the link, ready for registrations
func NewTickerLink() *TickerLink {
	return &TickerLink{start: time.Now(), entries: make(map[Handle]*tickerEntry)}
}

func (l *TickerLink) Register(rate RateRange, tick TickFunc) (Handle, error) {
	if tick == nil {
		return 0, ErrNilTick
	}
	if err := rate.Validate(); err != nil {
		return 0, err
	}

	l.mu.Lock()
	l.next++
	h := l.next
	e := &tickerEntry{tick: tick, active: true, stop: make(chan struct{})}
	l.entries[h] = e
	l.mu.Unlock()

	period := time.Duration(float64(time.Second) / rate.Preferred)
	l.wg.Add(1)
	go l.run(e, period)
	return h, nil
}

func (l *TickerLink) run(e *tickerEntry, period time.Duration) {
	defer l.wg.Done()
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case t := <-ticker.C:
			l.fireMu.Lock()
			l.mu.Lock()
			active := e.active
			l.mu.Unlock()
			if active {
				e.tick(t.Sub(l.start).Seconds())
			}
			l.fireMu.Unlock()
		}
	}
}

// Do runs fn serialized with the link's callbacks: no callback is running while fn runs.
// Once a Do that unregisters a callback returns, that callback never runs again.
// fn must not call Do or Close, and Do must not be called from inside a callback.
//
// Parameters:
//   - fn: the work to run on the link's logical thread
func (l *TickerLink) Do(fn func()) {
	l.fireMu.Lock()
	defer l.fireMu.Unlock()
	fn()
}

// Unregister stops the callback of h. Called from inside a callback, or through Do, no
// further call starts; called from another goroutine, a call already running may finish.
func (l *TickerLink) Unregister(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[h]
	if !ok {
		return
	}
	e.active = false
	close(e.stop)
	delete(l.entries, h)
}

// Close unregisters every callback and waits for the ticker goroutines to exit.
// Close must not be called from inside a tick.
func (l *TickerLink) Close() {
	l.mu.Lock()
	for h, e := range l.entries {
		e.active = false
		close(e.stop)
		delete(l.entries, h)
	}
	l.mu.Unlock()
	l.wg.Wait()
}

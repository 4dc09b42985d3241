package clock

import "sort"

// tolerance absorbs timestamp jitter when comparing elapsed time against a frame interval.
const tolerance = 0.001

type loopEntry struct {
	handle   Handle
	interval float64
	tick     TickFunc
	last     float64
	fired    bool
	active   bool
}

// LoopLink is a DisplayLink fired from a host loop, such as a window message loop.
// Each registration is throttled to its RateRange.Max. LoopLink is not safe for concurrent use.
type LoopLink struct {
	next    Handle
	entries map[Handle]*loopEntry
}

var _ DisplayLink = &LoopLink{}

// NewLoopLink creates a LoopLink with no registrations.
//
// Returns:
//   - *LoopLink: the link, fired by calling Fire
func NewLoopLink() *LoopLink {
	return &LoopLink{entries: make(map[Handle]*loopEntry)}
}

func (l *LoopLink) Register(rate RateRange, tick TickFunc) (Handle, error) {
	if tick == nil {
		return 0, ErrNilTick
	}
	if err := rate.Validate(); err != nil {
		return 0, err
	}
	l.next++
	e := &loopEntry{handle: l.next, tick: tick, active: true}
	if rate.Max > 0 {
		e.interval = 1 / rate.Max
	}
	l.entries[e.handle] = e
	return e.handle, nil
}

func (l *LoopLink) Unregister(h Handle) {
	if e, ok := l.entries[h]; ok {
		e.active = false
		delete(l.entries, h)
	}
}

// Len returns the number of active registrations.
func (l *LoopLink) Len() int {
	return len(l.entries)
}

// Fire runs every registration whose throttle interval has elapsed, in registration order.
// Callbacks may register or unregister during Fire; new registrations first fire on the next call.
//
// Parameters:
//   - now: the host timestamp in seconds, monotonically non-decreasing
//
// Returns:
//   - int: the number of callbacks fired
func (l *LoopLink) Fire(now float64) int {
	due := make([]*loopEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if !e.fired || now-e.last >= e.interval-tolerance {
			due = append(due, e)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].handle < due[j].handle })

	fired := 0
	for _, e := range due {
		if !e.active {
			continue
		}
		e.fired = true
		e.last = now
		e.tick(now)
		fired++
	}
	return fired
}

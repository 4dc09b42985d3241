// Package clock drives update and render ticks from a display-synchronized callback source.
package clock

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRateRange is returned by Register when a RateRange is not usable.
	ErrInvalidRateRange = errors.New("invalid rate range")
	// ErrNilTick is returned by Register when the tick callback is nil.
	ErrNilTick = errors.New("nil tick func")
)

// RateRange is the range of frame rates, in frames per second, a display link callback asks for.
// A zero Max means the callback is not throttled.
type RateRange struct {
	Min       float64
	Max       float64
	Preferred float64
}

// Validate reports whether the range is ordered as Min <= Preferred <= Max, with Max zero allowed.
//
// Returns:
//   - error: an error wrapping ErrInvalidRateRange, or nil
func (r RateRange) Validate() error {
	switch {
	case r.Min < 0 || r.Max < 0 || r.Preferred <= 0:
		return fmt.Errorf("%w: %+v must be positive", ErrInvalidRateRange, r)
	case r.Preferred < r.Min:
		return fmt.Errorf("%w: preferred %g below min %g", ErrInvalidRateRange, r.Preferred, r.Min)
	case r.Max > 0 && r.Preferred > r.Max:
		return fmt.Errorf("%w: preferred %g above max %g", ErrInvalidRateRange, r.Preferred, r.Max)
	}
	return nil
}

// TickFunc receives the display timestamp in seconds.
type TickFunc func(now float64)

// Handle identifies one registration on a DisplayLink. The zero Handle is never issued.
type Handle uint64

// DisplayLink is a source of display-cadence callbacks.
type DisplayLink interface {
	// Register adds a callback fired once per display frame at a rate inside rate.
	//
	// Parameters:
	//   - rate: the requested frame rate range
	//   - tick: the callback to fire
	//
	// Returns:
	//   - Handle: the registration handle used to unregister
	//   - error: ErrInvalidRateRange or ErrNilTick if the registration is rejected
	Register(rate RateRange, tick TickFunc) (Handle, error)

	// Unregister removes a registration. No tick fires for h after Unregister returns,
	// except one already in progress. Unknown handles are ignored.
	//
	// Parameters:
	//   - h: the handle returned by Register
	Unregister(h Handle)
}

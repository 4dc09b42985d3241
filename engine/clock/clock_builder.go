package clock

// ClockBuilderOption is a functional option for configuring a Clock.
type ClockBuilderOption func(c *clock)

// WithUpdateRate sets how many update ticks per second the clock allows.
//
// Parameters:
//   - hz: updates per second, must be positive
//
// Returns:
//   - ClockBuilderOption: option function to apply
func WithUpdateRate(hz float64) ClockBuilderOption {
	return func(c *clock) {
		c.updateRate = hz
	}
}

// WithRateRange sets the presentation rate range registered on the display link.
//
// Parameters:
//   - rate: the presentation rate range
//
// Returns:
//   - ClockBuilderOption: option function to apply
func WithRateRange(rate RateRange) ClockBuilderOption {
	return func(c *clock) {
		c.rate = rate
	}
}

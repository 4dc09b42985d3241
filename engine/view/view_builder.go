package view

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/clock"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
)

// ViewBuilderOption is a functional option for configuring a View.
// Use the With* functions to create options that are applied directly to the view instance.
type ViewBuilderOption func(*view)

// WithUpdateRate sets how many content updates run per second.
//
// Parameters:
//   - hz: updates per second (default 30)
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithUpdateRate(hz float64) ViewBuilderOption {
	return func(v *view) {
		v.updateRate = hz
	}
}

// WithPresentRateCeiling sets the highest presentation rate. The preferred rate follows it
// and the minimum is lowered to it when needed.
//
// Parameters:
//   - hz: maximum frames per second (default 60)
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithPresentRateCeiling(hz float64) ViewBuilderOption {
	return func(v *view) {
		v.presentRate.Max = hz
		v.presentRate.Preferred = hz
		v.presentRate.Min = min(v.presentRate.Min, hz)
	}
}

// WithRateRange sets the full presentation rate range registered on the display link.
//
// Parameters:
//   - rate: the presentation rate range
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithRateRange(rate clock.RateRange) ViewBuilderOption {
	return func(v *view) {
		v.presentRate = rate
	}
}

// WithConfig applies the update and presentation rates of a loaded config.
//
// Parameters:
//   - cfg: the loaded config
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithConfig(cfg config.Config) ViewBuilderOption {
	return func(v *view) {
		v.updateRate = cfg.UpdateRate
		v.presentRate = cfg.RateRange()
	}
}

// WithUpdateLoop registers a function run at the start of every update tick, before the
// content func. It receives the tick timestamp, which animations started from it should use,
// and the seconds since the previous update.
//
// Parameters:
//   - loop: the update function
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithUpdateLoop(loop func(now, deltaTime float64)) ViewBuilderOption {
	return func(v *view) {
		v.updateLoop = loop
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, logs profiler statistics every interval
//   - options: options for the profiler
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithProfiling(enabled bool, options ...profiler.ProfilerBuilderOption) ViewBuilderOption {
	return func(v *view) {
		v.profilingEnabled = enabled
		v.profiler = profiler.NewProfiler(options...)
	}
}

// WithSceneOptions passes options to the view's scene.
//
// Parameters:
//   - options: the scene options
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithSceneOptions(options ...scene.SceneBuilderOption) ViewBuilderOption {
	return func(v *view) {
		v.sceneOptions = append(v.sceneOptions, options...)
	}
}

// WithRendererOptions passes options to the view's renderer.
//
// Parameters:
//   - options: the renderer options
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) ViewBuilderOption {
	return func(v *view) {
		v.rendererOptions = append(v.rendererOptions, options...)
	}
}

// Package view drives a scene on a surface: it owns the scene, renderer and clock of one surface
// and runs content updates and frames from clock ticks.
package view

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/clock"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
)

// ContentFunc returns the root node of the current frame. It is called once per update tick.
type ContentFunc func() scene.Node

// View renders the content of a ContentFunc onto a device surface.
// It implements clock.Handler: Update rebuilds the scene, Render interpolates and draws it.
type View interface {
	clock.Handler

	// Start begins delivering clock ticks to the view.
	//
	// Returns:
	//   - error: error if the clock fails to register
	Start() error

	// Stop halts clock ticks. The scene stays intact and Start resumes it.
	Stop()

	// Running reports whether the view receives clock ticks.
	//
	// Returns:
	//   - bool: true between Start and Stop
	Running() bool

	// Scene returns the scene the view drives.
	//
	// Returns:
	//   - scene.Scene: the view's scene
	Scene() scene.Scene

	// SetProfiling enables or disables periodic profiler output.
	//
	// Parameters:
	//   - enabled: true to log profiler statistics
	SetProfiling(enabled bool)

	// Profiling reports whether profiler output is enabled.
	//
	// Returns:
	//   - bool: true if profiler statistics are logged
	Profiling() bool

	// Err returns the error of the most recent failed update or frame.
	//
	// Returns:
	//   - error: the last update or frame error, nil if none failed
	Err() error

	// Release stops the clock and releases the renderer and scene. The device is not released.
	// Like every View method it belongs to the display link's thread: with a clock.TickerLink,
	// a host goroutine calls it through TickerLink.Do.
	Release()
}

// view implements the View interface.
type view struct {
	device  gpu.Device
	content ContentFunc

	clock    clock.Clock
	scene    scene.Scene
	renderer renderer.Renderer

	updateRate  float64
	presentRate clock.RateRange
	updateLoop  func(now, deltaTime float64)

	sceneOptions    []scene.SceneBuilderOption
	rendererOptions []renderer.RendererBuilderOption

	profiler         *profiler.Profiler
	profilingEnabled bool

	err      error
	released bool
}

var _ View = &view{}

// NewView creates a stopped View drawing content onto device, ticked by link.
// Updates default to 30 per second and frames to at most 60 per second.
//
// Parameters:
//   - device: the device whose surface the view draws into
//   - link: the display link driving the view's clock
//   - content: the function producing each update's root node
//   - options: functional options for rates, update loop, scene and renderer
//
// Returns:
//   - View: the configured view, call Start to begin rendering
//   - error: error if a rate is invalid or the renderer cannot allocate its uniforms
func NewView(device gpu.Device, link clock.DisplayLink, content ContentFunc, options ...ViewBuilderOption) (View, error) {
	if device == nil {
		return nil, errors.New("nil device")
	}
	if content == nil {
		return nil, errors.New("nil content func")
	}
	v := &view{
		device:     device,
		content:    content,
		updateRate: clock.DefaultUpdateRate,
		presentRate: clock.RateRange{
			Min:       clock.DefaultMinPresentRate,
			Max:       clock.DefaultPresentRate,
			Preferred: clock.DefaultPresentRate,
		},
		profiler: profiler.NewProfiler(),
	}
	for _, opt := range options {
		opt(v)
	}

	c, err := clock.NewClock(link, clock.WithUpdateRate(v.updateRate), clock.WithRateRange(v.presentRate))
	if err != nil {
		return nil, fmt.Errorf("failed to create clock: %w", err)
	}
	r, err := renderer.NewRenderer(device, v.rendererOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.clock = c
	v.renderer = r
	v.scene = scene.NewScene(device, v.sceneOptions...)
	return v, nil
}

func (v *view) Start() error {
	if v.released {
		return errors.New("view released")
	}
	return v.clock.Start(v)
}

func (v *view) Stop() {
	v.clock.Stop()
}

func (v *view) Running() bool {
	return v.clock.Running()
}

func (v *view) Scene() scene.Scene {
	return v.scene
}

func (v *view) SetProfiling(enabled bool) {
	v.profilingEnabled = enabled
}

func (v *view) Profiling() bool {
	return v.profilingEnabled
}

func (v *view) Err() error {
	return v.err
}

// Update runs the update loop, then rebuilds the scene from the content func.
// A failed rebuild is logged and the previous frame's content stays on screen.
func (v *view) Update(now, delta float64) {
	if v.updateLoop != nil {
		v.updateLoop(now, delta)
	}

	node := v.content()
	if err := v.scene.SetContent(node, v.aspect()); err != nil {
		v.err = err
		common.Logger().Error("content update failed", "time", now, "error", err)
		return
	}
	v.profiler.Update()
}

// Render interpolates the scene at now and draws it. A failed frame is logged and skipped.
func (v *view) Render(now float64) {
	v.scene.Update(now)

	err := v.renderer.Render(v.scene.Pairs())
	switch {
	case err == nil:
		v.profiler.Render()
	case errors.Is(err, gpu.ErrNoDrawable):
		v.profiler.Skip()
		common.Logger().Debug("frame skipped, no drawable", "time", now)
	default:
		v.err = err
		v.profiler.Skip()
		common.Logger().Warn("frame skipped", "time", now, "error", err)
	}

	if v.profilingEnabled {
		v.profiler.Tick()
	}
}

func (v *view) aspect() float32 {
	w, h := v.device.SurfaceSize()
	if w == 0 || h == 0 {
		return 1
	}
	return float32(w) / float32(h)
}

func (v *view) Release() {
	if v.released {
		return
	}
	v.released = true
	v.clock.Stop()
	v.renderer.Release()
	v.scene.Release()
	common.Logger().Info("view released")
}

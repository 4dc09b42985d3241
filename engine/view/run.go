package view

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/clock"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/window"
)

// Run opens a window described by cfg, renders content into it and blocks until the window
// is closed. P pauses and resumes the clock, Space toggles the profiler and Escape closes the window.
// Must be called from the main goroutine.
//
// Parameters:
//   - cfg: the window, rate, vsync and logging settings
//   - content: the function producing each update's root node
//   - options: further view options, applied after cfg
//
// Returns:
//   - error: error if the window, device or view cannot be created
func Run(cfg config.Config, content ContentFunc, options ...ViewBuilderOption) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if l := cfg.Logger(os.Stderr); l != nil {
		common.SetLogger(l)
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	width, height := win.FramebufferSize()
	device, err := gpu.NewWGPUDevice(win.SurfaceDescriptor(), width, height, gpu.WithVSync(cfg.VSync))
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	defer device.Release()

	link := clock.NewLoopLink()
	v, err := NewView(device, link, content, append([]ViewBuilderOption{WithConfig(cfg)}, options...)...)
	if err != nil {
		return err
	}
	defer v.Release()

	win.OnResize(func(width, height int) {
		if err := device.ConfigureSurface(width, height); err != nil {
			common.Logger().Error("surface reconfigure failed", "width", width, "height", height, "error", err)
		}
	})
	win.OnKey(func(keyCode uint32) {
		switch keyCode {
		case common.KeyP:
			if v.Running() {
				v.Stop()
			} else if err := v.Start(); err != nil {
				common.Logger().Error("failed to resume view", "error", err)
			}
		case common.KeySpace:
			v.SetProfiling(!v.Profiling())
		}
	})

	if err := v.Start(); err != nil {
		return err
	}
	win.Run(link)
	return nil
}

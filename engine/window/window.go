// Package window opens the desktop window a view presents into and pumps its events.
// The window owns the host loop: every pass over the event queue fires a clock.LoopLink
// with the platform time, which is what paces a view's updates and frames.
package window

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/clock"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is a platform window with a WebGPU-capable surface.
type Window interface {
	// OnResize registers the framebuffer resize handler. The view reconfigures its surface here.
	//
	// Parameters:
	//   - fn: receives the new framebuffer size in pixels; a minimized window reports 0x0
	OnResize(fn func(width, height int))

	// OnKey registers the key press handler. Escape is handled by the window itself and closes it.
	//
	// Parameters:
	//   - fn: receives the pressed key, see common.Key*
	OnKey(fn func(keyCode uint32))

	// SurfaceDescriptor describes the native surface for gpu.NewWGPUDevice.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, nil once the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// FramebufferSize reports the drawable size in pixels, which can differ from the requested
	// window size on high-DPI displays.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	FramebufferSize() (int, int)

	// Open reports whether the window is still shown.
	Open() bool

	// Run pumps events and fires link after each pass until the window closes.
	// Must be called from the goroutine that created the window.
	//
	// Parameters:
	//   - link: the display link to fire, nil to only pump events
	Run(link *clock.LoopLink)

	// Close destroys the window. Closing twice is a no-op.
	Close()
}

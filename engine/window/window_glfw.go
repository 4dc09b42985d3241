package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/clock"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type glfwWindow struct {
	title      string
	width      int
	height     int
	minWidth   int
	minHeight  int
	handle     *glfw.Window
	resizeFunc func(width, height int)
	keyFunc    func(keyCode uint32)
}

var _ Window = &glfwWindow{}

// NewWindow initializes GLFW and shows a window without a client API, ready for a WebGPU surface.
// The calling goroutine is locked to its OS thread and must run the window.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the shown window
//   - error: error if the size is invalid or GLFW fails
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &glfwWindow{
		title:     "oxy-scene",
		width:     1280,
		height:    720,
		minWidth:  200,
		minHeight: 150,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.width <= 0 || w.height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", w.width, w.height)
	}

	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	handle, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	handle.SetSizeLimits(w.minWidth, w.minHeight, glfw.DontCare, glfw.DontCare)
	handle.SetKeyCallback(w.key)
	handle.SetFramebufferSizeCallback(w.framebufferResized)
	w.handle = handle
	w.width, w.height = handle.GetFramebufferSize()

	common.Logger().Info("window created", "title", w.title, "width", w.width, "height", w.height)
	return w, nil
}

func (w *glfwWindow) key(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	if key == glfw.KeyEscape {
		w.handle.SetShouldClose(true)
		return
	}
	if w.keyFunc != nil {
		w.keyFunc(uint32(key))
	}
}

func (w *glfwWindow) framebufferResized(_ *glfw.Window, width, height int) {
	w.width, w.height = width, height
	if w.resizeFunc != nil {
		w.resizeFunc(width, height)
	}
}

func (w *glfwWindow) OnResize(fn func(width, height int)) {
	w.resizeFunc = fn
}

func (w *glfwWindow) OnKey(fn func(keyCode uint32)) {
	w.keyFunc = fn
}

func (w *glfwWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.handle == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(w.handle)
}

func (w *glfwWindow) FramebufferSize() (int, int) {
	return w.width, w.height
}

func (w *glfwWindow) Open() bool {
	return w.handle != nil && !w.handle.ShouldClose()
}

// Run polls rather than waits so the link keeps firing while no input arrives.
func (w *glfwWindow) Run(link *clock.LoopLink) {
	for w.Open() {
		glfw.PollEvents()
		if link != nil && w.Open() {
			link.Fire(glfw.GetTime())
		}
		runtime.Gosched()
	}
}

func (w *glfwWindow) Close() {
	if w.handle == nil {
		return
	}
	w.handle.Destroy()
	w.handle = nil
	glfw.Terminate()
	common.Logger().Info("window closed", "title", w.title)
}

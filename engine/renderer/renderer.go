// Package renderer encodes one frame from the scene's command/storage pairs: a clear pass,
// then one pass per drawing command in list order, then present.
package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/command"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
)

// FrameStage names the step of a frame that failed.
type FrameStage string

const (
	StageDrawable      FrameStage = "drawable"
	StageCommandBuffer FrameStage = "command buffer"
	StageDepth         FrameStage = "depth texture"
	StageUniforms      FrameStage = "uniforms"
	StageClear         FrameStage = "clear pass"
	StagePass          FrameStage = "command pass"
	StageCommit        FrameStage = "commit"
)

// FrameError reports an abandoned frame. Nothing of the frame was presented.
type FrameError struct {
	Stage FrameStage
	// CommandID is the command being encoded when the frame failed, if any.
	CommandID string
	Err       error
}

func (e *FrameError) Error() string {
	if e.CommandID == "" {
		return fmt.Sprintf("renderer: frame abandoned at %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("renderer: frame abandoned at %s for command %q: %v", e.Stage, e.CommandID, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Renderer draws frames on one surface.
type Renderer interface {
	// Render encodes and presents one frame. Pairs whose command needs no render only
	// contribute the camera and lights. Draw order is pair order.
	//
	// Parameters:
	//   - pairs: the current frame in draw order
	//
	// Returns:
	//   - error: gpu.ErrNoDrawable when the frame was skipped, *FrameError when it was abandoned
	Render(pairs []scene.Pair) error

	// Release frees the frame uniforms and depth texture.
	Release()
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	device     gpu.Device
	clearColor common.Vec4

	viewProj gpu.Buffer
	globals  gpu.Buffer
	lights   gpu.Buffer
	depth    gpu.Texture

	droppedLights int
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer and its frame uniform buffers on device.
//
// Parameters:
//   - device: the surface device
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: *gpu.DeviceError if a uniform buffer could not be created
func NewRenderer(device gpu.Device, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		device:     device,
		clearColor: common.Vec4{0, 0, 0, 1},
	}
	for _, opt := range options {
		opt(r)
	}

	var (
		vp      gpu.ViewProjection
		globals gpu.FragmentGlobals
		lights  gpu.LightArray
	)
	buffers := []struct {
		dst   *gpu.Buffer
		label string
		size  int
	}{
		{&r.viewProj, "view projection", vp.Size()},
		{&r.globals, "fragment globals", globals.Size()},
		{&r.lights, "lights", lights.Size()},
	}
	for _, b := range buffers {
		buf, err := device.CreateBuffer(gpu.BufferDescriptor{Label: b.label, Usage: gpu.BufferUsageUniform, Size: uint64(b.size)})
		if err != nil {
			r.Release()
			return nil, err
		}
		*b.dst = buf
	}
	return r, nil
}

func (r *renderer) Render(pairs []scene.Pair) error {
	drawable, err := r.device.NextDrawable()
	if err != nil {
		if errors.Is(err, gpu.ErrNoDrawable) {
			return err
		}
		return &FrameError{Stage: StageDrawable, Err: err}
	}

	cb, err := r.device.CreateCommandBuffer()
	if err != nil {
		drawable.Release()
		return &FrameError{Stage: StageCommandBuffer, Err: err}
	}
	abandon := func(stage FrameStage, id string, err error) error {
		cb.Discard()
		drawable.Release()
		return &FrameError{Stage: stage, CommandID: id, Err: err}
	}

	depth, err := r.depthTexture(drawable.Width(), drawable.Height())
	if err != nil {
		return abandon(StageDepth, "", err)
	}
	if err := r.writeUniforms(pairs, drawable); err != nil {
		return abandon(StageUniforms, "", err)
	}

	clear, err := cb.BeginPass(gpu.PassDescriptor{
		Label:      "clear",
		Target:     drawable,
		Depth:      depth,
		ColorLoad:  gpu.LoadActionClear,
		DepthLoad:  gpu.LoadActionClear,
		ClearColor: r.clearColor,
		ClearDepth: 1,
	})
	if err != nil {
		return abandon(StageClear, "", err)
	}
	if err := clear.End(); err != nil {
		return abandon(StageClear, "", err)
	}

	for _, p := range pairs {
		if !p.Command.NeedsRender() {
			continue
		}
		id := p.Command.Info().ID
		enc, err := cb.BeginPass(gpu.PassDescriptor{
			Label:     id,
			Target:    drawable,
			Depth:     depth,
			ColorLoad: gpu.LoadActionLoad,
			DepthLoad: gpu.LoadActionLoad,
		})
		if err != nil {
			return abandon(StagePass, id, err)
		}
		enc.SetUniform(gpu.SlotViewProjection, r.viewProj)
		enc.SetUniform(gpu.SlotGlobals, r.globals)
		enc.SetUniform(gpu.SlotLights, r.lights)
		if err := p.Storage.Render(enc); err != nil {
			enc.End()
			return abandon(StagePass, id, err)
		}
		if err := enc.End(); err != nil {
			return abandon(StagePass, id, err)
		}
	}

	cb.Present(drawable)
	if err := cb.Commit(); err != nil {
		drawable.Release()
		return &FrameError{Stage: StageCommit, Err: err}
	}
	return nil
}

// depthTexture returns the depth attachment for the drawable size, recreating it when the size changed.
func (r *renderer) depthTexture(width, height uint32) (gpu.Texture, error) {
	if r.depth != nil && r.depth.Width() == width && r.depth.Height() == height {
		return r.depth, nil
	}
	depth, err := r.device.CreateDepthTexture(width, height)
	if err != nil {
		return nil, err
	}
	if r.depth != nil {
		r.depth.Release()
	}
	r.depth = depth
	common.Logger().Debug("depth texture resized", "width", width, "height", height)
	return depth, nil
}

// writeUniforms uploads the first camera (or the identity) and every light, up to gpu.MaxLights.
func (r *renderer) writeUniforms(pairs []scene.Pair, drawable gpu.Drawable) error {
	vp := gpu.ViewProjection{ViewProj: common.Mat4Identity(), SkyViewProj: common.Mat4Identity()}
	var (
		globals gpu.FragmentGlobals
		lights  gpu.LightArray
	)
	aspect := float32(0)
	if drawable.Height() > 0 {
		aspect = float32(drawable.Width()) / float32(drawable.Height())
	}

	cameraFound, count, dropped := false, 0, 0
	for _, p := range pairs {
		switch st := p.Storage.(type) {
		case command.CameraState:
			if cameraFound {
				continue
			}
			var pos common.Vec3
			vp, pos = st.Camera(aspect)
			globals.CameraPosition = pos.Vec4(1)
			cameraFound = true
		case command.LightState:
			if count == gpu.MaxLights {
				dropped++
				continue
			}
			lights[count] = st.Light()
			count++
		}
	}
	if dropped != r.droppedLights {
		if dropped > 0 {
			common.Logger().Warn("too many lights, extra lights ignored", "max", gpu.MaxLights, "dropped", dropped)
		}
		r.droppedLights = dropped
	}
	globals.LightCount[0] = float32(count)

	if err := r.viewProj.Write(vp.Marshal()); err != nil {
		return err
	}
	if err := r.globals.Write(globals.Marshal()); err != nil {
		return err
	}
	return r.lights.Write(lights.Marshal())
}

func (r *renderer) Release() {
	for _, b := range []gpu.Buffer{r.viewProj, r.globals, r.lights} {
		if b != nil {
			b.Release()
		}
	}
	if r.depth != nil {
		r.depth.Release()
		r.depth = nil
	}
}

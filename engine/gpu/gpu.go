// Package gpu defines the device operations the frame pipeline needs and a WebGPU
// implementation of them.
//
// The pipeline only ever talks to Device, CommandBuffer and Encoder, so tests can drive it
// with the recording device in gputest.
package gpu

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// ErrNoDrawable is returned by Device.NextDrawable when the surface has no image ready.
// The frame should be skipped, not treated as a failure.
var ErrNoDrawable = errors.New("no drawable available")

// DeviceError reports a resource the backend refused to create.
type DeviceError struct {
	// Op names the failed operation, e.g. "create buffer".
	Op string
	// Label is the label of the resource being created, if any.
	Label string
	// Err is the backend error.
	Err error
}

func (e *DeviceError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("gpu: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gpu: %s %q: %v", e.Op, e.Label, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// BufferUsage says how a buffer is bound.
type BufferUsage uint8

const (
	BufferUsageVertex BufferUsage = iota
	BufferUsageIndex
	BufferUsageUniform
)

func (u BufferUsage) String() string {
	switch u {
	case BufferUsageVertex:
		return "vertex"
	case BufferUsageIndex:
		return "index"
	case BufferUsageUniform:
		return "uniform"
	default:
		return "unknown"
	}
}

// UniformSlot identifies a uniform binding shared by every program.
type UniformSlot uint8

const (
	// SlotViewProjection holds a ViewProjection, visible to vertex programs.
	SlotViewProjection UniformSlot = iota
	// SlotGlobals holds FragmentGlobals (camera position, light count).
	SlotGlobals
	// SlotLights holds a LightArray.
	SlotLights
	// SlotModel holds the per-command ModelUniform.
	SlotModel

	uniformSlotCount
)

// TextureKind is the dimension a program samples a texture binding with.
type TextureKind uint8

const (
	Texture2D TextureKind = iota
	TextureCube
)

// LoadAction selects whether a pass clears or keeps an attachment.
type LoadAction uint8

const (
	LoadActionClear LoadAction = iota
	LoadActionLoad
)

// BufferDescriptor describes a buffer to create. When Contents is set, Size may be zero
// and the buffer is created with the contents uploaded.
type BufferDescriptor struct {
	Label    string
	Usage    BufferUsage
	Size     uint64
	Contents []byte
}

// TextureDescriptor describes a sampled texture to create from raw pixels.
// A cube texture requires six square layers.
type TextureDescriptor struct {
	Label  string
	Kind   TextureKind
	Pixels common.TextureStagingData
}

// PipelineDescriptor describes a render pipeline built from named programs.
type PipelineDescriptor struct {
	Key    PipelineKey
	Layout VertexLayout
	// Textures lists the texture bindings the fragment program samples, in binding order.
	Textures []TextureKind
}

// PassDescriptor configures one render encoding scope.
type PassDescriptor struct {
	Label      string
	Target     Drawable
	Depth      Texture
	ColorLoad  LoadAction
	DepthLoad  LoadAction
	ClearColor common.Vec4
	ClearDepth float32
}

// Buffer is a device-resident buffer.
type Buffer interface {
	// Size returns the buffer size in bytes.
	//
	// Returns:
	//   - uint64: size in bytes
	Size() uint64

	// Write uploads data at offset zero. len(data) must not exceed Size.
	//
	// Parameters:
	//   - data: bytes to upload
	//
	// Returns:
	//   - error: error if data does not fit
	Write(data []byte) error

	// Release frees the buffer. Safe to call more than once.
	Release()
}

// Texture is a device-resident texture, either sampled or a depth attachment.
type Texture interface {
	Width() uint32
	Height() uint32
	Kind() TextureKind
	Release()
}

// Pipeline is a compiled render pipeline.
type Pipeline interface {
	Key() PipelineKey
	Release()
}

// Drawable is the surface image a frame renders into and presents.
type Drawable interface {
	Width() uint32
	Height() uint32
	// Release returns the image to the surface. Safe to call more than once.
	Release()
}

// Device creates GPU resources and frames for one rendering surface.
type Device interface {
	// CreateBuffer allocates a buffer, uploading Contents when set.
	//
	// Parameters:
	//   - desc: the buffer descriptor
	//
	// Returns:
	//   - Buffer: the new buffer
	//   - error: *DeviceError if the backend refused
	CreateBuffer(desc BufferDescriptor) (Buffer, error)

	// CreateTexture creates a 2D or cube texture from raw RGBA8 pixels.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - Texture: the new texture
	//   - error: *DeviceError if the backend refused or the pixels do not fit the kind
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// CreateDepthTexture creates a depth attachment matching a drawable size.
	//
	// Parameters:
	//   - width: attachment width in pixels
	//   - height: attachment height in pixels
	//
	// Returns:
	//   - Texture: the depth texture
	//   - error: *DeviceError if the backend refused
	CreateDepthTexture(width, height uint32) (Texture, error)

	// CreateRenderPipeline compiles the vertex and fragment programs named by desc.Key
	// against the vertex layout.
	//
	// Parameters:
	//   - desc: the pipeline descriptor
	//
	// Returns:
	//   - Pipeline: the compiled pipeline
	//   - error: error if a program is unknown or fails to compile
	CreateRenderPipeline(desc PipelineDescriptor) (Pipeline, error)

	// CreateCommandBuffer starts recording a frame.
	//
	// Returns:
	//   - CommandBuffer: the command buffer
	//   - error: *DeviceError if the backend refused
	CreateCommandBuffer() (CommandBuffer, error)

	// NextDrawable acquires the next surface image.
	//
	// Returns:
	//   - Drawable: the surface image
	//   - error: ErrNoDrawable when the frame should be skipped
	NextDrawable() (Drawable, error)

	// SurfaceSize returns the current surface size in pixels.
	//
	// Returns:
	//   - uint32: width
	//   - uint32: height
	SurfaceSize() (uint32, uint32)
}

// CommandBuffer records the passes of one frame.
type CommandBuffer interface {
	// BeginPass opens a render encoding scope. The previous scope must be ended first.
	//
	// Parameters:
	//   - desc: the pass targets and load actions
	//
	// Returns:
	//   - Encoder: the encoding scope
	//   - error: *DeviceError if the scope could not be opened
	BeginPass(desc PassDescriptor) (Encoder, error)

	// Present schedules the drawable for presentation when the buffer is committed.
	//
	// Parameters:
	//   - d: the drawable rendered this frame
	Present(d Drawable)

	// Commit submits the recorded work and presents any scheduled drawable.
	//
	// Returns:
	//   - error: *DeviceError if submission failed; nothing is presented in that case
	Commit() error

	// Discard abandons the recorded work without submitting or presenting.
	Discard()
}

// Encoder records draw state and draws inside one pass.
type Encoder interface {
	SetPipeline(p Pipeline)
	SetUniform(slot UniformSlot, b Buffer)
	SetTexture(index int, t Texture)
	SetVertexBuffer(index int, b Buffer)

	// DrawIndexed draws one sub-mesh with the state bound so far.
	//
	// Parameters:
	//   - sub: the sub-mesh to draw
	//   - instances: instance count, normally 1
	//
	// Returns:
	//   - error: error if required state is missing or binding failed
	DrawIndexed(sub Submesh, instances uint32) error

	// End closes the pass.
	//
	// Returns:
	//   - error: error if the pass could not be closed
	End() error
}

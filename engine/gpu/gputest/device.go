// Package gputest provides an in-memory gpu.Device that records every call, for tests.
package gputest

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

// ErrInjected is the error returned by injected failures.
var ErrInjected = errors.New("injected failure")

// Draw records one DrawIndexed call.
type Draw struct {
	Pass       int
	Pipeline   gpu.PipelineKey
	Model      *Buffer
	Textures   []*Texture
	IndexCount uint32
}

// Device is a recording gpu.Device. Fields ending in Err inject failures.
type Device struct {
	Width  uint32
	Height uint32

	// Log lists every call in order, e.g. "BeginPass(clear)" or "DrawIndexed(cube)".
	Log []string
	// Draws lists every successful DrawIndexed call in order.
	Draws []Draw

	Buffers        []*Buffer
	Textures       []*Texture
	DepthTextures  []*Texture
	Pipelines      []*Pipeline
	CommandBuffers []*CommandBuffer
	Presented      int

	// NoDrawable makes NextDrawable return gpu.ErrNoDrawable.
	NoDrawable bool
	// CommandBufferErr makes CreateCommandBuffer fail.
	CommandBufferErr error
	// PipelineErr makes CreateRenderPipeline fail.
	PipelineErr error
	// TextureErr makes CreateTexture fail.
	TextureErr error
	// DepthErr makes CreateDepthTexture fail.
	DepthErr error
	// FailPass makes the n-th BeginPass of a command buffer fail, counting from 1.
	// Zero disables the failure.
	FailPass int
	// CommitErr makes Commit fail.
	CommitErr error
}

var _ gpu.Device = &Device{}

// NewDevice creates a recording device with the given surface size.
func NewDevice(width, height uint32) *Device {
	return &Device{Width: width, Height: height}
}

func (d *Device) logf(format string, args ...any) {
	d.Log = append(d.Log, fmt.Sprintf(format, args...))
}

func (d *Device) CreateBuffer(desc gpu.BufferDescriptor) (gpu.Buffer, error) {
	size := desc.Size
	if desc.Contents != nil {
		size = uint64(len(desc.Contents))
	}
	b := &Buffer{Label: desc.Label, Usage: desc.Usage, size: size}
	if desc.Contents != nil {
		b.Data = append([]byte(nil), desc.Contents...)
	}
	d.Buffers = append(d.Buffers, b)
	d.logf("CreateBuffer(%s)", desc.Label)
	return b, nil
}

func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	d.logf("CreateTexture(%s)", desc.Label)
	if d.TextureErr != nil {
		return nil, d.TextureErr
	}
	t := &Texture{Label: desc.Label, kind: desc.Kind, width: desc.Pixels.Width, height: desc.Pixels.Height, Pixels: desc.Pixels}
	d.Textures = append(d.Textures, t)
	return t, nil
}

func (d *Device) CreateDepthTexture(width, height uint32) (gpu.Texture, error) {
	d.logf("CreateDepthTexture(%dx%d)", width, height)
	if d.DepthErr != nil {
		return nil, d.DepthErr
	}
	t := &Texture{Label: "depth", kind: gpu.Texture2D, width: width, height: height}
	d.DepthTextures = append(d.DepthTextures, t)
	return t, nil
}

func (d *Device) CreateRenderPipeline(desc gpu.PipelineDescriptor) (gpu.Pipeline, error) {
	d.logf("CreateRenderPipeline(%s)", desc.Key)
	if d.PipelineErr != nil {
		return nil, d.PipelineErr
	}
	if _, ok := gpu.ProgramSource(desc.Key.Vertex); !ok {
		return nil, fmt.Errorf("unknown vertex program %q", desc.Key.Vertex)
	}
	if _, ok := gpu.ProgramSource(desc.Key.Fragment); !ok {
		return nil, fmt.Errorf("unknown fragment program %q", desc.Key.Fragment)
	}
	p := &Pipeline{key: desc.Key, Textures: append([]gpu.TextureKind(nil), desc.Textures...)}
	d.Pipelines = append(d.Pipelines, p)
	return p, nil
}

func (d *Device) CreateCommandBuffer() (gpu.CommandBuffer, error) {
	d.logf("CreateCommandBuffer")
	if d.CommandBufferErr != nil {
		return nil, d.CommandBufferErr
	}
	c := &CommandBuffer{device: d}
	d.CommandBuffers = append(d.CommandBuffers, c)
	return c, nil
}

func (d *Device) NextDrawable() (gpu.Drawable, error) {
	if d.NoDrawable {
		d.logf("NextDrawable(none)")
		return nil, gpu.ErrNoDrawable
	}
	d.logf("NextDrawable")
	return &Drawable{width: d.Width, height: d.Height}, nil
}

func (d *Device) SurfaceSize() (uint32, uint32) {
	return d.Width, d.Height
}

// CountLog returns how many log entries equal entry.
func (d *Device) CountLog(entry string) int {
	n := 0
	for _, l := range d.Log {
		if l == entry {
			n++
		}
	}
	return n
}

// Buffer is a recorded buffer holding its last written contents.
type Buffer struct {
	Label    string
	Usage    gpu.BufferUsage
	Data     []byte
	Writes   int
	Released bool
	size     uint64
}

func (b *Buffer) Size() uint64 { return b.size }

func (b *Buffer) Write(data []byte) error {
	if uint64(len(data)) > b.size {
		return fmt.Errorf("write of %d bytes exceeds size %d", len(data), b.size)
	}
	b.Data = append(b.Data[:0], data...)
	b.Writes++
	return nil
}

func (b *Buffer) Release() { b.Released = true }

// Texture is a recorded texture.
type Texture struct {
	Label    string
	Pixels   common.TextureStagingData
	Released bool
	kind     gpu.TextureKind
	width    uint32
	height   uint32
}

func (t *Texture) Width() uint32         { return t.width }
func (t *Texture) Height() uint32        { return t.height }
func (t *Texture) Kind() gpu.TextureKind { return t.kind }
func (t *Texture) Release()              { t.Released = true }

// Pipeline is a recorded pipeline.
type Pipeline struct {
	Textures []gpu.TextureKind
	Released bool
	key      gpu.PipelineKey
}

func (p *Pipeline) Key() gpu.PipelineKey { return p.key }
func (p *Pipeline) Release()             { p.Released = true }

// Drawable is a recorded surface image.
type Drawable struct {
	Released bool
	width    uint32
	height   uint32
}

func (d *Drawable) Width() uint32  { return d.width }
func (d *Drawable) Height() uint32 { return d.height }
func (d *Drawable) Release()       { d.Released = true }

// CommandBuffer is a recorded command buffer.
type CommandBuffer struct {
	Passes    []gpu.PassDescriptor
	Committed bool
	Discarded bool

	device  *Device
	open    *Encoder
	present gpu.Drawable
}

func (c *CommandBuffer) BeginPass(desc gpu.PassDescriptor) (gpu.Encoder, error) {
	d := c.device
	load := "clear"
	if desc.ColorLoad == gpu.LoadActionLoad {
		load = "load"
	}
	d.logf("BeginPass(%s)", load)
	if d.FailPass > 0 && len(c.Passes)+1 == d.FailPass {
		return nil, &gpu.DeviceError{Op: "begin pass", Label: desc.Label, Err: ErrInjected}
	}
	if c.open != nil && !c.open.ended {
		return nil, fmt.Errorf("previous pass still open")
	}
	c.Passes = append(c.Passes, desc)
	c.open = &Encoder{device: d, pass: len(c.Passes) - 1}
	return c.open, nil
}

func (c *CommandBuffer) Present(dr gpu.Drawable) {
	c.device.logf("Present")
	c.present = dr
}

func (c *CommandBuffer) Commit() error {
	c.device.logf("Commit")
	if c.device.CommitErr != nil {
		return c.device.CommitErr
	}
	c.Committed = true
	if c.present != nil {
		c.device.Presented++
	}
	return nil
}

func (c *CommandBuffer) Discard() {
	c.device.logf("Discard")
	c.Discarded = true
}

// Encoder is a recorded encoding scope.
type Encoder struct {
	device   *Device
	pass     int
	ended    bool
	pipeline *Pipeline
	uniforms map[gpu.UniformSlot]gpu.Buffer
	textures map[int]*Texture
}

func (e *Encoder) SetPipeline(p gpu.Pipeline) {
	e.pipeline, _ = p.(*Pipeline)
	e.device.logf("SetPipeline(%s)", p.Key())
}

func (e *Encoder) SetUniform(slot gpu.UniformSlot, b gpu.Buffer) {
	if e.uniforms == nil {
		e.uniforms = make(map[gpu.UniformSlot]gpu.Buffer)
	}
	e.uniforms[slot] = b
}

func (e *Encoder) SetTexture(index int, t gpu.Texture) {
	if e.textures == nil {
		e.textures = make(map[int]*Texture)
	}
	e.textures[index], _ = t.(*Texture)
	e.device.logf("SetTexture(%d, %s)", index, e.textures[index].Label)
}

func (e *Encoder) SetVertexBuffer(index int, b gpu.Buffer) {}

func (e *Encoder) DrawIndexed(sub gpu.Submesh, instances uint32) error {
	if e.ended {
		return fmt.Errorf("draw on ended pass")
	}
	if e.pipeline == nil {
		return fmt.Errorf("draw without pipeline")
	}
	for _, slot := range []gpu.UniformSlot{gpu.SlotViewProjection, gpu.SlotGlobals, gpu.SlotLights, gpu.SlotModel} {
		if e.uniforms[slot] == nil {
			return fmt.Errorf("uniform slot %d not bound", slot)
		}
	}
	model, _ := e.uniforms[gpu.SlotModel].(*Buffer)
	draw := Draw{Pass: e.pass, Pipeline: e.pipeline.key, Model: model, IndexCount: sub.IndexCount}
	for i := range e.pipeline.Textures {
		draw.Textures = append(draw.Textures, e.textures[i])
	}
	e.device.Draws = append(e.device.Draws, draw)
	e.device.logf("DrawIndexed(%s)", model.Label)
	return nil
}

func (e *Encoder) End() error {
	e.device.logf("EndPass")
	e.ended = true
	return nil
}

package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

const maxVertexBuffers = 8

var errCommandBufferDone = errors.New("command buffer already committed or discarded")

type wgpuCommandBuffer struct {
	device  *wgpuDevice
	encoder *wgpu.CommandEncoder
	open    *wgpuEncoder
	present *wgpuDrawable
	done    bool
}

var _ CommandBuffer = &wgpuCommandBuffer{}

func loadOp(a LoadAction) wgpu.LoadOp {
	if a == LoadActionLoad {
		return wgpu.LoadOpLoad
	}
	return wgpu.LoadOpClear
}

func (c *wgpuCommandBuffer) BeginPass(desc PassDescriptor) (Encoder, error) {
	if c.done {
		return nil, errCommandBufferDone
	}
	if c.open != nil && !c.open.ended {
		return nil, &DeviceError{Op: "begin pass", Label: desc.Label, Err: fmt.Errorf("previous pass still open")}
	}
	target, ok := desc.Target.(*wgpuDrawable)
	if !ok || target.view == nil {
		return nil, &DeviceError{Op: "begin pass", Label: desc.Label, Err: fmt.Errorf("target is not a live surface drawable")}
	}

	passDesc := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    target.view,
			LoadOp:  loadOp(desc.ColorLoad),
			StoreOp: wgpu.StoreOpStore,
			ClearValue: wgpu.Color{
				R: float64(desc.ClearColor[0]),
				G: float64(desc.ClearColor[1]),
				B: float64(desc.ClearColor[2]),
				A: float64(desc.ClearColor[3]),
			},
		}},
	}
	if desc.Depth != nil {
		depth, ok := desc.Depth.(*wgpuTexture)
		if !ok || depth.view == nil {
			return nil, &DeviceError{Op: "begin pass", Label: desc.Label, Err: fmt.Errorf("depth is not a live depth texture")}
		}
		passDesc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            depth.view,
			DepthLoadOp:     loadOp(desc.DepthLoad),
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: desc.ClearDepth,
		}
	}

	c.open = &wgpuEncoder{device: c.device, pass: c.encoder.BeginRenderPass(passDesc)}
	return c.open, nil
}

func (c *wgpuCommandBuffer) Present(d Drawable) {
	if wd, ok := d.(*wgpuDrawable); ok {
		c.present = wd
	}
}

func (c *wgpuCommandBuffer) Commit() error {
	if c.done {
		return errCommandBufferDone
	}
	c.done = true
	if c.open != nil && !c.open.ended {
		c.open.pass.End()
		c.open.ended = true
	}

	commandBuffer, err := c.encoder.Finish(nil)
	if err != nil {
		c.encoder.Release()
		return &DeviceError{Op: "finish command buffer", Err: err}
	}
	c.device.queue.Submit(commandBuffer)
	commandBuffer.Release()
	c.encoder.Release()

	if c.present != nil {
		c.device.surface.Present()
		c.present.Release()
		c.present = nil
	}
	return nil
}

func (c *wgpuCommandBuffer) Discard() {
	if c.done {
		return
	}
	c.done = true
	if c.open != nil && !c.open.ended {
		c.open.pass.End()
		c.open.ended = true
	}
	c.encoder.Release()
	c.present = nil
}

type wgpuEncoder struct {
	device   *wgpuDevice
	pass     *wgpu.RenderPassEncoder
	ended    bool
	pipeline *wgpuPipeline
	uniforms [uniformSlotCount]*wgpuBuffer
	textures [maxTextureBindings]*wgpuTexture
	vertex   [maxVertexBuffers]*wgpuBuffer
}

var _ Encoder = &wgpuEncoder{}

func (e *wgpuEncoder) SetPipeline(p Pipeline) {
	if wp, ok := p.(*wgpuPipeline); ok {
		e.pipeline = wp
		e.pass.SetPipeline(wp.pipeline)
	}
}

func (e *wgpuEncoder) SetUniform(slot UniformSlot, b Buffer) {
	if slot >= uniformSlotCount {
		return
	}
	wb, _ := b.(*wgpuBuffer)
	e.uniforms[slot] = wb
}

func (e *wgpuEncoder) SetTexture(index int, t Texture) {
	if index < 0 || index >= maxTextureBindings {
		return
	}
	wt, _ := t.(*wgpuTexture)
	e.textures[index] = wt
}

func (e *wgpuEncoder) SetVertexBuffer(index int, b Buffer) {
	if index < 0 || index >= maxVertexBuffers {
		return
	}
	wb, _ := b.(*wgpuBuffer)
	e.vertex[index] = wb
	if wb != nil {
		e.pass.SetVertexBuffer(uint32(index), wb.buffer, 0, wgpu.WholeSize)
	}
}

func (e *wgpuEncoder) DrawIndexed(sub Submesh, instances uint32) error {
	if e.ended {
		return fmt.Errorf("draw on ended pass")
	}
	if e.pipeline == nil {
		return fmt.Errorf("draw without pipeline")
	}
	vp, globals, lights, model := e.uniforms[SlotViewProjection], e.uniforms[SlotGlobals], e.uniforms[SlotLights], e.uniforms[SlotModel]
	if vp == nil || globals == nil || lights == nil || model == nil {
		return fmt.Errorf("draw with pipeline %s: frame and model uniforms must be bound", e.pipeline.key)
	}
	index, ok := sub.IndexBuffer.(*wgpuBuffer)
	if !ok || index.buffer == nil {
		return fmt.Errorf("draw with pipeline %s: sub-mesh has no live index buffer", e.pipeline.key)
	}

	frame, err := e.device.frameGroup(vp, globals, lights)
	if err != nil {
		return err
	}
	modelGroup, err := model.bindModel()
	if err != nil {
		return err
	}
	e.pass.SetBindGroup(0, frame, nil)
	e.pass.SetBindGroup(1, modelGroup, nil)

	if len(e.pipeline.textures) > 0 {
		var bound [maxTextureBindings]*wgpuTexture
		copy(bound[:], e.textures[:len(e.pipeline.textures)])
		texGroup, err := e.device.textureGroup(e.pipeline, bound)
		if err != nil {
			return err
		}
		e.pass.SetBindGroup(2, texGroup, nil)
	}

	e.pass.SetIndexBuffer(index.buffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	e.pass.DrawIndexed(sub.IndexCount, max(instances, 1), sub.FirstIndex, 0, 0)
	return nil
}

func (e *wgpuEncoder) End() error {
	if e.ended {
		return fmt.Errorf("pass already ended")
	}
	e.pass.End()
	e.ended = true
	return nil
}

package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuBuffer struct {
	device *wgpuDevice
	label  string
	buffer *wgpu.Buffer
	size   uint64

	// modelGroup is the group 1 bind group when the buffer is bound at SlotModel.
	modelGroup *wgpu.BindGroup
}

var _ Buffer = &wgpuBuffer{}

func (b *wgpuBuffer) Size() uint64 {
	return b.size
}

func (b *wgpuBuffer) Write(data []byte) error {
	if b.buffer == nil {
		return fmt.Errorf("buffer %q released", b.label)
	}
	if uint64(len(data)) > b.size {
		return fmt.Errorf("buffer %q: write of %d bytes exceeds size %d", b.label, len(data), b.size)
	}
	b.device.queue.WriteBuffer(b.buffer, 0, data)
	return nil
}

func (b *wgpuBuffer) Release() {
	if b.buffer == nil {
		return
	}
	b.device.forgetBuffer(b)
	if b.modelGroup != nil {
		b.modelGroup.Release()
		b.modelGroup = nil
	}
	b.buffer.Release()
	b.buffer = nil
}

// bindModel returns the group 1 bind group for this buffer, creating it on first use.
func (b *wgpuBuffer) bindModel() (*wgpu.BindGroup, error) {
	if b.modelGroup != nil {
		return b.modelGroup, nil
	}
	bg, err := b.device.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  b.label + " Bind Group",
		Layout: b.device.modelLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.buffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, &DeviceError{Op: "create bind group", Label: b.label, Err: err}
	}
	b.modelGroup = bg
	return bg, nil
}

type wgpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
	kind    TextureKind
	width   uint32
	height  uint32
}

var _ Texture = &wgpuTexture{}

func (t *wgpuTexture) Width() uint32     { return t.width }
func (t *wgpuTexture) Height() uint32    { return t.height }
func (t *wgpuTexture) Kind() TextureKind { return t.kind }

func (t *wgpuTexture) Release() {
	if t.sampler != nil {
		t.sampler.Release()
		t.sampler = nil
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

type wgpuPipeline struct {
	key           PipelineKey
	pipeline      *wgpu.RenderPipeline
	layout        *wgpu.PipelineLayout
	textureLayout *wgpu.BindGroupLayout
	textures      []TextureKind
	modules       []*wgpu.ShaderModule
}

var _ Pipeline = &wgpuPipeline{}

func (p *wgpuPipeline) Key() PipelineKey {
	return p.key
}

func (p *wgpuPipeline) Release() {
	if p.pipeline == nil {
		return
	}
	p.pipeline.Release()
	p.layout.Release()
	for _, m := range p.modules {
		m.Release()
	}
	p.pipeline = nil
}

type wgpuDrawable struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	width   uint32
	height  uint32
}

var _ Drawable = &wgpuDrawable{}

func (d *wgpuDrawable) Width() uint32  { return d.width }
func (d *wgpuDrawable) Height() uint32 { return d.height }

func (d *wgpuDrawable) Release() {
	if d.view != nil {
		d.view.Release()
		d.view = nil
	}
	if d.texture != nil {
		d.texture.Release()
		d.texture = nil
	}
}

package gpu

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/cache"
	"github.com/cogentcore/webgpu/wgpu"
)

// maxTextureBindings is the number of texture/sampler pairs a fragment program may sample.
const maxTextureBindings = 4

// depthFormat is the format of every depth attachment and pipeline depth state.
const depthFormat = wgpu.TextureFormatDepth24Plus

// WGPUDevice is a Device backed by a WebGPU surface.
type WGPUDevice interface {
	Device

	// ConfigureSurface (re)configures the surface for a new size, e.g. after a window resize.
	// A zero size leaves the surface unconfigured and NextDrawable returns ErrNoDrawable.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: *DeviceError if the surface reports no usable format
	ConfigureSurface(width, height int) error

	// Release frees the layouts, device, adapter, surface and instance.
	Release()
}

type textureGroupKey struct {
	layout   *wgpu.BindGroupLayout
	textures [maxTextureBindings]*wgpuTexture
}

type wgpuDevice struct {
	label                string
	forceFallbackAdapter bool
	presentMode          wgpu.PresentMode

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	width         uint32
	height        uint32

	// frameLayout is group 0 (view projection, globals, lights); modelLayout is group 1.
	frameLayout *wgpu.BindGroupLayout
	modelLayout *wgpu.BindGroupLayout

	textureLayouts cache.Cache[string, *wgpu.BindGroupLayout]
	textureGroups  cache.Cache[textureGroupKey, *wgpu.BindGroup]
	frameGroups    map[[3]*wgpuBuffer]*wgpu.BindGroup
}

var _ WGPUDevice = &wgpuDevice{}

// NewWGPUDevice creates a WebGPU instance, surface, adapter and device, then configures the
// surface at the given size.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor, e.g. from window.Window
//   - width: initial surface width in pixels
//   - height: initial surface height in pixels
//   - options: functional options to configure the device
//
// Returns:
//   - WGPUDevice: the ready device
//   - error: *DeviceError if any setup step fails
func NewWGPUDevice(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...WGPUDeviceBuilderOption) (WGPUDevice, error) {
	runtime.LockOSThread()

	d := &wgpuDevice{
		label:          "Main Device",
		presentMode:    wgpu.PresentModeFifo,
		textureLayouts: cache.New[string, *wgpu.BindGroupLayout]("texture layout"),
		textureGroups:  cache.New[textureGroupKey, *wgpu.BindGroup]("texture bind group"),
		frameGroups:    make(map[[3]*wgpuBuffer]*wgpu.BindGroup),
	}
	for _, opt := range options {
		opt(d)
	}

	if surfaceDescriptor == nil {
		return nil, &DeviceError{Op: "create surface", Err: fmt.Errorf("nil surface descriptor")}
	}
	d.instance = wgpu.CreateInstance(nil)
	d.surface = d.instance.CreateSurface(surfaceDescriptor)

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		d.Release()
		return nil, &DeviceError{Op: "request adapter", Err: err}
	}
	d.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: d.label,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		d.Release()
		return nil, &DeviceError{Op: "request device", Label: d.label, Err: err}
	}
	d.device = device
	d.queue = device.GetQueue()

	if err := d.createSharedLayouts(); err != nil {
		d.Release()
		return nil, err
	}
	if err := d.ConfigureSurface(width, height); err != nil {
		d.Release()
		return nil, err
	}

	common.Logger().Info("gpu device ready", "label", d.label, "format", d.surfaceFormat, "width", d.width, "height", d.height)
	return d, nil
}

func (d *wgpuDevice) createSharedLayouts() error {
	visibility := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	uniformEntry := func(binding uint32) wgpu.BindGroupLayoutEntry {
		entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		return entry
	}

	frame, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Frame Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0), uniformEntry(1), uniformEntry(2)},
	})
	if err != nil {
		return &DeviceError{Op: "create bind group layout", Label: "frame", Err: err}
	}
	d.frameLayout = frame

	model, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Model Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{uniformEntry(0)},
	})
	if err != nil {
		return &DeviceError{Op: "create bind group layout", Label: "model", Err: err}
	}
	d.modelLayout = model
	return nil
}

func (d *wgpuDevice) ConfigureSurface(width, height int) error {
	d.width, d.height = uint32(max(width, 0)), uint32(max(height, 0))
	if d.width == 0 || d.height == 0 {
		return nil
	}

	capabilities := d.surface.GetCapabilities(d.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return &DeviceError{Op: "configure surface", Err: fmt.Errorf("surface reports no formats")}
	}
	d.surfaceFormat = capabilities.Formats[0]

	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       d.width,
		Height:      d.height,
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	common.Logger().Info("surface configured", "width", d.width, "height", d.height)
	return nil
}

func (d *wgpuDevice) SurfaceSize() (uint32, uint32) {
	return d.width, d.height
}

func (d *wgpuDevice) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	var usage wgpu.BufferUsage
	switch desc.Usage {
	case BufferUsageVertex:
		usage = wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	case BufferUsageIndex:
		usage = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	default:
		usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	}

	var (
		buf *wgpu.Buffer
		err error
	)
	size := desc.Size
	if desc.Contents != nil {
		size = uint64(len(desc.Contents))
		buf, err = d.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    desc.Label,
			Contents: desc.Contents,
			Usage:    usage,
		})
	} else {
		buf, err = d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: desc.Label,
			Size:  size,
			Usage: usage,
		})
	}
	if err != nil {
		return nil, &DeviceError{Op: "create buffer", Label: desc.Label, Err: err}
	}
	return &wgpuBuffer{device: d, label: desc.Label, buffer: buf, size: size}, nil
}

func (d *wgpuDevice) CreateTexture(desc TextureDescriptor) (Texture, error) {
	px := desc.Pixels
	layers := px.LayerCount()
	if desc.Kind == TextureCube && (layers != 6 || px.Width != px.Height) {
		return nil, &DeviceError{Op: "create texture", Label: desc.Label, Err: fmt.Errorf("cube texture needs 6 square layers, got %d of %dx%d", layers, px.Width, px.Height)}
	}
	if want := int(px.Width * px.Height * 4 * layers); len(px.Pixels) != want || want == 0 {
		return nil, &DeviceError{Op: "create texture", Label: desc.Label, Err: fmt.Errorf("expected %d bytes of pixels, got %d", want, len(px.Pixels))}
	}

	size := wgpu.Extent3D{Width: px.Width, Height: px.Height, DepthOrArrayLayers: layers}
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         desc.Label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, &DeviceError{Op: "create texture", Label: desc.Label, Err: err}
	}

	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		px.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  px.Width * 4,
			RowsPerImage: px.Height,
		},
		&size,
	)

	var view *wgpu.TextureView
	sampler := common.LinearRepeatSampler()
	if desc.Kind == TextureCube {
		sampler = common.LinearClampSampler()
		view, err = tex.CreateView(&wgpu.TextureViewDescriptor{
			Label:           desc.Label + " Cube View",
			Format:          wgpu.TextureFormatRGBA8UnormSrgb,
			Dimension:       wgpu.TextureViewDimensionCube,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  0,
			ArrayLayerCount: 6,
			Aspect:          wgpu.TextureAspectAll,
		})
	} else {
		view, err = tex.CreateView(nil)
	}
	if err != nil {
		tex.Release()
		return nil, &DeviceError{Op: "create texture view", Label: desc.Label, Err: err}
	}

	samp, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label + " Sampler",
		AddressModeU:  sampler.AddressModeU,
		AddressModeV:  sampler.AddressModeV,
		AddressModeW:  sampler.AddressModeW,
		MagFilter:     sampler.MagFilter,
		MinFilter:     sampler.MinFilter,
		MipmapFilter:  sampler.MipmapFilter,
		LodMinClamp:   sampler.LodMinClamp,
		LodMaxClamp:   sampler.LodMaxClamp,
		MaxAnisotropy: sampler.MaxAnisotropy,
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, &DeviceError{Op: "create sampler", Label: desc.Label, Err: err}
	}

	return &wgpuTexture{
		texture: tex,
		view:    view,
		sampler: samp,
		kind:    desc.Kind,
		width:   px.Width,
		height:  px.Height,
	}, nil
}

func (d *wgpuDevice) CreateDepthTexture(width, height uint32) (Texture, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, &DeviceError{Op: "create depth texture", Err: err}
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, &DeviceError{Op: "create depth texture view", Err: err}
	}
	return &wgpuTexture{texture: tex, view: view, kind: Texture2D, width: width, height: height}, nil
}

func (d *wgpuDevice) textureLayout(kinds []TextureKind) (*wgpu.BindGroupLayout, error) {
	key := fmt.Sprint(kinds)
	return d.textureLayouts.GetOrBuild(key, func() (*wgpu.BindGroupLayout, error) {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(kinds)*2)
		for i, kind := range kinds {
			tex := wgpu.BindGroupLayoutEntry{Binding: uint32(i * 2), Visibility: wgpu.ShaderStageFragment}
			tex.Texture.SampleType = wgpu.TextureSampleTypeFloat
			tex.Texture.ViewDimension = wgpu.TextureViewDimension2D
			if kind == TextureCube {
				tex.Texture.ViewDimension = wgpu.TextureViewDimensionCube
			}
			samp := wgpu.BindGroupLayoutEntry{Binding: uint32(i*2 + 1), Visibility: wgpu.ShaderStageFragment}
			samp.Sampler.Type = wgpu.SamplerBindingTypeFiltering
			entries = append(entries, tex, samp)
		}
		return d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   "Texture Bind Group Layout " + key,
			Entries: entries,
		})
	})
}

func (d *wgpuDevice) CreateRenderPipeline(desc PipelineDescriptor) (Pipeline, error) {
	if len(desc.Textures) > maxTextureBindings {
		return nil, fmt.Errorf("pipeline %s samples %d textures, limit is %d", desc.Key, len(desc.Textures), maxTextureBindings)
	}
	vertexSource, ok := ProgramSource(desc.Key.Vertex)
	if !ok {
		return nil, fmt.Errorf("unknown vertex program %q", desc.Key.Vertex)
	}
	fragmentSource, ok := ProgramSource(desc.Key.Fragment)
	if !ok {
		return nil, fmt.Errorf("unknown fragment program %q", desc.Key.Fragment)
	}

	vs, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Key.Vertex,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: vertexSource},
	})
	if err != nil {
		return nil, &DeviceError{Op: "compile vertex program", Label: desc.Key.Vertex, Err: err}
	}
	fs, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Key.Fragment,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: fragmentSource},
	})
	if err != nil {
		vs.Release()
		return nil, &DeviceError{Op: "compile fragment program", Label: desc.Key.Fragment, Err: err}
	}

	layouts := []*wgpu.BindGroupLayout{d.frameLayout, d.modelLayout}
	var texLayout *wgpu.BindGroupLayout
	if len(desc.Textures) > 0 {
		texLayout, err = d.textureLayout(desc.Textures)
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, texLayout)
	}

	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Key.String(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, &DeviceError{Op: "create pipeline layout", Label: desc.Key.String(), Err: err}
	}

	attributes := make([]wgpu.VertexAttribute, 0, len(desc.Layout.Attributes))
	for _, a := range desc.Layout.Attributes {
		format := wgpu.VertexFormatFloat32x4
		switch a.Format {
		case VertexFormatFloat32x2:
			format = wgpu.VertexFormatFloat32x2
		case VertexFormatFloat32x3:
			format = wgpu.VertexFormatFloat32x3
		}
		attributes = append(attributes, wgpu.VertexAttribute{Format: format, Offset: a.Offset, ShaderLocation: a.Location})
	}

	cullMode := wgpu.CullModeNone
	if desc.Key.CullBack {
		cullMode = wgpu.CullModeBack
	}

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Key.String() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: programVertexEntryPoint,
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: desc.Layout.Stride,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes:  attributes,
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: programFragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    d.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, &DeviceError{Op: "create render pipeline", Label: desc.Key.String(), Err: err}
	}

	return &wgpuPipeline{
		key:           desc.Key,
		pipeline:      created,
		layout:        pipelineLayout,
		textureLayout: texLayout,
		textures:      append([]TextureKind(nil), desc.Textures...),
		modules:       []*wgpu.ShaderModule{vs, fs},
	}, nil
}

func (d *wgpuDevice) CreateCommandBuffer() (CommandBuffer, error) {
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, &DeviceError{Op: "create command encoder", Err: err}
	}
	return &wgpuCommandBuffer{device: d, encoder: encoder}, nil
}

func (d *wgpuDevice) NextDrawable() (Drawable, error) {
	if d.width == 0 || d.height == 0 {
		return nil, ErrNoDrawable
	}
	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDrawable, err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, &DeviceError{Op: "create drawable view", Err: err}
	}
	return &wgpuDrawable{texture: surfaceTexture, view: view, width: d.width, height: d.height}, nil
}

// frameGroup returns the group 0 bind group for a set of frame uniform buffers.
func (d *wgpuDevice) frameGroup(vp, globals, lights *wgpuBuffer) (*wgpu.BindGroup, error) {
	key := [3]*wgpuBuffer{vp, globals, lights}
	if bg, ok := d.frameGroups[key]; ok {
		return bg, nil
	}
	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Frame Bind Group",
		Layout: d.frameLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: vp.buffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: globals.buffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: lights.buffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, &DeviceError{Op: "create bind group", Label: "frame", Err: err}
	}
	d.frameGroups[key] = bg
	return bg, nil
}

// forgetBuffer drops frame bind groups that reference b.
func (d *wgpuDevice) forgetBuffer(b *wgpuBuffer) {
	for key, bg := range d.frameGroups {
		if key[0] == b || key[1] == b || key[2] == b {
			bg.Release()
			delete(d.frameGroups, key)
		}
	}
}

func (d *wgpuDevice) textureGroup(p *wgpuPipeline, textures [maxTextureBindings]*wgpuTexture) (*wgpu.BindGroup, error) {
	key := textureGroupKey{layout: p.textureLayout, textures: textures}
	return d.textureGroups.GetOrBuild(key, func() (*wgpu.BindGroup, error) {
		entries := make([]wgpu.BindGroupEntry, 0, len(p.textures)*2)
		for i, kind := range p.textures {
			t := textures[i]
			if t == nil {
				return nil, fmt.Errorf("texture %d not bound", i)
			}
			if t.kind != kind {
				return nil, fmt.Errorf("texture %d has the wrong kind for pipeline %s", i, p.key)
			}
			entries = append(entries,
				wgpu.BindGroupEntry{Binding: uint32(i * 2), TextureView: t.view},
				wgpu.BindGroupEntry{Binding: uint32(i*2 + 1), Sampler: t.sampler},
			)
		}
		return d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   "Texture Bind Group",
			Layout:  p.textureLayout,
			Entries: entries,
		})
	})
}

func (d *wgpuDevice) Release() {
	for key, bg := range d.frameGroups {
		bg.Release()
		delete(d.frameGroups, key)
	}
	if d.textureGroups != nil {
		d.textureGroups.Each(func(bg *wgpu.BindGroup) { bg.Release() })
	}
	if d.textureLayouts != nil {
		d.textureLayouts.Each(func(l *wgpu.BindGroupLayout) { l.Release() })
	}
	if d.modelLayout != nil {
		d.modelLayout.Release()
	}
	if d.frameLayout != nil {
		d.frameLayout.Release()
	}
	if d.device != nil {
		d.device.Release()
	}
	if d.adapter != nil {
		d.adapter.Release()
	}
	if d.surface != nil {
		d.surface.Release()
	}
	if d.instance != nil {
		d.instance.Release()
	}
}

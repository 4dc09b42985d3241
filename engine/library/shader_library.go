package library

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/cache"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

const defaultColorTextureSize = 8

// ErrUnnamedTexture is returned for image and cube textures without a Name.
var ErrUnnamedTexture = errors.New("image textures require a name")

// ShaderLibrary caches compiled pipelines and the textures shaders sample.
type ShaderLibrary interface {
	// Pipeline returns the pipeline for desc, compiling it on first request.
	// The key's Layout is derived from desc.Layout, so callers only set the programs and cull mode.
	//
	// Parameters:
	//   - desc: the pipeline descriptor
	//
	// Returns:
	//   - gpu.Pipeline: the shared pipeline
	//   - error: *cache.BuildError if compilation failed
	Pipeline(desc gpu.PipelineDescriptor) (gpu.Pipeline, error)

	// Texture returns the texture for src, decoding and uploading it on first request.
	//
	// Parameters:
	//   - src: a ColorTexture, ImageTexture or CubeTexture
	//
	// Returns:
	//   - gpu.Texture: the shared texture
	//   - error: *cache.BuildError if decoding or upload failed, ErrUnnamedTexture for unnamed images
	Texture(src TextureSource) (gpu.Texture, error)

	// Pipelines returns the number of cached pipelines.
	//
	// Returns:
	//   - int: the pipeline count
	Pipelines() int

	// Textures returns the number of cached textures across all three domains.
	//
	// Returns:
	//   - int: the texture count
	Textures() int

	// Release frees every cached pipeline and texture.
	Release()
}

type shaderLibrary struct {
	device        gpu.Device
	pipelineStore cache.Store[gpu.PipelineKey, gpu.Pipeline]
	colorStore    cache.Store[common.Vec4, gpu.Texture]
	imageStore    cache.Store[string, gpu.Texture]
	cubeStore     cache.Store[string, gpu.Texture]
	colorSize     uint32

	pipelines     cache.Cache[gpu.PipelineKey, gpu.Pipeline]
	colorTextures cache.Cache[common.Vec4, gpu.Texture]
	imageTextures cache.Cache[string, gpu.Texture]
	cubeTextures  cache.Cache[string, gpu.Texture]
}

var _ ShaderLibrary = &shaderLibrary{}

// NewShaderLibrary creates a pipeline and texture library on device.
//
// Parameters:
//   - device: the device pipelines and textures are created on
//   - options: functional options to configure the library
//
// Returns:
//   - ShaderLibrary: the library
func NewShaderLibrary(device gpu.Device, options ...ShaderLibraryBuilderOption) ShaderLibrary {
	l := &shaderLibrary{device: device, colorSize: defaultColorTextureSize}
	for _, opt := range options {
		opt(l)
	}
	l.pipelines = cache.New("pipeline", storeOption(l.pipelineStore)...)
	l.colorTextures = cache.New("color texture", storeOption(l.colorStore)...)
	l.imageTextures = cache.New("image texture", storeOption(l.imageStore)...)
	l.cubeTextures = cache.New("cube texture", storeOption(l.cubeStore)...)
	return l
}

// storeOption passes a configured store to cache.New, or nothing for the default store.
func storeOption[K comparable, V any](store cache.Store[K, V]) []cache.CacheBuilderOption[K, V] {
	if store == nil {
		return nil
	}
	return []cache.CacheBuilderOption[K, V]{cache.WithStore(store)}
}

func (l *shaderLibrary) Pipeline(desc gpu.PipelineDescriptor) (gpu.Pipeline, error) {
	desc.Key.Layout = desc.Layout.Key()
	return l.pipelines.GetOrBuild(desc.Key, func() (gpu.Pipeline, error) {
		return l.device.CreateRenderPipeline(desc)
	})
}

func (l *shaderLibrary) Texture(src TextureSource) (gpu.Texture, error) {
	switch s := src.(type) {
	case ColorTexture:
		return l.colorTextures.GetOrBuild(s.Color, func() (gpu.Texture, error) {
			return l.upload(fmt.Sprintf("color %v", s.Color), s)
		})
	case ImageTexture:
		if s.Name == "" {
			return nil, ErrUnnamedTexture
		}
		return l.imageTextures.GetOrBuild(s.Name, func() (gpu.Texture, error) {
			return l.upload(s.Name, s)
		})
	case CubeTexture:
		if s.Name == "" {
			return nil, ErrUnnamedTexture
		}
		return l.cubeTextures.GetOrBuild(s.Name, func() (gpu.Texture, error) {
			return l.upload(s.Name, s)
		})
	default:
		return nil, fmt.Errorf("unsupported texture source %T", src)
	}
}

func (l *shaderLibrary) upload(name string, src TextureSource) (gpu.Texture, error) {
	pixels, err := src.stage(l.colorSize)
	if err != nil {
		return nil, err
	}
	return l.device.CreateTexture(gpu.TextureDescriptor{Label: name, Kind: src.Kind(), Pixels: pixels})
}

func (l *shaderLibrary) Pipelines() int {
	return l.pipelines.Len()
}

func (l *shaderLibrary) Textures() int {
	return l.colorTextures.Len() + l.imageTextures.Len() + l.cubeTextures.Len()
}

func (l *shaderLibrary) Release() {
	l.pipelines.Each(func(p gpu.Pipeline) { p.Release() })
	release := func(t gpu.Texture) { t.Release() }
	l.colorTextures.Each(release)
	l.imageTextures.Each(release)
	l.cubeTextures.Each(release)
}

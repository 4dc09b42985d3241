package library

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/cache"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

// GeometryLibraryBuilderOption is a functional option for configuring a GeometryLibrary.
type GeometryLibraryBuilderOption func(l *geometryLibrary)

// WithMeshStore replaces the unbounded mesh store, e.g. with a size-bounded policy.
//
// Parameters:
//   - store: the mesh storage policy
//
// Returns:
//   - GeometryLibraryBuilderOption: option function to apply
func WithMeshStore(store cache.Store[string, *gpu.Mesh]) GeometryLibraryBuilderOption {
	return func(l *geometryLibrary) {
		l.store = store
	}
}

// WithMeshWorkers sets how many goroutines Prepare generates mesh data on.
// Values of one or less generate on the caller's goroutine. Defaults to one less than the CPU count.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - GeometryLibraryBuilderOption: option function to apply
func WithMeshWorkers(n int) GeometryLibraryBuilderOption {
	return func(l *geometryLibrary) {
		l.workers = n
	}
}

// ShaderLibraryBuilderOption is a functional option for configuring a ShaderLibrary.
type ShaderLibraryBuilderOption func(l *shaderLibrary)

// WithPipelineStore replaces the unbounded pipeline store.
//
// Parameters:
//   - store: the pipeline storage policy
//
// Returns:
//   - ShaderLibraryBuilderOption: option function to apply
func WithPipelineStore(store cache.Store[gpu.PipelineKey, gpu.Pipeline]) ShaderLibraryBuilderOption {
	return func(l *shaderLibrary) {
		l.pipelineStore = store
	}
}

// WithColorTextureStore replaces the unbounded store of synthesized color textures.
//
// Parameters:
//   - store: the color texture storage policy
//
// Returns:
//   - ShaderLibraryBuilderOption: option function to apply
func WithColorTextureStore(store cache.Store[common.Vec4, gpu.Texture]) ShaderLibraryBuilderOption {
	return func(l *shaderLibrary) {
		l.colorStore = store
	}
}

// WithImageTextureStore replaces the unbounded store of image textures.
//
// Parameters:
//   - store: the image texture storage policy, keyed by name
//
// Returns:
//   - ShaderLibraryBuilderOption: option function to apply
func WithImageTextureStore(store cache.Store[string, gpu.Texture]) ShaderLibraryBuilderOption {
	return func(l *shaderLibrary) {
		l.imageStore = store
	}
}

// WithCubeTextureStore replaces the unbounded store of cube textures.
//
// Parameters:
//   - store: the cube texture storage policy, keyed by name
//
// Returns:
//   - ShaderLibraryBuilderOption: option function to apply
func WithCubeTextureStore(store cache.Store[string, gpu.Texture]) ShaderLibraryBuilderOption {
	return func(l *shaderLibrary) {
		l.cubeStore = store
	}
}

// WithColorTextureSize sets the edge length in texels of synthesized color textures.
// Defaults to 8.
//
// Parameters:
//   - size: edge length in texels, at least 1
//
// Returns:
//   - ShaderLibraryBuilderOption: option function to apply
func WithColorTextureSize(size uint32) ShaderLibraryBuilderOption {
	return func(l *shaderLibrary) {
		l.colorSize = max(size, 1)
	}
}

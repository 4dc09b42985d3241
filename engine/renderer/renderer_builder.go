package renderer

import "github.com/Carmen-Shannon/oxy-scene/common"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithClearColor sets the color the clear pass fills the drawable with. Defaults to opaque black.
//
// Parameters:
//   - color: the RGBA clear color, components in [0, 1]
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(color common.Vec4) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = color
	}
}

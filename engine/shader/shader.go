// Package shader describes the built-in surface shaders a geometry command can use.
// A Shader names its vertex and fragment programs and the textures its fragment program samples.
package shader

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/library"
)

// Shader is a closed set of shader descriptions: Standard, UVColored and Skybox.
type Shader interface {
	// Programs returns the vertex and fragment program names.
	//
	// Returns:
	//   - string: the vertex program
	//   - string: the fragment program
	Programs() (vertex, fragment string)

	// Textures returns the sampled textures in binding order.
	//
	// Returns:
	//   - []library.TextureSource: the texture sources
	Textures() []library.TextureSource

	shader()
}

// White is the albedo used when a Standard shader has none.
var White = library.ColorTexture{Color: common.Vec4{1, 1, 1, 1}}

// Standard is a lit surface sampling one albedo texture.
type Standard struct {
	// Albedo is the surface color. Nil means White.
	Albedo library.TextureSource
}

func (Standard) Programs() (string, string) {
	return gpu.ProgramStandardVertex, gpu.ProgramStandardFragment
}

func (s Standard) Textures() []library.TextureSource {
	if s.Albedo == nil {
		return []library.TextureSource{White}
	}
	return []library.TextureSource{s.Albedo}
}

func (Standard) shader() {}

// Color is shorthand for a Standard shader with a flat albedo.
func Color(c common.Vec4) Standard {
	return Standard{Albedo: library.ColorTexture{Color: c}}
}

// UVColored is an unlit debug shader that outputs the texture coordinate as color.
type UVColored struct{}

func (UVColored) Programs() (string, string) {
	return gpu.ProgramStandardVertex, gpu.ProgramUVColoredFragment
}

func (UVColored) Textures() []library.TextureSource { return nil }

func (UVColored) shader() {}

// Skybox draws a cube map behind everything else. Use it on a cube without backface culling.
type Skybox struct {
	Cube library.CubeTexture
}

func (Skybox) Programs() (string, string) {
	return gpu.ProgramSkyboxVertex, gpu.ProgramSkyboxFragment
}

func (s Skybox) Textures() []library.TextureSource {
	return []library.TextureSource{s.Cube}
}

func (Skybox) shader() {}

// Key identifies the programs and texture content of s.
//
// Parameters:
//   - s: the shader
//
// Returns:
//   - string: a key equal for shaders that bind the same programs and textures
func Key(s Shader) string {
	vertex, fragment := s.Programs()
	var sb strings.Builder
	sb.WriteString(vertex)
	sb.WriteByte('.')
	sb.WriteString(fragment)
	for _, t := range s.Textures() {
		sb.WriteByte('|')
		sb.WriteString(t.Key())
	}
	return sb.String()
}

// Descriptor builds the pipeline descriptor for drawing a mesh with s.
//
// Parameters:
//   - s: the shader
//   - layout: the mesh vertex layout
//   - cullBack: whether back faces are culled
//
// Returns:
//   - gpu.PipelineDescriptor: the descriptor, with the key's layout filled in
func Descriptor(s Shader, layout gpu.VertexLayout, cullBack bool) gpu.PipelineDescriptor {
	vertex, fragment := s.Programs()
	textures := s.Textures()
	kinds := make([]gpu.TextureKind, len(textures))
	for i, t := range textures {
		kinds[i] = t.Kind()
	}
	return gpu.PipelineDescriptor{
		Key: gpu.PipelineKey{
			Vertex:   vertex,
			Fragment: fragment,
			Layout:   layout.Key(),
			CullBack: cullBack,
		},
		Layout:   layout,
		Textures: kinds,
	}
}

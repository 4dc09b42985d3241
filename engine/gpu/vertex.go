package gpu

import (
	"fmt"
	"strings"
)

// VertexFormat is the type of one vertex attribute.
type VertexFormat uint8

const (
	VertexFormatFloat32x2 VertexFormat = iota
	VertexFormatFloat32x3
	VertexFormatFloat32x4
)

// Size returns the attribute size in bytes.
func (f VertexFormat) Size() uint64 {
	switch f {
	case VertexFormatFloat32x2:
		return 8
	case VertexFormatFloat32x3:
		return 12
	default:
		return 16
	}
}

func (f VertexFormat) String() string {
	switch f {
	case VertexFormatFloat32x2:
		return "f32x2"
	case VertexFormatFloat32x3:
		return "f32x3"
	default:
		return "f32x4"
	}
}

// VertexAttribute places one attribute inside an interleaved vertex.
type VertexAttribute struct {
	Format   VertexFormat
	Offset   uint64
	Location uint32
}

// VertexLayout describes one interleaved vertex buffer.
type VertexLayout struct {
	Stride     uint64
	Attributes []VertexAttribute
}

// Key returns a string that identifies the layout for pipeline caching.
func (l VertexLayout) Key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", l.Stride)
	for _, a := range l.Attributes {
		fmt.Fprintf(&sb, "|%d:%s@%d", a.Location, a.Format, a.Offset)
	}
	return sb.String()
}

// StandardVertexStride is the byte size of one position/normal/uv vertex.
const StandardVertexStride = 32

// StandardVertexLayout is position (location 0), normal (1) and uv (2), interleaved.
func StandardVertexLayout() VertexLayout {
	return VertexLayout{
		Stride: StandardVertexStride,
		Attributes: []VertexAttribute{
			{Format: VertexFormatFloat32x3, Offset: 0, Location: 0},
			{Format: VertexFormatFloat32x3, Offset: 12, Location: 1},
			{Format: VertexFormatFloat32x2, Offset: 24, Location: 2},
		},
	}
}

// PipelineKey identifies a compiled pipeline.
type PipelineKey struct {
	Vertex   string
	Fragment string
	Layout   string
	CullBack bool
}

func (k PipelineKey) String() string {
	cull := "none"
	if k.CullBack {
		cull = "back"
	}
	return k.Vertex + "." + k.Fragment + "." + k.Layout + "." + cull
}

// Submesh is one indexed range of a mesh. Indices are uint32.
type Submesh struct {
	IndexBuffer Buffer
	IndexCount  uint32
	FirstIndex  uint32
}

// Mesh is a device-resident mesh: vertex buffers plus indexed sub-meshes.
type Mesh struct {
	Key           string
	Layout        VertexLayout
	VertexBuffers []Buffer
	Submeshes     []Submesh
}

// Release frees every buffer the mesh owns.
func (m *Mesh) Release() {
	for _, b := range m.VertexBuffers {
		b.Release()
	}
	seen := make(map[Buffer]bool, len(m.Submeshes))
	for _, s := range m.Submeshes {
		if s.IndexBuffer != nil && !seen[s.IndexBuffer] {
			seen[s.IndexBuffer] = true
			s.IndexBuffer.Release()
		}
	}
}

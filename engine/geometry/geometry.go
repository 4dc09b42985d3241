// Package geometry describes procedural meshes by content key. The mesh library uploads a
// geometry once per key, no matter how many commands reference it.
package geometry

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

// Geometry produces CPU-side mesh data identified by a content-derived key.
// Two geometries with equal keys must produce identical data.
type Geometry interface {
	// CacheKey identifies the mesh content.
	//
	// Returns:
	//   - string: the cache key, e.g. "cube:1"
	CacheKey() string

	// MeshData generates the vertices and indices of the geometry.
	//
	// Returns:
	//   - MeshData: the generated mesh
	//   - error: error if the parameters cannot produce a mesh
	MeshData() (MeshData, error)
}

// Vertex is the GPU layout of one standard vertex. Matches gpu.StandardVertexLayout.
// Size: 32 bytes.
type Vertex struct {
	Position [3]float32 // offset  0: model-space position
	Normal   [3]float32 // offset 12: unit normal
	UV       [2]float32 // offset 24: texture coordinate, origin top-left
}

// Size returns the size of the Vertex struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (v *Vertex) Size() int { return gpu.StandardVertexStride }

// Marshal serializes the Vertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, v.Size())
	v.put(buf)
	return buf
}

func (v *Vertex) put(buf []byte) {
	fields := [8]float32{
		v.Position[0], v.Position[1], v.Position[2],
		v.Normal[0], v.Normal[1], v.Normal[2],
		v.UV[0], v.UV[1],
	}
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}

// MeshData is a mesh before upload: one interleaved vertex stream and one index list per sub-mesh.
type MeshData struct {
	Vertices  []Vertex
	Submeshes [][]uint32
}

// VertexBytes packs every vertex for upload.
func (m MeshData) VertexBytes() []byte {
	buf := make([]byte, len(m.Vertices)*gpu.StandardVertexStride)
	for i := range m.Vertices {
		m.Vertices[i].put(buf[i*gpu.StandardVertexStride:])
	}
	return buf
}

// IndexBytes packs the indices of sub-mesh i as little-endian uint32.
func (m MeshData) IndexBytes(i int) []byte {
	idx := m.Submeshes[i]
	buf := make([]byte, len(idx)*4)
	for j, v := range idx {
		binary.LittleEndian.PutUint32(buf[j*4:], v)
	}
	return buf
}

// Validate checks that the mesh has vertices, indices and no out-of-range index.
func (m MeshData) Validate() error {
	if len(m.Vertices) == 0 {
		return fmt.Errorf("mesh has no vertices")
	}
	if len(m.Submeshes) == 0 {
		return fmt.Errorf("mesh has no submeshes")
	}
	for i, sub := range m.Submeshes {
		if len(sub) == 0 || len(sub)%3 != 0 {
			return fmt.Errorf("submesh %d has %d indices, want a non-zero multiple of 3", i, len(sub))
		}
		for _, idx := range sub {
			if int(idx) >= len(m.Vertices) {
				return fmt.Errorf("submesh %d index %d out of range (%d vertices)", i, idx, len(m.Vertices))
			}
		}
	}
	return nil
}

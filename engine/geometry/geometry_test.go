package geometry

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faceNormal returns the geometric normal of triangle i in sub-mesh 0.
func faceNormal(m MeshData, i int) common.Vec3 {
	idx := m.Submeshes[0][i*3 : i*3+3]
	a := common.Vec3(m.Vertices[idx[0]].Position)
	b := common.Vec3(m.Vertices[idx[1]].Position)
	c := common.Vec3(m.Vertices[idx[2]].Position)
	return b.Sub(a).Cross(c.Sub(a))
}

func assertOutwardWinding(t *testing.T, m MeshData) {
	t.Helper()
	for i := range len(m.Submeshes[0]) / 3 {
		idx := m.Submeshes[0][i*3]
		n := common.Vec3(m.Vertices[idx].Normal)
		assert.Greater(t, faceNormal(m, i).Dot(n), float32(0), "triangle %d winds inward", i)
	}
}

func TestCube(t *testing.T) {
	m, err := Cube{Size: 2}.MeshData()
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	assert.Len(t, m.Vertices, 24)
	assert.Len(t, m.Submeshes[0], 36)
	for _, v := range m.Vertices {
		for _, c := range v.Position {
			assert.InDelta(t, 1, c*c, 1e-6)
		}
	}
	assertOutwardWinding(t, m)
}

func TestCacheKeysNormalizeDefaults(t *testing.T) {
	assert.Equal(t, Cube{}.CacheKey(), Cube{Size: 1}.CacheKey())
	assert.NotEqual(t, Cube{Size: 1}.CacheKey(), Cube{Size: 2}.CacheKey())
	assert.Equal(t, Octahedron{}.CacheKey(), Octahedron{Divisions: 1}.CacheKey())
	assert.Equal(t, "plane:1x1", Plane{}.CacheKey())
}

func TestOctahedron(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		m, err := Octahedron{Divisions: n}.MeshData()
		require.NoError(t, err)
		require.NoError(t, m.Validate())

		assert.Len(t, m.Submeshes[0], 8*n*n*3)
		for _, v := range m.Vertices {
			assert.InDelta(t, 1, common.Vec3(v.Position).Length(), 1e-5)
		}
		assertOutwardWinding(t, m)
	}

	_, err := Octahedron{Divisions: maxOctahedronDivisions + 1}.MeshData()
	assert.Error(t, err)
}

func TestPlane(t *testing.T) {
	m, err := Plane{Width: 4, Depth: 2}.MeshData()
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assertOutwardWinding(t, m)
	for _, v := range m.Vertices {
		assert.Equal(t, [3]float32{0, 1, 0}, v.Normal)
	}

	_, err = Plane{Width: -1}.MeshData()
	assert.Error(t, err)
}

func TestPacking(t *testing.T) {
	m, err := Cube{}.MeshData()
	require.NoError(t, err)
	assert.Len(t, m.VertexBytes(), 24*32)
	assert.Len(t, m.IndexBytes(0), 36*4)

	v := Vertex{Position: [3]float32{1, 0, 0}}
	buf := v.Marshal()
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, buf[0:4])
}

func TestValidate(t *testing.T) {
	assert.Error(t, MeshData{}.Validate())
	assert.Error(t, MeshData{Vertices: []Vertex{{}}, Submeshes: [][]uint32{{0, 0}}}.Validate())
	assert.Error(t, MeshData{Vertices: []Vertex{{}}, Submeshes: [][]uint32{{0, 0, 1}}}.Validate())
}

package geometry

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/chewxy/math32"
)

// quad appends a square face centered at center, spanned by u and v, facing u x v.
// Faces wind counter-clockwise seen from the front.
func quad(m *MeshData, center, u, v, normal common.Vec3) {
	base := uint32(len(m.Vertices))
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	for i, c := range corners {
		p := center.Add(u.Scale(c[0])).Add(v.Scale(c[1]))
		m.Vertices = append(m.Vertices, Vertex{Position: p, Normal: normal, UV: uvs[i]})
	}
	m.Submeshes[0] = append(m.Submeshes[0], base, base+1, base+2, base, base+2, base+3)
}

// Cube is an axis-aligned cube centered on the origin.
type Cube struct {
	// Size is the edge length. Zero means 1.
	Size float32
}

func (c Cube) size() float32 {
	if c.Size <= 0 {
		return 1
	}
	return c.Size
}

func (c Cube) CacheKey() string {
	return fmt.Sprintf("cube:%g", c.size())
}

func (c Cube) MeshData() (MeshData, error) {
	h := c.size() / 2
	faces := [6][3]common.Vec3{
		{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
		{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
		{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
		{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	}
	m := MeshData{Submeshes: make([][]uint32, 1)}
	for _, f := range faces {
		quad(&m, f[0].Scale(h), f[1].Scale(h), f[2].Scale(h), f[0])
	}
	return m, nil
}

// Plane is a flat rectangle in the XZ plane facing +Y.
type Plane struct {
	// Width is the extent along X. Zero means 1.
	Width float32
	// Depth is the extent along Z. Zero means 1.
	Depth float32
}

func (p Plane) CacheKey() string {
	return fmt.Sprintf("plane:%gx%g", common.Coalesce(p.Width, 1), common.Coalesce(p.Depth, 1))
}

func (p Plane) MeshData() (MeshData, error) {
	w, d := common.Coalesce(p.Width, 1), common.Coalesce(p.Depth, 1)
	if w < 0 || d < 0 {
		return MeshData{}, fmt.Errorf("plane extents must be positive, got %gx%g", w, d)
	}
	m := MeshData{Submeshes: make([][]uint32, 1)}
	quad(&m, common.Vec3{}, common.Right.Scale(w/2), common.Forward.Scale(d/2), common.Up)
	return m, nil
}

// Octahedron is a unit sphere approximated by subdividing each octahedron face
// Divisions times along each edge and projecting the vertices onto the sphere.
type Octahedron struct {
	// Divisions is the number of segments per face edge. Zero means 1 (a plain octahedron).
	Divisions int
}

// maxOctahedronDivisions keeps the vertex count well inside uint32 indices.
const maxOctahedronDivisions = 256

func (o Octahedron) divisions() int {
	return max(o.Divisions, 1)
}

func (o Octahedron) CacheKey() string {
	return fmt.Sprintf("octahedron:%d", o.divisions())
}

func (o Octahedron) MeshData() (MeshData, error) {
	n := o.divisions()
	if n > maxOctahedronDivisions {
		return MeshData{}, fmt.Errorf("octahedron divisions %d exceed %d", n, maxOctahedronDivisions)
	}
	m := MeshData{Submeshes: make([][]uint32, 1)}
	for _, sx := range [2]float32{1, -1} {
		for _, sy := range [2]float32{1, -1} {
			for _, sz := range [2]float32{1, -1} {
				x, y, z := common.Vec3{sx, 0, 0}, common.Vec3{0, sy, 0}, common.Vec3{0, 0, sz}
				if sx*sy*sz > 0 {
					subdivide(&m, y, z, x, n)
				} else {
					subdivide(&m, y, x, z, n)
				}
			}
		}
	}
	return m, nil
}

// subdivide splits triangle abc into n*n triangles projected onto the unit sphere,
// keeping the winding of abc.
func subdivide(m *MeshData, a, b, c common.Vec3, n int) {
	ab := b.Sub(a).Scale(1 / float32(n))
	ac := c.Sub(a).Scale(1 / float32(n))

	// rows[i][j] is the vertex index at a + i*ab + j*ac.
	rows := make([][]uint32, n+1)
	for i := 0; i <= n; i++ {
		rows[i] = make([]uint32, n+1-i)
		for j := 0; j <= n-i; j++ {
			p := a.Add(ab.Scale(float32(i))).Add(ac.Scale(float32(j))).Normalize()
			rows[i][j] = uint32(len(m.Vertices))
			m.Vertices = append(m.Vertices, Vertex{Position: p, Normal: p, UV: sphereUV(p)})
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n-i; j++ {
			m.Submeshes[0] = append(m.Submeshes[0], rows[i][j], rows[i+1][j], rows[i][j+1])
			if j < n-i-1 {
				m.Submeshes[0] = append(m.Submeshes[0], rows[i+1][j], rows[i+1][j+1], rows[i][j+1])
			}
		}
	}
}

func sphereUV(p common.Vec3) [2]float32 {
	u := 0.5 + math32.Atan2(p[0], p[2])/(2*math32.Pi)
	v := 0.5 - math32.Asin(common.Clamp(p[1], -1, 1))/math32.Pi
	return [2]float32{u, v}
}

package common

import "github.com/chewxy/math32"

// Vec3 is a three component float32 vector.
type Vec3 [3]float32

// Vec4 is a four component float32 vector, used for colors and homogeneous positions.
type Vec4 [4]float32

// Quat is a rotation quaternion stored as (x, y, z, w).
type Quat [4]float32

// Unit axes in a right-handed, Y-up coordinate system. Cameras look down Forward.
var (
	Right   = Vec3{1, 0, 0}
	Up      = Vec3{0, 1, 0}
	Back    = Vec3{0, 0, 1}
	Forward = Vec3{0, 0, -1}
)

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }

func (v Vec3) Scale(s float32) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }

// Mul multiplies v by o component-wise.
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v[0] * o[0], v[1] * o[1], v[2] * o[2]} }

func (v Vec3) Dot(o Vec3) float32 { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

func (v Vec3) Length() float32 { return math32.Sqrt(v.Dot(v)) }

// Abs returns the component-wise absolute value of v.
func (v Vec3) Abs() Vec3 { return Vec3{math32.Abs(v[0]), math32.Abs(v[1]), math32.Abs(v[2])} }

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Lerp linearly interpolates from v to o by t.
func (v Vec3) Lerp(o Vec3, t float32) Vec3 {
	return Vec3{
		v[0] + (o[0]-v[0])*t,
		v[1] + (o[1]-v[1])*t,
		v[2] + (o[2]-v[2])*t,
	}
}

// Vec4 extends v with the given w component.
func (v Vec3) Vec4(w float32) Vec4 { return Vec4{v[0], v[1], v[2], w} }

// XYZ drops the w component.
func (v Vec4) XYZ() Vec3 { return Vec3{v[0], v[1], v[2]} }

// Lerp linearly interpolates from v to o by t.
func (v Vec4) Lerp(o Vec4, t float32) Vec4 {
	return Vec4{
		v[0] + (o[0]-v[0])*t,
		v[1] + (o[1]-v[1])*t,
		v[2] + (o[2]-v[2])*t,
		v[3] + (o[3]-v[3])*t,
	}
}

// QuatIdentity returns the rotation that leaves vectors unchanged.
func QuatIdentity() Quat { return Quat{0, 0, 0, 1} }

// QuatFromAxisAngle builds a rotation of angle radians around axis.
//
// Parameters:
//   - axis: rotation axis, normalized internally
//   - angle: rotation angle in radians
//
// Returns:
//   - Quat: the unit quaternion for the rotation
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	a := axis.Normalize()
	s := math32.Sin(angle / 2)
	return Quat{a[0] * s, a[1] * s, a[2] * s, math32.Cos(angle / 2)}
}

func (q Quat) Dot(o Quat) float32 { return q[0]*o[0] + q[1]*o[1] + q[2]*o[2] + q[3]*o[3] }

// Normalize returns q scaled to unit length. A zero quaternion becomes the identity.
func (q Quat) Normalize() Quat {
	l := math32.Sqrt(q.Dot(q))
	if l == 0 {
		return QuatIdentity()
	}
	return Quat{q[0] / l, q[1] / l, q[2] / l, q[3] / l}
}

// Mul composes two rotations; the result applies o first, then q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		q[3]*o[0] + q[0]*o[3] + q[1]*o[2] - q[2]*o[1],
		q[3]*o[1] - q[0]*o[2] + q[1]*o[3] + q[2]*o[0],
		q[3]*o[2] + q[0]*o[1] - q[1]*o[0] + q[2]*o[3],
		q[3]*o[3] - q[0]*o[0] - q[1]*o[1] - q[2]*o[2],
	}
}

// Rotate applies the rotation q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q[0], q[1], q[2]}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q[3])).Add(u.Cross(t))
}

// Slerp spherically interpolates from q to o along the shortest arc.
// Nearly parallel inputs fall back to a normalized linear blend.
//
// Parameters:
//   - o: target rotation
//   - t: blend factor, 0 yields q and 1 yields o
//
// Returns:
//   - Quat: the interpolated unit rotation
func (q Quat) Slerp(o Quat, t float32) Quat {
	d := q.Dot(o)
	if d < 0 {
		o = Quat{-o[0], -o[1], -o[2], -o[3]}
		d = -d
	}
	if d > 0.9995 {
		return Quat{
			q[0] + (o[0]-q[0])*t,
			q[1] + (o[1]-q[1])*t,
			q[2] + (o[2]-q[2])*t,
			q[3] + (o[3]-q[3])*t,
		}.Normalize()
	}
	theta := math32.Acos(d)
	sinTheta := math32.Sin(theta)
	wa := math32.Sin((1-t)*theta) / sinTheta
	wb := math32.Sin(t*theta) / sinTheta
	return Quat{
		q[0]*wa + o[0]*wb,
		q[1]*wa + o[1]*wb,
		q[2]*wa + o[2]*wb,
		q[3]*wa + o[3]*wb,
	}
}

// Transform is a translation, rotation and scale applied in scale, rotate, translate order.
type Transform struct {
	Translation Vec3
	Rotation    Quat
	Scale       Vec3
}

// IdentityTransform returns the transform that leaves points unchanged.
func IdentityTransform() Transform {
	return Transform{Rotation: QuatIdentity(), Scale: Vec3{1, 1, 1}}
}

// OrIdentity returns t with a zero rotation replaced by the identity and a zero scale
// replaced by one, so the zero Transform behaves like IdentityTransform.
func (t Transform) OrIdentity() Transform {
	if t.Rotation == (Quat{}) {
		t.Rotation = QuatIdentity()
	}
	if t.Scale == (Vec3{}) {
		t.Scale = Vec3{1, 1, 1}
	}
	return t
}

// Translated returns a copy of t moved by v.
func (t Transform) Translated(v Vec3) Transform {
	t.Translation = t.Translation.Add(v)
	return t
}

// Rotated returns a copy of t with q applied after its current rotation.
func (t Transform) Rotated(q Quat) Transform {
	t.Rotation = q.Mul(t.Rotation).Normalize()
	return t
}

// Scaled returns a copy of t with its scale multiplied by s.
func (t Transform) Scaled(s Vec3) Transform {
	t.Scale = t.Scale.Mul(s)
	return t
}

// Lerp interpolates every component of the transform. Rotation uses Slerp.
func (t Transform) Lerp(o Transform, f float32) Transform {
	return Transform{
		Translation: t.Translation.Lerp(o.Translation, f),
		Rotation:    t.Rotation.Slerp(o.Rotation, f),
		Scale:       t.Scale.Lerp(o.Scale, f),
	}
}

// Matrix returns the column-major model matrix T * R * S.
func (t Transform) Matrix() Mat4 {
	q := t.Rotation
	x, y, z, w := q[0], q[1], q[2], q[3]
	sx, sy, sz := t.Scale[0], t.Scale[1], t.Scale[2]

	return Mat4{
		(1 - 2*(y*y+z*z)) * sx, 2 * (x*y + z*w) * sx, 2 * (x*z - y*w) * sx, 0,
		2 * (x*y - z*w) * sy, (1 - 2*(x*x+z*z)) * sy, 2 * (y*z + x*w) * sy, 0,
		2 * (x*z + y*w) * sz, 2 * (y*z - x*w) * sz, (1 - 2*(x*x+y*y)) * sz, 0,
		t.Translation[0], t.Translation[1], t.Translation[2], 1,
	}
}

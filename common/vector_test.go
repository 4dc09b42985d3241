package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func assertVec3(t *testing.T, want, got Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d", i)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Up, math32.Pi/2)
	assertVec3(t, Vec3{0, 0, -1}, q.Rotate(Right))
	assertVec3(t, Up, q.Rotate(Up))
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle(Up, math32.Pi/4)
	b := QuatFromAxisAngle(Up, math32.Pi/4)
	want := QuatFromAxisAngle(Up, math32.Pi/2)
	assertVec3(t, want.Rotate(Right), a.Mul(b).Rotate(Right))
}

func TestSlerpEndpoints(t *testing.T) {
	a := QuatIdentity()
	b := QuatFromAxisAngle(Right, math32.Pi/2)

	assert.Equal(t, a, a.Slerp(b, 0))
	for i, v := range a.Slerp(b, 1) {
		assert.InDelta(t, b[i], v, 1e-5)
	}

	half := a.Slerp(b, 0.5)
	want := QuatFromAxisAngle(Right, math32.Pi/4)
	for i, v := range half {
		assert.InDelta(t, want[i], v, 1e-5)
	}
}

func TestSlerpTakesShortestArc(t *testing.T) {
	a := QuatIdentity()
	b := QuatFromAxisAngle(Up, math32.Pi/2)
	neg := Quat{-b[0], -b[1], -b[2], -b[3]}

	// q and -q are the same rotation; the midpoint must not swing the long way round.
	assertVec3(t, a.Slerp(b, 0.5).Rotate(Right), a.Slerp(neg, 0.5).Rotate(Right))
}

func TestTransformMatrix(t *testing.T) {
	tr := IdentityTransform().
		Scaled(Vec3{2, 2, 2}).
		Rotated(QuatFromAxisAngle(Up, math32.Pi/2)).
		Translated(Vec3{1, 2, 3})

	// (1,0,0) scaled to (2,0,0), rotated to (0,0,-2), translated to (1,2,1).
	assertVec3(t, Vec3{1, 2, 1}, tr.Matrix().MulPoint(Right))
}

func TestTransformLerp(t *testing.T) {
	a := IdentityTransform()
	b := IdentityTransform().Translated(Vec3{10, 0, 0}).Scaled(Vec3{3, 3, 3})

	mid := a.Lerp(b, 0.5)
	assertVec3(t, Vec3{5, 0, 0}, mid.Translation)
	assertVec3(t, Vec3{2, 2, 2}, mid.Scale)
}

func TestVec3Normalize(t *testing.T) {
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
	assert.InDelta(t, 1, Vec3{3, 4, 0}.Normalize().Length(), 1e-6)
}

func TestTransformOrIdentity(t *testing.T) {
	assert.Equal(t, IdentityTransform(), Transform{}.OrIdentity())

	moved := Transform{Translation: Vec3{1, 2, 3}, Scale: Vec3{2, 2, 2}}.OrIdentity()
	assert.Equal(t, QuatIdentity(), moved.Rotation)
	assert.Equal(t, Vec3{2, 2, 2}, moved.Scale)
}

// Package command defines the draw commands a scene flattens to each update tick and the
// storage that persists per command id across frames.
//
// The set of command kinds is closed: PlaceCamera, PlaceLight and RenderGeometry.
package command

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/Carmen-Shannon/oxy-scene/engine/geometry"
	"github.com/Carmen-Shannon/oxy-scene/engine/shader"
)

// Kind tags the concrete type of a Command.
type Kind uint8

const (
	KindCamera Kind = iota
	KindLight
	KindGeometry
)

func (k Kind) String() string {
	switch k {
	case KindCamera:
		return "camera"
	case KindLight:
		return "light"
	case KindGeometry:
		return "geometry"
	default:
		return "unknown"
	}
}

// Meta is the state shared by every command.
type Meta struct {
	// ID identifies the command across frames. It must be unique within a frame.
	ID string
	// Transform places the command in world space. The zero Transform is the identity.
	Transform common.Transform
	// Animations transition attributes toward their current values, in declaration order.
	Animations []animation.Animation
}

// Info returns the shared command state.
func (m *Meta) Info() *Meta { return m }

// transform returns the command transform with zero rotation and scale treated as identity.
func (m *Meta) transform() common.Transform { return m.Transform.OrIdentity() }

// Command is one instruction of a frame.
type Command interface {
	// Kind returns the command's variant tag.
	//
	// Returns:
	//   - Kind: the command kind
	Kind() Kind

	// Info returns the id, transform and animations of the command.
	//
	// Returns:
	//   - *Meta: the shared command state
	Info() *Meta

	// NeedsRender reports whether the command issues draw calls. Cameras and lights only
	// contribute frame uniforms.
	//
	// Returns:
	//   - bool: true if the command draws
	NeedsRender() bool

	command()
}

// PlaceCamera sets the frame's view and projection. The camera sits at the transform's
// translation and looks down its rotated Forward axis. Only the first camera in a frame is used.
type PlaceCamera struct {
	Meta
	// FOV is the vertical field of view in radians. Zero means 60 degrees.
	FOV float32
	// Near is the near clip distance. Zero means 0.1.
	Near float32
	// Far is the far clip distance. Zero means 1000.
	Far float32
}

func (*PlaceCamera) Kind() Kind        { return KindCamera }
func (*PlaceCamera) NeedsRender() bool { return false }
func (*PlaceCamera) command()          {}

// LightType selects how a light is evaluated. The values are the codes shaders read.
type LightType uint8

const (
	LightAmbient     LightType = 1
	LightDirectional LightType = 2
	LightPoint       LightType = 3
)

func (t LightType) String() string {
	switch t {
	case LightAmbient:
		return "ambient"
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	default:
		return "unknown"
	}
}

// PlaceLight adds a light to the frame. A directional light shines along its rotated Back
// axis; a point light sits at its translation.
type PlaceLight struct {
	Meta
	Type LightType
	// Color is the light color in rgb and its intensity in a.
	Color common.Vec4
}

func (*PlaceLight) Kind() Kind        { return KindLight }
func (*PlaceLight) NeedsRender() bool { return false }
func (*PlaceLight) command()          {}

// RenderGeometry draws a geometry with a shader.
type RenderGeometry struct {
	Meta
	Geometry geometry.Geometry
	// Shader is the surface shader. Nil means a white shader.Standard.
	Shader shader.Shader
	// CullBackfaces discards triangles facing away from the camera.
	CullBackfaces bool
}

func (*RenderGeometry) Kind() Kind        { return KindGeometry }
func (*RenderGeometry) NeedsRender() bool { return true }
func (*RenderGeometry) command()          {}

func (g *RenderGeometry) shader() shader.Shader {
	if g.Shader == nil {
		return shader.Standard{}
	}
	return g.Shader
}

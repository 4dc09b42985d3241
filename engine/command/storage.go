package command

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/library"
)

// BuildContext gives storages access to the device and resource libraries of one surface.
type BuildContext struct {
	Device   gpu.Device
	Geometry library.GeometryLibrary
	Shaders  library.ShaderLibrary
	// SurfaceAspect is width / height of the surface when the content was set.
	SurfaceAspect float32
}

// Storage is the persistent state of one command id. The scene carries the same Storage
// instance forward every frame the id persists and releases it when the id disappears.
type Storage interface {
	// Kind returns the command kind this storage serves.
	//
	// Returns:
	//   - Kind: the command kind
	Kind() Kind

	// Build prepares the storage for cmd. When retained is true the storage already served
	// the same id last frame and keeps any resource whose key did not change.
	// A failed Build leaves the storage as it was.
	//
	// Parameters:
	//   - ctx: device and libraries
	//   - cmd: the command, of the storage's kind
	//   - retained: whether the storage is carried over from the previous frame
	//
	// Returns:
	//   - error: the library error if a resource could not be built
	Build(ctx *BuildContext, cmd Command, retained bool) error

	// Snapshot captures the built state so a scene can undo a Build when a later command
	// of the same update fails. Resources referenced by the snapshot stay owned by the storage.
	//
	// Returns:
	//   - func(): restores the captured state
	Snapshot() func()

	// Update resolves the command's animated attributes at presentation time t.
	//
	// Parameters:
	//   - t: presentation time in seconds
	//   - cmd: the command, of the storage's kind
	Update(t float64, cmd Command)

	// Render encodes the draws of the storage into an open pass whose frame uniforms
	// are already bound.
	//
	// Parameters:
	//   - enc: the encoding scope
	//
	// Returns:
	//   - error: error if a uniform upload or draw failed
	Render(enc gpu.Encoder) error

	// Release frees resources the storage owns. Cached resources stay in their library.
	Release()
}

// CameraState is implemented by camera storages.
type CameraState interface {
	// Camera returns the view/projection uniform and world position of the camera.
	//
	// Parameters:
	//   - aspect: width / height of the drawable, or zero to use the build-time aspect
	//
	// Returns:
	//   - gpu.ViewProjection: the camera uniform
	//   - common.Vec3: the camera position
	Camera(aspect float32) (gpu.ViewProjection, common.Vec3)
}

// LightState is implemented by light storages.
type LightState interface {
	// Light returns the resolved light uniform.
	//
	// Returns:
	//   - gpu.Light: the light
	Light() gpu.Light
}

// GeometryState is implemented by geometry storages.
type GeometryState interface {
	// Mesh returns the resolved mesh, shared through the geometry library.
	Mesh() *gpu.Mesh
	// Pipeline returns the resolved pipeline, shared through the shader library.
	Pipeline() gpu.Pipeline
}

// NewStorage allocates an empty storage for a command kind.
//
// Parameters:
//   - kind: the command kind
//
// Returns:
//   - Storage: the new storage
//   - error: error for an unknown kind
func NewStorage(kind Kind) (Storage, error) {
	switch kind {
	case KindCamera:
		return &cameraStorage{}, nil
	case KindLight:
		return &lightStorage{}, nil
	case KindGeometry:
		return &geometryStorage{}, nil
	default:
		return nil, fmt.Errorf("unknown command kind %d", kind)
	}
}

func mismatch(want Kind, cmd Command) error {
	return fmt.Errorf("%s storage cannot serve %s command %q", want, cmd.Kind(), cmd.Info().ID)
}

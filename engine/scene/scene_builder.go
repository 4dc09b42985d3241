package scene

import "github.com/Carmen-Shannon/oxy-scene/engine/library"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithSkipBuildFailures drops commands whose storage fails to build instead of failing the
// whole content update. Skipped commands are logged at warn level.
//
// Parameters:
//   - skip: true to skip failing commands, false to fail the update (default)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSkipBuildFailures(skip bool) SceneBuilderOption {
	return func(s *scene) {
		s.skipFailures = skip
	}
}

// WithGeometryLibrary supplies the mesh library. The scene takes ownership and releases it.
//
// Parameters:
//   - lib: the geometry library
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithGeometryLibrary(lib library.GeometryLibrary) SceneBuilderOption {
	return func(s *scene) {
		s.ctx.Geometry = lib
	}
}

// WithShaderLibrary supplies the pipeline and texture library. The scene takes ownership
// and releases it.
//
// Parameters:
//   - lib: the shader library
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShaderLibrary(lib library.ShaderLibrary) SceneBuilderOption {
	return func(s *scene) {
		s.ctx.Shaders = lib
	}
}

package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/cache"
	"github.com/Carmen-Shannon/oxy-scene/engine/command"
	"github.com/Carmen-Shannon/oxy-scene/engine/geometry"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-scene/engine/library"
	"github.com/Carmen-Shannon/oxy-scene/engine/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(id string, g geometry.Geometry) *command.RenderGeometry {
	return &command.RenderGeometry{Meta: command.Meta{ID: id}, Geometry: g}
}

func light(id string) *command.PlaceLight {
	return &command.PlaceLight{Meta: command.Meta{ID: id}, Type: command.LightAmbient, Color: common.Vec4{1, 1, 1, 1}}
}

func ids(s Scene) []string {
	var out []string
	for _, p := range s.Pairs() {
		out = append(out, p.Command.Info().ID)
	}
	return out
}

func TestIdentityRetention(t *testing.T) {
	dev := gputest.NewDevice(8, 8)
	s := NewScene(dev)

	require.NoError(t, s.SetContent(Commands(box("a", geometry.Cube{})), 1))
	first, ok := s.Storage("a")
	require.True(t, ok)
	mesh := first.(command.GeometryState).Mesh()
	pipeline := first.(command.GeometryState).Pipeline()
	calls := len(dev.Log)

	moved := box("a", geometry.Cube{})
	moved.Transform = common.IdentityTransform().Translated(common.Vec3{0, 3, 0})
	require.NoError(t, s.SetContent(Commands(moved), 1))
	second, ok := s.Storage("a")
	require.True(t, ok)

	assert.Same(t, first, second)
	assert.Same(t, mesh, second.(command.GeometryState).Mesh())
	assert.Same(t, pipeline, second.(command.GeometryState).Pipeline())
	assert.Len(t, dev.Log, calls)
	assert.Same(t, moved, s.Pairs()[0].Command)
}

func TestStorageDisposal(t *testing.T) {
	dev := gputest.NewDevice(8, 8)
	s := NewScene(dev)

	require.NoError(t, s.SetContent(Commands(box("a", geometry.Cube{}), box("b", geometry.Cube{})), 1))
	gone, _ := s.Storage("b")

	require.NoError(t, s.SetContent(Commands(box("a", geometry.Cube{})), 1))
	assert.Equal(t, []string{"a"}, ids(s))
	_, ok := s.Storage("b")
	assert.False(t, ok)
	for _, p := range s.Pairs() {
		assert.NotSame(t, gone, p.Storage)
	}

	var released int
	for _, b := range dev.Buffers {
		if b.Label == "b model" && b.Released {
			released++
		}
	}
	assert.Equal(t, 1, released)

	// The id coming back gets fresh storage.
	require.NoError(t, s.SetContent(Commands(box("a", geometry.Cube{}), box("b", geometry.Cube{})), 1))
	back, _ := s.Storage("b")
	assert.NotSame(t, gone, back)
}

func TestDuplicateIDDetectedBeforeBuild(t *testing.T) {
	dev := gputest.NewDevice(8, 8)
	s := NewScene(dev)
	require.NoError(t, s.SetContent(Commands(light("keep")), 1))

	err := s.SetContent(Group(Commands(box("x", geometry.Cube{})), Commands(light("y"), box("x", geometry.Plane{}))), 1)
	var dup *DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "x", dup.ID)
	assert.Equal(t, 0, dup.First)
	assert.Equal(t, 2, dup.Second)

	assert.Empty(t, dev.Log, "no build may run for an ambiguous frame")
	assert.Equal(t, []string{"keep"}, ids(s))
}

func TestCacheDeduplication(t *testing.T) {
	dev := gputest.NewDevice(8, 8)
	s := NewScene(dev)

	require.NoError(t, s.SetContent(Commands(box("a", geometry.Octahedron{Divisions: 3}), box("b", geometry.Octahedron{Divisions: 3})), 1))
	a, _ := s.Storage("a")
	b, _ := s.Storage("b")

	assert.Same(t, a.(command.GeometryState).Mesh(), b.(command.GeometryState).Mesh())
	assert.Equal(t, 1, s.GeometryLibrary().Meshes())
	assert.Equal(t, 1, dev.CountLog("CreateBuffer(octahedron:3 vertices)"))
	assert.Equal(t, 1, s.ShaderLibrary().Pipelines())
}

func TestKindChangeGetsFreshStorage(t *testing.T) {
	s := NewScene(gputest.NewDevice(8, 8))

	require.NoError(t, s.SetContent(Commands(light("x")), 1))
	old, _ := s.Storage("x")

	require.NoError(t, s.SetContent(Commands(box("x", geometry.Cube{})), 1))
	cur, _ := s.Storage("x")
	assert.NotSame(t, old, cur)
	assert.Equal(t, command.KindGeometry, cur.Kind())
}

func badTexture(id string) *command.RenderGeometry {
	cmd := box(id, geometry.Cube{})
	cmd.Shader = shader.Standard{Albedo: library.ImageTexture{Name: "corrupt", Data: []byte("??")}}
	return cmd
}

func TestBuildFailureKeepsPreviousFrame(t *testing.T) {
	dev := gputest.NewDevice(8, 8)
	s := NewScene(dev)
	require.NoError(t, s.SetContent(Commands(light("sun")), 1))

	err := s.SetContent(Commands(light("sun"), box("ok", geometry.Cube{}), badTexture("bad")), 1)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "bad", be.ID)
	var ce *cache.BuildError
	assert.ErrorAs(t, err, &ce)

	assert.Equal(t, []string{"sun"}, ids(s))
	for _, b := range dev.Buffers {
		if b.Label == "ok model" {
			assert.True(t, b.Released, "fresh storage of an aborted update must be released")
		}
	}
}

func TestBuildFailureRestoresRetainedStorage(t *testing.T) {
	dev := gputest.NewDevice(8, 8)
	s := NewScene(dev)

	first := box("a", geometry.Cube{})
	require.NoError(t, s.SetContent(Commands(first), 1))
	st, ok := s.Storage("a")
	require.True(t, ok)
	mesh := st.(command.GeometryState).Mesh()
	pipeline := st.(command.GeometryState).Pipeline()

	changed := box("a", geometry.Plane{})
	changed.CullBackfaces = true
	err := s.SetContent(Commands(changed, badTexture("bad")), 1)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "bad", be.ID)

	require.Len(t, s.Pairs(), 1)
	assert.Same(t, first, s.Pairs()[0].Command)
	assert.Same(t, st, s.Pairs()[0].Storage)
	assert.Same(t, mesh, st.(command.GeometryState).Mesh())
	assert.Same(t, pipeline, st.(command.GeometryState).Pipeline())
	assert.False(t, st.(command.GeometryState).Pipeline().Key().CullBack)
}

func TestSkipBuildFailures(t *testing.T) {
	s := NewScene(gputest.NewDevice(8, 8), WithSkipBuildFailures(true))

	require.NoError(t, s.SetContent(Commands(box("a", geometry.Cube{}), badTexture("bad"), light("sun")), 1))
	assert.Equal(t, []string{"a", "sun"}, ids(s))
}

func TestUpdateResolvesEveryPair(t *testing.T) {
	s := NewScene(gputest.NewDevice(8, 8))
	require.NoError(t, s.SetContent(Commands(light("l")), 1))

	next := light("l")
	next.Color = common.Vec4{0, 0, 0, 0}
	require.NoError(t, s.SetContent(Commands(next), 1))
	s.Update(5)

	st, _ := s.Storage("l")
	assert.Equal(t, [4]float32{0, 0, 0, 0}, st.(command.LightState).Light().Color)
}

func TestReleaseFreesEverything(t *testing.T) {
	dev := gputest.NewDevice(8, 8)
	s := NewScene(dev)
	require.NoError(t, s.SetContent(Commands(box("a", geometry.Cube{})), 1))

	s.Release()
	assert.Empty(t, s.Pairs())
	for _, b := range dev.Buffers {
		assert.True(t, b.Released, b.Label)
	}
	for _, p := range dev.Pipelines {
		assert.True(t, p.Released)
	}
}

func TestNilNodeClearsScene(t *testing.T) {
	s := NewScene(gputest.NewDevice(8, 8))
	require.NoError(t, s.SetContent(NodeFunc(func() []command.Command {
		return []command.Command{light("l")}
	}), 1))
	require.NoError(t, s.SetContent(nil, 1))
	assert.Empty(t, s.Pairs())
}

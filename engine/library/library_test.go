package library

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/cache"
	"github.com/Carmen-Shannon/oxy-scene/engine/geometry"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMeshDeduplicatesByKey(t *testing.T) {
	dev := gputest.NewDevice(64, 64)
	lib := NewGeometryLibrary(dev)

	a, err := lib.Mesh(geometry.Cube{Size: 1})
	require.NoError(t, err)
	b, err := lib.Mesh(geometry.Cube{})
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, lib.Meshes())
	assert.Equal(t, 1, dev.CountLog("CreateBuffer(cube:1 vertices)"))
	require.Len(t, a.Submeshes, 1)
	assert.Equal(t, uint32(36), a.Submeshes[0].IndexCount)

	c, err := lib.Mesh(geometry.Octahedron{Divisions: 2})
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, lib.Meshes())

	lib.Release()
	for _, buf := range dev.Buffers {
		assert.True(t, buf.Released, buf.Label)
	}
}

type brokenGeometry struct{}

func (brokenGeometry) CacheKey() string { return "broken" }
func (brokenGeometry) MeshData() (geometry.MeshData, error) {
	return geometry.MeshData{}, nil
}

func TestMeshBuildFailureIsTyped(t *testing.T) {
	dev := gputest.NewDevice(64, 64)
	lib := NewGeometryLibrary(dev)

	_, err := lib.Mesh(brokenGeometry{})
	var be *cache.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "mesh", be.Cache)
	assert.Equal(t, "broken", be.Key)
	assert.Equal(t, 0, lib.Meshes())
	assert.Empty(t, dev.Buffers)
}

type recordingStore struct {
	cache.Store[string, *gpu.Mesh]
	puts int
}

func (s *recordingStore) Put(key string, m *gpu.Mesh) {
	s.puts++
	s.Store.Put(key, m)
}

func TestMeshStoreIsSubstitutable(t *testing.T) {
	store := &recordingStore{Store: cache.NewUnboundedStore[string, *gpu.Mesh]()}
	lib := NewGeometryLibrary(gputest.NewDevice(1, 1), WithMeshStore(store))

	_, err := lib.Mesh(geometry.Plane{})
	require.NoError(t, err)
	_, err = lib.Mesh(geometry.Plane{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.puts)
}

type countingGeometry struct {
	geometry.Cube
	key   string
	calls *atomic.Int32
}

func (g countingGeometry) CacheKey() string { return g.key }
func (g countingGeometry) MeshData() (geometry.MeshData, error) {
	g.calls.Add(1)
	return g.Cube.MeshData()
}

func TestPrepareGeneratesOnWorkers(t *testing.T) {
	dev := gputest.NewDevice(1, 1)
	lib := NewGeometryLibrary(dev, WithMeshWorkers(4))

	var calls atomic.Int32
	geoms := []geometry.Geometry{
		countingGeometry{key: "a", calls: &calls},
		countingGeometry{key: "b", calls: &calls},
		countingGeometry{key: "a", calls: &calls},
		countingGeometry{key: "c", calls: &calls},
		nil,
	}
	lib.Prepare(geoms)
	assert.Equal(t, int32(3), calls.Load())
	assert.Empty(t, dev.Buffers)

	for _, g := range geoms[:4] {
		_, err := lib.Mesh(g)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, lib.Meshes())

	// Cached keys are skipped, so a lone new key is generated by Mesh itself.
	lib.Prepare(append(geoms[:4:4], countingGeometry{key: "d", calls: &calls}))
	assert.Equal(t, int32(3), calls.Load())
	_, err := lib.Mesh(countingGeometry{key: "d", calls: &calls})
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load())
}

func TestPrepareCarriesGenerationErrors(t *testing.T) {
	lib := NewGeometryLibrary(gputest.NewDevice(1, 1), WithMeshWorkers(2))
	lib.Prepare([]geometry.Geometry{geometry.Plane{Width: -1}, geometry.Cube{}})

	_, err := lib.Mesh(geometry.Plane{Width: -1})
	var be *cache.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 0, lib.Meshes())

	_, err = lib.Mesh(geometry.Cube{})
	require.NoError(t, err)
}

func TestPrepareWithoutWorkersIsNoop(t *testing.T) {
	lib := NewGeometryLibrary(gputest.NewDevice(1, 1), WithMeshWorkers(1))
	var calls atomic.Int32
	lib.Prepare([]geometry.Geometry{
		countingGeometry{key: "a", calls: &calls},
		countingGeometry{key: "b", calls: &calls},
	})
	assert.Zero(t, calls.Load())
}

func TestPipelineKeyedByProgramsLayoutAndCull(t *testing.T) {
	dev := gputest.NewDevice(64, 64)
	lib := NewShaderLibrary(dev)

	desc := gpu.PipelineDescriptor{
		Key:    gpu.PipelineKey{Vertex: gpu.ProgramStandardVertex, Fragment: gpu.ProgramStandardFragment},
		Layout: gpu.StandardVertexLayout(),
	}
	a, err := lib.Pipeline(desc)
	require.NoError(t, err)
	b, err := lib.Pipeline(desc)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, gpu.StandardVertexLayout().Key(), a.Key().Layout)

	desc.Key.CullBack = true
	c, err := lib.Pipeline(desc)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, lib.Pipelines())
	assert.Len(t, dev.Pipelines, 2)
}

func TestPipelineFailureNotCached(t *testing.T) {
	dev := gputest.NewDevice(64, 64)
	lib := NewShaderLibrary(dev)

	desc := gpu.PipelineDescriptor{Key: gpu.PipelineKey{Vertex: "missing", Fragment: gpu.ProgramStandardFragment}}
	_, err := lib.Pipeline(desc)
	var be *cache.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "pipeline", be.Cache)
	assert.Equal(t, 0, lib.Pipelines())
}

func TestTextureDomainsAreIndependent(t *testing.T) {
	dev := gputest.NewDevice(64, 64)
	lib := NewShaderLibrary(dev, WithColorTextureSize(4))

	red := ColorTexture{Color: common.Vec4{1, 0, 0, 1}}
	a, err := lib.Texture(red)
	require.NoError(t, err)
	b, err := lib.Texture(red)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, uint32(4), a.Width())

	img, err := lib.Texture(ImageTexture{Name: "grid", Data: encodePNG(t, 3, 2)})
	require.NoError(t, err)
	assert.Equal(t, gpu.Texture2D, img.Kind())
	assert.Equal(t, uint32(3), img.Width())

	cube, err := lib.Texture(CubeTexture{Name: "grid", Data: encodePNG(t, 2, 12)})
	require.NoError(t, err)
	assert.Equal(t, gpu.TextureCube, cube.Kind())
	assert.Equal(t, uint32(2), cube.Height())
	assert.NotSame(t, img, cube)

	assert.Equal(t, 3, lib.Textures())
	assert.Len(t, dev.Textures, 3)

	lib.Release()
	for _, tex := range dev.Textures {
		assert.True(t, tex.Released)
	}
}

func TestTextureFailures(t *testing.T) {
	dev := gputest.NewDevice(64, 64)
	lib := NewShaderLibrary(dev)

	_, err := lib.Texture(ImageTexture{Data: encodePNG(t, 1, 1)})
	assert.ErrorIs(t, err, ErrUnnamedTexture)

	_, err = lib.Texture(ImageTexture{Name: "garbage", Data: []byte("not an image")})
	var be *cache.BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "image texture", be.Cache)

	_, err = lib.Texture(CubeTexture{Name: "square", Data: encodePNG(t, 4, 4)})
	assert.Error(t, err)

	dev.TextureErr = gputest.ErrInjected
	_, err = lib.Texture(ColorTexture{Color: common.Vec4{0, 1, 0, 1}})
	assert.ErrorIs(t, err, gputest.ErrInjected)
	assert.Equal(t, 0, lib.Textures())
}

func TestColorTextureSizeReachesUpload(t *testing.T) {
	dev := gputest.NewDevice(8, 8)

	_, err := NewShaderLibrary(dev).Texture(ColorTexture{Color: common.Vec4{0, 0, 1, 1}})
	require.NoError(t, err)
	_, err = NewShaderLibrary(dev, WithColorTextureSize(2)).Texture(ColorTexture{Color: common.Vec4{0, 0, 1, 1}})
	require.NoError(t, err)

	require.Len(t, dev.Textures, 2)
	assert.Len(t, dev.Textures[0].Pixels.Pixels, 8*8*4)
	assert.Len(t, dev.Textures[1].Pixels.Pixels, 2*2*4)
}

type puttingStore[K comparable] struct {
	cache.Store[K, gpu.Texture]
	puts int
}

func (s *puttingStore[K]) Put(key K, tex gpu.Texture) {
	s.puts++
	s.Store.Put(key, tex)
}

func TestTextureStoresAreSubstitutable(t *testing.T) {
	colors := &puttingStore[common.Vec4]{Store: cache.NewUnboundedStore[common.Vec4, gpu.Texture]()}
	images := &puttingStore[string]{Store: cache.NewUnboundedStore[string, gpu.Texture]()}
	cubes := &puttingStore[string]{Store: cache.NewUnboundedStore[string, gpu.Texture]()}
	lib := NewShaderLibrary(gputest.NewDevice(8, 8),
		WithColorTextureStore(colors),
		WithImageTextureStore(images),
		WithCubeTextureStore(cubes),
	)

	for range 2 {
		_, err := lib.Texture(ColorTexture{Color: common.Vec4{1, 1, 0, 1}})
		require.NoError(t, err)
		_, err = lib.Texture(ImageTexture{Name: "tile", Data: encodePNG(t, 2, 2)})
		require.NoError(t, err)
		_, err = lib.Texture(CubeTexture{Name: "sky", Data: encodePNG(t, 1, 6)})
		require.NoError(t, err)
	}

	assert.Equal(t, 1, colors.puts)
	assert.Equal(t, 1, images.puts)
	assert.Equal(t, 1, cubes.puts)
	assert.Equal(t, 3, lib.Textures())
}

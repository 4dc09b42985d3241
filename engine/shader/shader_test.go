package shader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/library"
	"github.com/stretchr/testify/assert"
)

func TestStandardDefaultsToWhite(t *testing.T) {
	assert.Equal(t, []library.TextureSource{White}, Standard{}.Textures())
	assert.Equal(t, Key(Standard{}), Key(Color(common.Vec4{1, 1, 1, 1})))
	assert.NotEqual(t, Key(Standard{}), Key(Color(common.Vec4{1, 0, 0, 1})))
}

func TestDescriptor(t *testing.T) {
	layout := gpu.StandardVertexLayout()

	d := Descriptor(Skybox{Cube: library.CubeTexture{Name: "sky"}}, layout, false)
	assert.Equal(t, gpu.ProgramSkyboxVertex, d.Key.Vertex)
	assert.Equal(t, gpu.ProgramSkyboxFragment, d.Key.Fragment)
	assert.Equal(t, layout.Key(), d.Key.Layout)
	assert.Equal(t, []gpu.TextureKind{gpu.TextureCube}, d.Textures)

	d = Descriptor(UVColored{}, layout, true)
	assert.True(t, d.Key.CullBack)
	assert.Empty(t, d.Textures)
}

func TestKeyDistinguishesTextureDomains(t *testing.T) {
	img := Standard{Albedo: library.ImageTexture{Name: "sky"}}
	sky := Skybox{Cube: library.CubeTexture{Name: "sky"}}
	assert.Equal(t, "standard_vertex.standard_fragment|image:sky", Key(img))
	assert.NotEqual(t, Key(img), Key(sky))
}

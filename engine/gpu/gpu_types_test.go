package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatAt(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestModelUniformPadsNormalColumns(t *testing.T) {
	u := ModelUniform{Normal: [9]float32{1, 2, 3, 4, 5, 6, 7, 8, 9}}
	u.Model[15] = 1

	buf := u.Marshal()
	require.Len(t, buf, 112)
	assert.Equal(t, float32(1), floatAt(buf, 60))
	assert.Equal(t, float32(3), floatAt(buf, 72))
	assert.Equal(t, float32(0), floatAt(buf, 76))
	assert.Equal(t, float32(4), floatAt(buf, 80))
	assert.Equal(t, float32(9), floatAt(buf, 104))
}

func TestLightArrayLayout(t *testing.T) {
	var lights LightArray
	lights[1] = Light{Position: [4]float32{1, 2, 3, LightTypePoint}, Color: [4]float32{1, 1, 1, 0.5}}

	buf := lights.Marshal()
	require.Len(t, buf, MaxLights*32)
	assert.Equal(t, LightTypePoint, floatAt(buf, 32+12))
	assert.Equal(t, float32(0.5), floatAt(buf, 32+28))
}

func TestUniformSizes(t *testing.T) {
	assert.Len(t, (&ViewProjection{}).Marshal(), 128)
	assert.Len(t, (&FragmentGlobals{}).Marshal(), 32)
	assert.Len(t, (&Light{}).Marshal(), 32)
}

func TestVertexLayoutKey(t *testing.T) {
	a := StandardVertexLayout()
	b := StandardVertexLayout()
	assert.Equal(t, a.Key(), b.Key())

	b.Attributes[2].Format = VertexFormatFloat32x4
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestPipelineKeyString(t *testing.T) {
	k := PipelineKey{Vertex: "standard_vertex", Fragment: "uv_colored_fragment", Layout: "32", CullBack: true}
	assert.Equal(t, "standard_vertex.uv_colored_fragment.32.back", k.String())
}

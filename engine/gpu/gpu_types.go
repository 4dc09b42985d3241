package gpu

import (
	"encoding/binary"
	"math"
)

// MaxLights is the length of the light array bound at SlotLights.
const MaxLights = 16

// Light type codes stored in Light.Position[3].
const (
	LightTypeAmbient     float32 = 1
	LightTypeDirectional float32 = 2
	LightTypePoint       float32 = 3
)

func putFloats(buf []byte, offset int, values ...float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(v))
	}
}

// ViewProjection is the GPU layout of the camera uniform bound at SlotViewProjection.
// Size: 128 bytes.
type ViewProjection struct {
	ViewProj    [16]float32 // offset   0: projection * view
	SkyViewProj [16]float32 // offset  64: projection * view with translation removed
}

// Size returns the size of the ViewProjection struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (128)
func (g *ViewProjection) Size() int { return 128 }

// Marshal serializes the ViewProjection struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *ViewProjection) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.ViewProj[:]...)
	putFloats(buf, 64, g.SkyViewProj[:]...)
	return buf
}

// FragmentGlobals is the GPU layout of the per-frame fragment uniform bound at SlotGlobals.
// Size: 32 bytes.
type FragmentGlobals struct {
	CameraPosition [4]float32 // offset  0: world-space camera position, w unused
	LightCount     [4]float32 // offset 16: x = number of valid lights
}

// Size returns the size of the FragmentGlobals struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *FragmentGlobals) Size() int { return 32 }

// Marshal serializes the FragmentGlobals struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *FragmentGlobals) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.CameraPosition[:]...)
	putFloats(buf, 16, g.LightCount[:]...)
	return buf
}

// Light is the GPU layout of one light. Size: 32 bytes.
type Light struct {
	Position [4]float32 // offset  0: xyz = position (point) or direction (directional), w = light type
	Color    [4]float32 // offset 16: rgb = color, a = intensity
}

// Size returns the size of the Light struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *Light) Size() int { return 32 }

// Marshal serializes the Light struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *Light) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Position[:]...)
	putFloats(buf, 16, g.Color[:]...)
	return buf
}

// LightArray is the GPU layout of the light uniform bound at SlotLights.
// Size: MaxLights * 32 bytes.
type LightArray [MaxLights]Light

// Size returns the size of the LightArray in bytes.
func (a *LightArray) Size() int { return MaxLights * 32 }

// Marshal serializes every light slot, valid or not.
func (a *LightArray) Marshal() []byte {
	buf := make([]byte, 0, a.Size())
	for i := range a {
		buf = append(buf, a[i].Marshal()...)
	}
	return buf
}

// ModelUniform is the GPU layout of the per-command uniform bound at SlotModel.
// The WGSL mat3x3 pads each column to 16 bytes. Size: 112 bytes.
type ModelUniform struct {
	Model  [16]float32 // offset  0: model matrix (mat4x4<f32>)
	Normal [9]float32  // offset 64: normal matrix (mat3x3<f32>), columns at 64, 80, 96
}

// Size returns the size of the ModelUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (112)
func (g *ModelUniform) Size() int { return 112 }

// Marshal serializes the ModelUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *ModelUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Model[:]...)
	for col := range 3 {
		putFloats(buf, 64+col*16, g.Normal[col*3:col*3+3]...)
	}
	return buf
}

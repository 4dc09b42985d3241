package library

import (
	"fmt"
	"image"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

// TextureSource names the content of a texture in one of three independently cached
// domains: ColorTexture, ImageTexture and CubeTexture.
type TextureSource interface {
	// Kind returns the dimension the texture is sampled with.
	Kind() gpu.TextureKind

	// Key identifies the texture within its domain, prefixed by the domain name.
	Key() string

	// stage produces the pixels to upload. colorSize is the edge length of synthesized color blocks.
	stage(colorSize uint32) (common.TextureStagingData, error)
}

// ColorTexture is a flat color synthesized as a small texel block. Keyed by the color value.
type ColorTexture struct {
	Color common.Vec4
}

func (ColorTexture) Kind() gpu.TextureKind { return gpu.Texture2D }
func (c ColorTexture) Key() string         { return fmt.Sprintf("color:%v", c.Color) }

func (c ColorTexture) stage(colorSize uint32) (common.TextureStagingData, error) {
	return common.SolidColor(c.Color, colorSize), nil
}

// ImageTexture is a decoded 2D image keyed by Name. Either Image or the encoded Data
// must be set; two sources with the same Name share one texture.
type ImageTexture struct {
	Name  string
	Data  []byte
	Image image.Image
}

func (ImageTexture) Kind() gpu.TextureKind { return gpu.Texture2D }
func (i ImageTexture) Key() string         { return "image:" + i.Name }

func (i ImageTexture) stage(uint32) (common.TextureStagingData, error) {
	return stageImage(i.Name, i.Data, i.Image)
}

// CubeTexture is a cube map keyed by Name, given as a vertical strip of six square faces
// in +X, -X, +Y, -Y, +Z, -Z order. Sources sharing a Name share one texture.
type CubeTexture struct {
	Name  string
	Data  []byte
	Image image.Image
}

func (CubeTexture) Kind() gpu.TextureKind { return gpu.TextureCube }
func (c CubeTexture) Key() string         { return "cube:" + c.Name }

func (c CubeTexture) stage(uint32) (common.TextureStagingData, error) {
	strip, err := stageImage(c.Name, c.Data, c.Image)
	if err != nil {
		return common.TextureStagingData{}, err
	}
	return common.CubeFromVerticalStrip(strip)
}

func stageImage(name string, data []byte, img image.Image) (common.TextureStagingData, error) {
	switch {
	case img != nil:
		return common.ImageToStaging(img)
	case len(data) > 0:
		return common.DecodeImageBytes(data)
	default:
		return common.TextureStagingData{}, fmt.Errorf("texture %q has no image data", name)
	}
}

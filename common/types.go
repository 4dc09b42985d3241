// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned when an image has no pixels.
var ErrEmptyImage = errors.New("image has zero area")

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the tightly packed RGBA8 pixel data, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
	// Layers is the number of array layers in Pixels. Zero is treated as one.
	Layers uint32
}

// LayerCount returns the number of array layers, at least one.
func (t TextureStagingData) LayerCount() uint32 {
	return max(t.Layers, 1)
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// LinearRepeatSampler is the sampler used for surface textures.
func LinearRepeatSampler() SamplerStagingData {
	return SamplerStagingData{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

// LinearClampSampler is the sampler used for cube textures, where wrapping would bleed across faces.
func LinearClampSampler() SamplerStagingData {
	s := LinearRepeatSampler()
	s.AddressModeU = wgpu.AddressModeClampToEdge
	s.AddressModeV = wgpu.AddressModeClampToEdge
	s.AddressModeW = wgpu.AddressModeClampToEdge
	return s
}

// DecodeImage decodes a PNG, JPEG, BMP, TIFF or WebP stream into RGBA staging data.
//
// Parameters:
//   - r: the encoded image stream
//
// Returns:
//   - TextureStagingData: the decoded single-layer pixels
//   - error: error if the stream cannot be decoded or is empty
func DecodeImage(r io.Reader) (TextureStagingData, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode image: %w", err)
	}
	staged, err := ImageToStaging(img)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to stage %s image: %w", format, err)
	}
	return staged, nil
}

// DecodeImageBytes is DecodeImage over an in-memory buffer.
func DecodeImageBytes(data []byte) (TextureStagingData, error) {
	return DecodeImage(bytes.NewReader(data))
}

// ImageToStaging converts any image to tightly packed RGBA staging data.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - TextureStagingData: the converted single-layer pixels
//   - error: ErrEmptyImage if the image has no pixels
func ImageToStaging(img image.Image) (TextureStagingData, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return TextureStagingData{}, ErrEmptyImage
	}
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Layers: 1,
	}, nil
}

// CubeFromVerticalStrip reinterprets a vertical strip of six square faces as a six-layer
// cube texture. Faces are stacked top to bottom in +X, -X, +Y, -Y, +Z, -Z order.
//
// Parameters:
//   - strip: single-layer staging data whose height is six times its width
//
// Returns:
//   - TextureStagingData: six layers of Width x Width pixels
//   - error: error if the strip does not have a 1:6 aspect ratio
func CubeFromVerticalStrip(strip TextureStagingData) (TextureStagingData, error) {
	if strip.Width == 0 || strip.Height != strip.Width*6 {
		return TextureStagingData{}, fmt.Errorf("cube strip must be w x 6w, got %dx%d", strip.Width, strip.Height)
	}
	// Rows are contiguous, so each face already occupies its own Width*Width block.
	return TextureStagingData{
		Pixels: strip.Pixels,
		Width:  strip.Width,
		Height: strip.Width,
		Layers: 6,
	}, nil
}

// SolidColor fills a size x size RGBA8 block with color, whose components are in [0, 1].
//
// Parameters:
//   - color: the RGBA color
//   - size: edge length in pixels
//
// Returns:
//   - TextureStagingData: the single-layer block
func SolidColor(color Vec4, size uint32) TextureStagingData {
	var px [4]byte
	for i, c := range color {
		px[i] = byte(Clamp(c, 0, 1)*255 + 0.5)
	}
	pixels := make([]byte, 0, size*size*4)
	for range size * size {
		pixels = append(pixels, px[:]...)
	}
	return TextureStagingData{Pixels: pixels, Width: size, Height: size, Layers: 1}
}

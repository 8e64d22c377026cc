package mandel

import (
	"image"
	stdcolor "image/color"

	"github.com/gogpu/mandel/internal/color"
)

// PixelBuffer is a row-major grid of RGB8 pixels, 3 bytes per pixel.
//
// During a pass every row is written by exactly one task, so rows need no
// synchronization. Once the pass completes the buffer is handed to the
// display or persistence collaborator and is no longer written.
type PixelBuffer struct {
	width  int
	height int
	data   []uint8 // RGB format, 3 bytes per pixel
}

// NewPixelBuffer creates a black buffer with the given dimensions.
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*3),
	}
}

// Width returns the width of the buffer.
func (p *PixelBuffer) Width() int {
	return p.width
}

// Height returns the height of the buffer.
func (p *PixelBuffer) Height() int {
	return p.height
}

// Data returns the raw pixel data (RGB format).
func (p *PixelBuffer) Data() []uint8 {
	return p.data
}

// Stride returns the number of bytes per row.
func (p *PixelBuffer) Stride() int {
	return p.width * 3
}

// Row returns the bytes of row y. The slice aliases the buffer.
func (p *PixelBuffer) Row(y int) []uint8 {
	s := p.Stride()
	return p.data[y*s : (y+1)*s : (y+1)*s]
}

// Pixel returns the color at (x, y). Out-of-range coordinates return black.
func (p *PixelBuffer) Pixel(x, y int) color.RGB8 {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return color.RGB8{}
	}
	i := (y*p.width + x) * 3
	return color.RGB8{R: p.data[i], G: p.data[i+1], B: p.data[i+2]}
}

// ToImage converts the buffer to an opaque image.RGBA.
func (p *PixelBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for i, j := 0, 0; i < len(p.data); i, j = i+3, j+4 {
		img.Pix[j+0] = p.data[i+0]
		img.Pix[j+1] = p.data[i+1]
		img.Pix[j+2] = p.data[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// At implements the image.Image interface.
func (p *PixelBuffer) At(x, y int) stdcolor.Color {
	return p.Pixel(x, y)
}

// Bounds implements the image.Image interface.
func (p *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *PixelBuffer) ColorModel() stdcolor.Model {
	return stdcolor.RGBAModel
}

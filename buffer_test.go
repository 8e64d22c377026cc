package mandel

import (
	"image"
	"testing"

	"github.com/gogpu/mandel/internal/color"
)

func TestPixelBuffer_Rows(t *testing.T) {
	buf := NewPixelBuffer(4, 3)

	if buf.Stride() != 12 || len(buf.Data()) != 36 {
		t.Fatalf("stride %d, len %d, want 12, 36", buf.Stride(), len(buf.Data()))
	}

	for y := 0; y < buf.Height(); y++ {
		row := buf.Row(y)
		if len(row) != 12 || cap(row) != 12 {
			t.Fatalf("row %d len/cap = %d/%d, want 12/12", y, len(row), cap(row))
		}
		for i := range row {
			row[i] = uint8(y + 1)
		}
	}

	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			want := color.Gray(uint8(y + 1))
			if got := buf.Pixel(x, y); got != want {
				t.Errorf("Pixel(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestPixelBuffer_PixelOutOfBounds(t *testing.T) {
	buf := NewPixelBuffer(2, 2)
	for i := range buf.Data() {
		buf.Data()[i] = 0xff
	}
	for _, c := range []struct{ x, y int }{{-1, 0}, {2, 0}, {0, -1}, {0, 2}} {
		if got := buf.Pixel(c.x, c.y); got != (color.RGB8{}) {
			t.Errorf("Pixel(%d, %d) = %v, want black", c.x, c.y, got)
		}
	}
}

func TestPixelBuffer_ImageInterface(t *testing.T) {
	buf := NewPixelBuffer(3, 2)
	copy(buf.Row(1)[3:6], []uint8{10, 20, 30})

	var img image.Image = buf
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("Bounds() = %v", img.Bounds())
	}
	r, g, b, a := img.At(1, 1).RGBA()
	if r != 10*257 || g != 20*257 || b != 30*257 || a != 0xffff {
		t.Errorf("At(1, 1) = %d %d %d %d", r, g, b, a)
	}

	rgba := buf.ToImage()
	if got := rgba.RGBAAt(1, 1); got.R != 10 || got.G != 20 || got.B != 30 || got.A != 255 {
		t.Errorf("ToImage().RGBAAt(1, 1) = %v", got)
	}
	if got := rgba.RGBAAt(0, 0); got.A != 255 {
		t.Errorf("ToImage() alpha = %d, want 255", got.A)
	}
}

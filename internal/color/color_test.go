package color

import (
	"math"
	"testing"
)

func TestFromUnit(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		want    RGB8
	}{
		{"black", 0, 0, 0, RGB8{0, 0, 0}},
		{"white", 255, 255, 255, RGB8{255, 255, 255}},
		{"truncates", 127.9, 0.5, 254.999, RGB8{127, 0, 254}},
		{"clamps", -10, 300, math.Inf(1), RGB8{0, 255, 255}},
		{"nan", math.NaN(), 1, 2, RGB8{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromUnit(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("FromUnit(%v, %v, %v) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestGray(t *testing.T) {
	if got := Gray(42); got != (RGB8{42, 42, 42}) {
		t.Errorf("Gray(42) = %v", got)
	}
}

func TestRGB8_RGBA(t *testing.T) {
	r, g, b, a := RGB8{0xff, 0x80, 0x00}.RGBA()
	if r != 0xffff || g != 0x8080 || b != 0 || a != 0xffff {
		t.Errorf("RGBA() = %#x %#x %#x %#x", r, g, b, a)
	}
}

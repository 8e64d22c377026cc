// Package color provides the 8-bit RGB pixel type produced by the palettes.
package color

import stdcolor "image/color"

// RGB8 represents an opaque color with uint8 components in [0,255].
type RGB8 struct {
	R, G, B uint8
}

// Neutral is the flat gray given to points that never escape under the
// smooth periodic palette.
var Neutral = RGB8{64, 64, 64}

// Gray returns an RGB8 with v replicated across all three channels.
func Gray(v uint8) RGB8 {
	return RGB8{v, v, v}
}

// FromUnit converts channels in [0,255] float space to RGB8, clamping
// out-of-range and NaN values and truncating toward zero.
func FromUnit(r, g, b float64) RGB8 {
	return RGB8{clamp8(r), clamp8(g), clamp8(b)}
}

// RGBA implements image/color.Color. Alpha is always opaque.
func (c RGB8) RGBA() (r, g, b, a uint32) {
	return stdcolor.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

func clamp8(v float64) uint8 {
	switch {
	case !(v > 0): // catches NaN
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

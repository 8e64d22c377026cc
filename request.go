package mandel

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/gogpu/mandel/internal/kernel"
)

// ErrInvalidBounds is returned when a plane rectangle is empty, inverted or
// not finite.
var ErrInvalidBounds = errors.New("mandel: invalid plane bounds")

// ErrInvalidSize is returned for non-positive buffer dimensions.
var ErrInvalidSize = errors.New("mandel: invalid buffer size")

// ColorMode selects the coloring strategy applied after iteration.
type ColorMode uint8

const (
	// ColorTrig uses phase-shifted sines of the iteration count.
	// Escape radius 1000.
	ColorTrig ColorMode = ColorMode(kernel.ModeTrig)

	// ColorSmooth uses a periodic triangle wave over the continuous
	// iteration count. Points that never escape are flat gray.
	// Escape radius 1000.
	ColorSmooth ColorMode = ColorMode(kernel.ModeSmooth)

	// ColorGray shades by normalized stability. Escape radius 2.
	ColorGray ColorMode = ColorMode(kernel.ModeGray)
)

// String returns the mode name used in identifiers and config files.
func (m ColorMode) String() string { return kernel.Mode(m).String() }

// Next returns the following mode, wrapping around.
func (m ColorMode) Next() ColorMode { return ColorMode(kernel.Mode(m).Next()) }

// ParseColorMode parses "trig", "smooth" or "gray".
func ParseColorMode(s string) (ColorMode, error) {
	m, err := kernel.ParseMode(s)
	if err != nil {
		return 0, err
	}
	return ColorMode(m), nil
}

// Bounds is a rectangle in the complex plane.
type Bounds struct {
	MinRe, MaxRe float64
	MinIm, MaxIm float64
}

// DefaultBounds frames the whole set.
var DefaultBounds = Bounds{MinRe: -2, MaxRe: 1, MinIm: -1.5, MaxIm: 1.5}

// BoundsAround returns the rectangle centered on (re, im) with the given
// real span and imaginary span.
func BoundsAround(re, im, spanRe, spanIm float64) Bounds {
	return Bounds{
		MinRe: re - spanRe/2, MaxRe: re + spanRe/2,
		MinIm: im - spanIm/2, MaxIm: im + spanIm/2,
	}
}

// Center returns the midpoint of b.
func (b Bounds) Center() (re, im float64) {
	return (b.MinRe + b.MaxRe) / 2, (b.MinIm + b.MaxIm) / 2
}

// Span returns the real and imaginary extent of b.
func (b Bounds) Span() (re, im float64) {
	return b.MaxRe - b.MinRe, b.MaxIm - b.MinIm
}

// Validate reports ErrInvalidBounds for empty, inverted or non-finite
// rectangles.
func (b Bounds) Validate() error {
	for _, v := range []float64{b.MinRe, b.MaxRe, b.MinIm, b.MaxIm} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite coordinate %v", ErrInvalidBounds, v)
		}
	}
	if b.MinRe >= b.MaxRe || b.MinIm >= b.MaxIm {
		return fmt.Errorf("%w: re [%g, %g] im [%g, %g]", ErrInvalidBounds, b.MinRe, b.MaxRe, b.MinIm, b.MaxIm)
	}
	return nil
}

// Pan shifts b by dx and dy expressed as fractions of its span.
func (b Bounds) Pan(dx, dy float64) Bounds {
	w, h := b.Span()
	return Bounds{
		MinRe: b.MinRe + dx*w, MaxRe: b.MaxRe + dx*w,
		MinIm: b.MinIm + dy*h, MaxIm: b.MaxIm + dy*h,
	}
}

// ZoomAt recenters b on the plane point under pixel (x, y) of a width×height
// view and divides the span by factor.
func (b Bounds) ZoomAt(x, y, width, height int, factor float64) Bounds {
	w, h := b.Span()
	re := b.MinRe + w*float64(x)/float64(width)
	im := b.MinIm + h*float64(y)/float64(height)
	return BoundsAround(re, im, w/factor, h/factor)
}

// RenderRequest describes one render pass. It is immutable for the duration
// of the pass.
type RenderRequest struct {
	Bounds
	MaxIter int
	AA      int
	Mode    ColorMode
}

// DefaultRequest returns the initial view: whole set, 256 iterations, no
// supersampling, sine palette.
func DefaultRequest() RenderRequest {
	return RenderRequest{Bounds: DefaultBounds, MaxIter: 256, AA: 1, Mode: ColorTrig}
}

// Clamped returns r with MaxIter and AA forced to at least 1 and an unknown
// mode replaced by ColorTrig.
func (r RenderRequest) Clamped() RenderRequest {
	r.MaxIter = max(r.MaxIter, 1)
	r.AA = max(r.AA, 1)
	if !kernel.Mode(r.Mode).Valid() {
		r.Mode = ColorTrig
	}
	return r
}

// Identifier returns a deterministic name for the image r produces:
// "<center re>_<center im>_<max iter>_<mode>".
func (r RenderRequest) Identifier() string {
	re, im := r.Center()
	return strconv.FormatFloat(re, 'g', -1, 64) + "_" +
		strconv.FormatFloat(im, 'g', -1, 64) + "_" +
		strconv.Itoa(r.MaxIter) + "_" +
		r.Mode.String()
}

func (r RenderRequest) params(width, height int, seed uint64) kernel.Params {
	return kernel.Params{
		Width: width, Height: height,
		MinRe: r.MinRe, MaxRe: r.MaxRe,
		MinIm: r.MinIm, MaxIm: r.MaxIm,
		MaxIter: r.MaxIter,
		AA:      r.AA,
		Mode:    kernel.Mode(r.Mode),
		Seed:    seed,
	}
}

package kernel

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/mandel/internal/color"
)

// Palette maps the result of one escape-time evaluation to a color.
//
// iter is the number of iterations the point stayed inside the escape radius,
// mod is the last |z|² observed while it was inside, and maxIter is the
// iteration cap of the pass.
type Palette interface {
	Evaluate(iter int64, mod float64, maxIter int64) color.RGB8
	EscapeRadius() float64
}

// Mode selects a palette.
type Mode uint8

const (
	// ModeTrig colors by phase-shifted sines of the iteration count.
	ModeTrig Mode = iota
	// ModeSmooth colors by a periodic triangle wave over the continuous count.
	ModeSmooth
	// ModeGray shades by normalized stability.
	ModeGray

	modeCount
)

var modeNames = [modeCount]string{"trig", "smooth", "gray"}

var palettes = [modeCount]Palette{Trig{}, Smooth{}, Grayscale{}}

// Palette returns the palette for m. Unknown modes fall back to ModeTrig.
func (m Mode) Palette() Palette {
	if !m.Valid() {
		return palettes[ModeTrig]
	}
	return palettes[m]
}

// Valid reports whether m names a palette.
func (m Mode) Valid() bool { return m < modeCount }

// Next returns the mode after m, wrapping around.
func (m Mode) Next() Mode { return (m + 1) % modeCount }

// String returns the mode name.
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
	return modeNames[m]
}

// ParseMode parses a mode name as returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("kernel: unknown color mode %q", s)
}

// Trig is the sine palette: each channel is a sine of 0.1*iter shifted by a
// third of a turn.
type Trig struct{}

var trigPhases = [3]float64{0, 2 * math.Pi / 3, 4 * math.Pi / 3}

// Evaluate implements Palette.
func (Trig) Evaluate(iter int64, _ float64, _ int64) color.RGB8 {
	angle := 0.1 * float64(iter)
	var ch [3]float64
	for i, phase := range trigPhases {
		ch[i] = 255 * (0.5 + 0.5*math.Sin(angle+phase))
	}
	return color.FromUnit(ch[0], ch[1], ch[2])
}

// EscapeRadius implements Palette.
func (Trig) EscapeRadius() float64 { return 1000 }

// Smooth is the periodic palette over the continuous iteration count.
// Points that never escape get color.Neutral.
type Smooth struct{}

var smoothMultipliers = [3]float64{2, 3, 5}

// Evaluate implements Palette.
func (Smooth) Evaluate(iter int64, mod float64, maxIter int64) color.RGB8 {
	if iter >= maxIter {
		return color.Neutral
	}
	mu := continuous(iter, mod, 2)
	a := 8 * math.Sqrt(math.Max(mu, 0))
	var ch [3]uint8
	for i, m := range smoothMultipliers {
		v := int(math.Floor(a*m)) % 512
		ch[i] = uint8(PeriodicColor(v))
	}
	return color.RGB8{R: ch[0], G: ch[1], B: ch[2]}
}

// EscapeRadius implements Palette.
func (Smooth) EscapeRadius() float64 { return 1000 }

// Grayscale shades each point by 1 - stability, where stability is the
// continuous count normalized by maxIter and clamped to [0, 1].
type Grayscale struct{}

// Evaluate implements Palette.
func (Grayscale) Evaluate(iter int64, mod float64, maxIter int64) color.RGB8 {
	stability := continuous(iter, mod, 1) / float64(maxIter)
	stability = math.Min(math.Max(stability, 0), 1)
	return color.Gray(uint8((1 - stability) * 255))
}

// EscapeRadius implements Palette.
func (Grayscale) EscapeRadius() float64 { return 2 }

// PeriodicColor is a period-512 triangle wave over [0,255]:
// [0,128) rises from 128, [128,384) falls from 255 to 0, [384,512) rises
// from 0 to 127. v is reduced modulo 512 first.
func PeriodicColor(v int) int {
	v %= 512
	if v < 0 {
		v += 512
	}
	switch {
	case v < 128:
		return 128 + v
	case v < 384:
		return 383 - v
	}
	return v - 384
}

// continuous returns iter + offset - log2(log2(|z|)) where mod is |z|².
// When the correction is not finite the raw count is returned.
func continuous(iter int64, mod float64, offset float64) float64 {
	mu := float64(iter) + offset - math.Log2(math.Log2(math.Sqrt(mod)))
	if math.IsNaN(mu) || math.IsInf(mu, 0) {
		return float64(iter)
	}
	return mu
}

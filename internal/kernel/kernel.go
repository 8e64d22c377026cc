// Package kernel implements the lane-batched escape-time evaluator.
//
// A row is processed in batches of wide.Lanes adjacent columns. Every lane
// iterates z = z² + c independently, but the batch advances in lockstep: a
// lane that reaches the iteration cap or leaves the escape radius is masked
// out and its counters freeze, while the remaining lanes keep iterating.
// The batch finishes when no lane is active.
package kernel

import (
	"sync"

	"github.com/gogpu/mandel/internal/rng"
	"github.com/gogpu/mandel/internal/wide"
)

// Params is the immutable description of one pass as seen by the kernel.
// Width and Height are the pixel dimensions of the destination buffer.
type Params struct {
	Width, Height int
	MinRe, MaxRe  float64
	MinIm, MaxIm  float64
	MaxIter       int
	AA            int
	Mode          Mode
	Seed          uint64
}

// Clamped returns p with MaxIter and AA forced to at least 1 and an unknown
// Mode replaced by ModeTrig.
func (p Params) Clamped() Params {
	p.MaxIter = max(p.MaxIter, 1)
	p.AA = max(p.AA, 1)
	if !p.Mode.Valid() {
		p.Mode = ModeTrig
	}
	return p
}

// Kernel evaluates rows. It is safe for concurrent use; each call to Row
// borrows its own jitter generator.
type Kernel struct {
	gens sync.Pool
}

// New creates a Kernel.
func New() *Kernel {
	return &Kernel{
		gens: sync.Pool{New: func() any { return new(rng.PCG32x8) }},
	}
}

// Row fills dst with the 3*p.Width RGB8 bytes of row y.
//
// Jitter is seeded from (p.Seed, y) so the same Params always produce the same
// bytes regardless of which goroutine evaluates the row. Each sample is
// quantized to RGB8 by the palette before averaging, so a pixel can land one
// step below the mean of the unquantized colors.
func (k *Kernel) Row(p Params, y int, dst []uint8) {
	p = p.Clamped()
	dst = dst[:3*p.Width]

	gen := k.gens.Get().(*rng.PCG32x8)
	defer k.gens.Put(gen)
	gen.Seed(jitterSeed(p.Seed, y))

	pal := p.Mode.Palette()
	radius := pal.EscapeRadius()
	radius2 := radius * radius
	maxIter := int64(p.MaxIter)

	scaleRe := wide.SplatF64((p.MaxRe - p.MinRe) / float64(p.Width))
	scaleIm := wide.SplatF64((p.MaxIm - p.MinIm) / float64(p.Height))
	minRe := wide.SplatF64(p.MinRe)
	minIm := wide.SplatF64(p.MinIm)
	row := wide.SplatF64(float64(y))
	half := wide.SplatF64(0.5)
	invAA := 1 / float64(p.AA)

	for x0 := 0; x0 < p.Width; x0 += wide.Lanes {
		lanes := wide.FirstN(p.Width - x0)
		col := wide.IotaF64(float64(x0))

		var acc wide.RGBx8
		for range p.AA {
			jx := gen.Float64().Sub(half)
			jy := gen.Float64().Sub(half)
			cr := col.Add(jx).MulAdd(scaleRe, minRe)
			ci := row.Add(jy).MulAdd(scaleIm, minIm)

			iter, mod := Escape(cr, ci, lanes, maxIter, radius2)
			var sample wide.RGBx8
			for i := range wide.Lanes {
				if !lanes.Lane(i) {
					continue
				}
				c := pal.Evaluate(iter[i], mod[i], maxIter)
				sample.R[i] = float64(c.R)
				sample.G[i] = float64(c.G)
				sample.B[i] = float64(c.B)
			}
			acc.Add(sample)
		}
		acc.Scale(invAA)
		acc.Store(dst[x0*3:], lanes.Count())
	}
}

// Escape iterates z = z² + c from z = 0 for every lane in active.
//
// A lane stays active while iter < maxIter and |z|² < radius2. Once it fails
// either test it is frozen for the rest of the loop: its iteration count and
// last modulus are only ever updated under the active mask. Lanes outside the
// initial mask report zero iterations.
func Escape(cr, ci wide.F64x8, active wide.Mask8, maxIter int64, radius2 float64) (iter wide.I64x8, mod wide.F64x8) {
	var zr, zi wide.F64x8
	limit := wide.SplatI64(maxIter)
	r2 := wide.SplatF64(radius2)

	for {
		zr2 := zr.Mul(zr)
		zi2 := zi.Mul(zi)
		nr := zr2.Sub(zi2).Add(cr)
		ni := zr.Mul(zi).Scale(2).Add(ci)
		m := nr.Mul(nr).Add(ni.Mul(ni))

		active = active.And(iter.Less(limit)).And(m.Less(r2))
		if !active.Any() {
			return iter, mod
		}

		iter = iter.IncMasked(active)
		mod = wide.Select(active, m, mod)
		zr = wide.Select(active, nr, zr)
		zi = wide.Select(active, ni, zi)
	}
}

// jitterSeed derives per-lane generator seeds for row y. Every lane of every
// row gets its own stream so no two lanes share a sequence, and its own
// state mixed from (seed, y, lane) so first draws are uncorrelated.
func jitterSeed(seed uint64, y int) (states, streams [wide.Lanes]uint64) {
	base := uint64(y) * wide.Lanes
	for i := range states {
		streams[i] = base + uint64(i)
		states[i] = mix64(seed ^ mix64(streams[i]))
	}
	return states, streams
}

// mix64 is the splitmix64 finalizer. It is a bijection on uint64.
func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ z>>30) * 0xbf58476d1ce4e5b9
	z = (z ^ z>>27) * 0x94d049bb133111eb
	return z ^ z>>31
}

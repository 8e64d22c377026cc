package rng

import (
	"math"
	"math/bits"
)

// Multiplier is the LCG multiplier shared by every generator in this package.
const Multiplier uint64 = 6364136223846793005

const (
	one32 uint32 = 0x3f800000         // bit pattern of float32(1)
	one64 uint64 = 0x3ff0000000000000 // bit pattern of float64(1)
)

// PCG32 is a scalar permuted congruential generator.
// The zero value is usable and equivalent to New(0, 0) without the warm-up.
type PCG32 struct {
	state  uint64
	stream uint64 // always odd once seeded
}

// New returns a generator seeded with state and stream.
func New(state, stream uint64) *PCG32 {
	var p PCG32
	p.Seed(state, stream)
	return &p
}

// Seed stores state, forces the stream odd as 2*stream+1 and discards one
// output.
func (p *PCG32) Seed(state, stream uint64) {
	p.state = state
	p.stream = stream*2 + 1
	p.Next()
}

// Next advances the generator and returns 32 random bits.
func (p *PCG32) Next() uint32 {
	return p.NextWith(p.stream)
}

// NextWith advances the generator using inc instead of the stored stream.
// Callers use it to decorrelate several sequences derived from one seed.
func (p *PCG32) NextWith(inc uint64) uint32 {
	old := p.state
	p.state = old*Multiplier + inc
	return output(old)
}

// Float32 returns a uniform value in [0, 1) built from the top 23 output bits.
func (p *PCG32) Float32() float32 {
	return toFloat32(p.Next())
}

// Float32With is Float32 driven by NextWith.
func (p *PCG32) Float32With(inc uint64) float32 {
	return toFloat32(p.NextWith(inc))
}

// Float64 returns a uniform value in [0, 1). All 32 output bits land in the
// top of the 52-bit mantissa.
func (p *PCG32) Float64() float64 {
	return toFloat64(p.Next())
}

// Float64With is Float64 driven by NextWith.
func (p *PCG32) Float64With(inc uint64) float64 {
	return toFloat64(p.NextWith(inc))
}

// State returns the current (state, stream) pair.
func (p *PCG32) State() (state, stream uint64) {
	return p.state, p.stream
}

func output(old uint64) uint32 {
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := int(old >> 59)
	return bits.RotateLeft32(xorshifted, -rot)
}

func toFloat32(u uint32) float32 {
	return math.Float32frombits(u>>9|one32) - 1
}

func toFloat64(u uint32) float64 {
	return math.Float64frombits(uint64(u)<<20|one64) - 1
}

package rng

import "github.com/gogpu/mandel/internal/wide"

// PCG32x8 advances wide.Lanes independent PCG32 generators in lockstep.
//
// The recurrence and output permutation are identical to PCG32, so lane i is
// bit-for-bit the sequence of New(states[i], streams[i]).
type PCG32x8 struct {
	state  [wide.Lanes]uint64
	stream [wide.Lanes]uint64
}

// NewX8 returns a batched generator seeded per lane.
func NewX8(states, streams [wide.Lanes]uint64) *PCG32x8 {
	var p PCG32x8
	p.Seed(states, streams)
	return &p
}

// Seed seeds every lane exactly as PCG32.Seed does, including the warm-up.
func (p *PCG32x8) Seed(states, streams [wide.Lanes]uint64) {
	p.state = states
	for i := range p.stream {
		p.stream[i] = streams[i]*2 + 1
	}
	p.Next()
}

// Next advances all lanes and returns one 32-bit output per lane.
func (p *PCG32x8) Next() [wide.Lanes]uint32 {
	var out [wide.Lanes]uint32
	for i := range p.state {
		old := p.state[i]
		p.state[i] = old*Multiplier + p.stream[i]
		out[i] = output(old)
	}
	return out
}

// Float64 returns one uniform [0, 1) value per lane using the scalar
// double extraction.
func (p *PCG32x8) Float64() wide.F64x8 {
	u := p.Next()
	var out wide.F64x8
	for i := range u {
		out[i] = toFloat64(u[i])
	}
	return out
}

// lane returns a scalar generator holding lane i's current state.
func (p *PCG32x8) lane(i int) PCG32 {
	return PCG32{state: p.state[i], stream: p.stream[i]}
}

package wide

// RGBx8 holds 8 RGB pixels in Structure-of-Arrays (SoA) layout.
//
// Traditional Array-of-Structures (AoS) layout:
//
//	[R0, G0, B0, R1, G1, B1, ...]
//
// Structure-of-Arrays (SoA) layout:
//
//	R: [R0, R1, R2, ..., R7]
//	G: [G0, G1, G2, ..., G7]
//	B: [B0, B1, B2, ..., B7]
//
// Channels are kept as float64 in [0, 255] while anti-aliasing samples are
// accumulated and only truncated to bytes on Store.
type RGBx8 struct {
	R, G, B F64x8
}

// Add accumulates other into b channel by channel.
func (b *RGBx8) Add(other RGBx8) {
	b.R = b.R.Add(other.R)
	b.G = b.G.Add(other.G)
	b.B = b.B.Add(other.B)
}

// Scale multiplies every channel by s.
func (b *RGBx8) Scale(s float64) {
	b.R = b.R.Scale(s)
	b.G = b.G.Scale(s)
	b.B = b.B.Scale(s)
}

// Store writes the first n pixels to dst as packed RGB8 triples.
// dst must have at least 3*n bytes. Channels are clamped to [0, 255] and
// truncated toward zero.
func (b *RGBx8) Store(dst []byte, n int) {
	r := b.R.Clamp(0, 255)
	g := b.G.Clamp(0, 255)
	bl := b.B.Clamp(0, 255)
	for i := 0; i < n && i < Lanes; i++ {
		offset := i * 3
		dst[offset+0] = uint8(r[i])
		dst[offset+1] = uint8(g[i])
		dst[offset+2] = uint8(bl[i])
	}
}

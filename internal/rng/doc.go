// Package rng provides the deterministic permuted congruential generator used
// for anti-aliasing jitter.
//
// PCG32 is a 64-bit LCG whose output is an xor-folded, randomly rotated 32-bit
// word of the pre-advance state. PCG32x8 advances 8 independent generators in
// lockstep; lane i of PCG32x8 produces exactly the sequence of a PCG32 seeded
// with lane i's (state, stream).
//
// Generators are not safe for concurrent use. Each goroutine owns its own.
package rng

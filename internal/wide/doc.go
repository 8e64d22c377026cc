// Package wide provides SIMD-friendly lane types for batched escape-time
// evaluation.
//
// This package implements fixed-width lane vectors (F64x8, I64x8) and a lane
// predicate (Mask8) designed to enable Go compiler auto-vectorization. By using
// fixed-size arrays and simple loops, these types allow the compiler to
// generate SIMD instructions on supported architectures (SSE, AVX, NEON).
//
// # Lane Types
//
// F64x8: 8 float64 values for the complex iteration and color math.
// I64x8: 8 int64 values for per-lane iteration counters.
// Mask8: one bit per lane, the result of lane-wise comparisons.
//
// # Predicated Updates
//
// Divergent lanes are never handled with branches. A comparison yields a
// Mask8, and Select/IncMasked apply an update only where the mask bit is set:
//
//	active := iter.Less(maxIter).And(mod2.Less(radius2))
//	iter = iter.IncMasked(active)
//	last = Select(active, mod2, last)
//
// # RGBx8
//
// RGBx8 provides Structure-of-Arrays (SoA) layout for accumulating 8 RGB
// pixels across anti-aliasing samples before they are stored as RGB8 bytes.
//
// # Design Philosophy
//
//   - Use simple loops over fixed-size arrays for auto-vectorization
//   - Avoid unsafe and assembly - rely on compiler optimization
//   - Keep functions small and inlineable
//   - Provide benchmarks to verify SIMD performance gains
package wide

// Lanes is the number of lanes processed by every wide type in this package.
const Lanes = 8

package wide

import "math"

// F64x8 represents 8 float64 values for SIMD-style operations.
// Designed for Go compiler auto-vectorization with fixed-size arrays.
type F64x8 [Lanes]float64

// SplatF64 creates F64x8 with all elements set to n.
// This is useful for initializing constants or broadcasting a single value.
func SplatF64(n float64) F64x8 {
	var result F64x8
	for i := range result {
		result[i] = n
	}
	return result
}

// IotaF64 returns [base, base+1, ..., base+7].
// Used to turn a batch start column into per-lane column indices.
func IotaF64(base float64) F64x8 {
	var result F64x8
	for i := range result {
		result[i] = base + float64(i)
	}
	return result
}

// Add performs element-wise addition.
func (v F64x8) Add(other F64x8) F64x8 {
	var result F64x8
	for i := range v {
		result[i] = v[i] + other[i]
	}
	return result
}

// Sub performs element-wise subtraction.
func (v F64x8) Sub(other F64x8) F64x8 {
	var result F64x8
	for i := range v {
		result[i] = v[i] - other[i]
	}
	return result
}

// Mul performs element-wise multiplication.
func (v F64x8) Mul(other F64x8) F64x8 {
	var result F64x8
	for i := range v {
		result[i] = v[i] * other[i]
	}
	return result
}

// MulAdd computes v*m + a for each element.
// The result is rounded twice; it is not a fused multiply-add.
func (v F64x8) MulAdd(m, a F64x8) F64x8 {
	var result F64x8
	for i := range v {
		result[i] = v[i]*m[i] + a[i]
	}
	return result
}

// Scale multiplies every element by s.
func (v F64x8) Scale(s float64) F64x8 {
	var result F64x8
	for i := range v {
		result[i] = v[i] * s
	}
	return result
}

// Less returns a mask with bit i set where v[i] < other[i].
// Comparisons involving NaN are false, so NaN lanes drop out of the mask.
func (v F64x8) Less(other F64x8) Mask8 {
	var m Mask8
	for i := range v {
		if v[i] < other[i] {
			m |= 1 << i
		}
	}
	return m
}

// Select returns a[i] where mask bit i is set and b[i] elsewhere.
func Select(mask Mask8, a, b F64x8) F64x8 {
	var result F64x8
	for i := range result {
		if mask.Lane(i) {
			result[i] = a[i]
		} else {
			result[i] = b[i]
		}
	}
	return result
}

// Clamp clamps each element to [minVal, maxVal].
// NaN elements become minVal.
func (v F64x8) Clamp(minVal, maxVal float64) F64x8 {
	var result F64x8
	for i := range v {
		switch {
		case math.IsNaN(v[i]) || v[i] < minVal:
			result[i] = minVal
		case v[i] > maxVal:
			result[i] = maxVal
		default:
			result[i] = v[i]
		}
	}
	return result
}

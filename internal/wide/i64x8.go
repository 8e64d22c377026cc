package wide

// I64x8 represents 8 int64 values, used for per-lane iteration counters.
type I64x8 [Lanes]int64

// SplatI64 creates I64x8 with all elements set to n.
func SplatI64(n int64) I64x8 {
	var result I64x8
	for i := range result {
		result[i] = n
	}
	return result
}

// Less returns a mask with bit i set where v[i] < other[i].
func (v I64x8) Less(other I64x8) Mask8 {
	var m Mask8
	for i := range v {
		if v[i] < other[i] {
			m |= 1 << i
		}
	}
	return m
}

// IncMasked adds one to every lane whose mask bit is set.
// Lanes outside the mask keep their value.
func (v I64x8) IncMasked(mask Mask8) I64x8 {
	result := v
	for i := range result {
		result[i] += int64(mask >> i & 1)
	}
	return result
}

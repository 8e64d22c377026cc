package wide

import "math/bits"

// Mask8 holds one predicate bit per lane; bit i belongs to lane i.
type Mask8 uint8

// AllLanes has every lane bit set.
const AllLanes Mask8 = 0xFF

// FirstN returns a mask with the lowest n lane bits set.
// n is clamped to [0, Lanes].
func FirstN(n int) Mask8 {
	switch {
	case n <= 0:
		return 0
	case n >= Lanes:
		return AllLanes
	}
	return Mask8(1<<n - 1)
}

// And returns the lane-wise conjunction of m and other.
func (m Mask8) And(other Mask8) Mask8 { return m & other }

// Any reports whether at least one lane is set.
func (m Mask8) Any() bool { return m != 0 }

// Lane reports whether lane i is set.
func (m Mask8) Lane(i int) bool { return m>>i&1 == 1 }

// Count returns the number of set lanes.
func (m Mask8) Count() int { return bits.OnesCount8(uint8(m)) }

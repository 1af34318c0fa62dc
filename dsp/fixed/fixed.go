// Package fixed provides scaled-integer helpers shared by the fixed-point
// processors: saturation, symmetric rounding shifts and bit-budget checks.
//
// All shifts in this package are sign-symmetric: a negative value shifted
// right rounds exactly like its positive counterpart, so processors built on
// them keep odd symmetry.
package fixed

import (
	"fmt"
	"math"
)

const (
	// SampleMax is the largest 16-bit sample value.
	SampleMax = math.MaxInt16
	// SampleMin is the smallest 16-bit sample value.
	SampleMin = math.MinInt16
	// SampleBits is the signed width of the external sample stream.
	SampleBits = 16
)

// OverflowError reports an intermediate that left its declared bit budget.
// It is raised (as a panic value) by verification builds only; it marks an
// implementation defect, never a recoverable runtime condition.
type OverflowError struct {
	Quantity string
	Value    int64
	Bits     uint
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("fixed: %s = %d overflows %d-bit budget", e.Quantity, e.Value, e.Bits)
}

// Saturate16 clamps v to the 16-bit sample range.
func Saturate16(v int64) int16 {
	return int16(Saturate(v, SampleBits))
}

// Saturate clamps v to the range of a signed integer of the given width.
func Saturate(v int64, bits uint) int64 {
	if bits >= 64 {
		return v
	}

	if bits == 0 {
		return 0
	}

	hi := int64(1)<<(bits-1) - 1
	lo := -hi - 1

	if v > hi {
		return hi
	}

	if v < lo {
		return lo
	}

	return v
}

// Fits reports whether v is representable as a signed integer of the given
// width.
func Fits(v int64, bits uint) bool {
	if bits >= 64 {
		return true
	}

	if bits == 0 {
		return false
	}

	hi := int64(1)<<(bits-1) - 1

	return v <= hi && v >= -hi-1
}

// Check panics with an *OverflowError when v does not fit the budget.
func Check(quantity string, v int64, bits uint) {
	if !Fits(v, bits) {
		panic(&OverflowError{Quantity: quantity, Value: v, Bits: bits})
	}
}

// Abs returns |v| as an unsigned value. It is exact for math.MinInt64.
func Abs(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}

	return uint64(v)
}

// Sign returns -1 for negative v and 1 otherwise.
func Sign(v int64) int64 {
	if v < 0 {
		return -1
	}

	return 1
}

// TruncShift shifts v right by n bits, rounding toward zero (magnitude
// truncation).
func TruncShift(v int64, n uint) int64 {
	if v < 0 {
		return -(-v >> n)
	}

	return v >> n
}

// RoundShift shifts v right by n bits, rounding to nearest with ties away
// from zero.
func RoundShift(v int64, n uint) int64 {
	if n == 0 {
		return v
	}

	half := int64(1) << (n - 1)
	if v < 0 {
		return -((-v + half) >> n)
	}

	return (v + half) >> n
}

// Shift scales v by 2^n: left for n >= 0, magnitude-truncating right
// otherwise.
func Shift(v int64, n int) int64 {
	if n >= 0 {
		return v << uint(n)
	}

	return TruncShift(v, uint(-n))
}

// ApplySign returns the magnitude m with the sign selected by negative.
func ApplySign(m uint64, negative bool) int64 {
	if negative {
		return -int64(m)
	}

	return int64(m)
}

package testutil

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"testing"
)

// RequireWithinLSB fails t if got and want differ in length or if any
// sample differs from its reference by more than lsb.
func RequireWithinLSB(t *testing.T, got []int16, want []float64, lsb float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		diff := math.Abs(float64(got[i]) - want[i])
		if diff > lsb {
			t.Fatalf("index %d: got %d, want %v (diff %v > %v LSB)", i, got[i], want[i], diff, lsb)
		}
	}
}

// MaxAbsDiff returns the largest absolute difference between fixed-point
// samples and their reference.
func MaxAbsDiff(got []int16, want []float64) (float64, error) {
	if len(got) != len(want) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(got), len(want))
	}

	maxDiff := 0.0

	for i := range got {
		d := math.Abs(float64(got[i]) - want[i])
		if d > maxDiff {
			maxDiff = d
		}
	}

	return maxDiff, nil
}

// Peak16 returns the largest sample magnitude.
func Peak16(x []int16) int {
	peak := 0

	for _, v := range x {
		a := int(v)
		if a < 0 {
			a = -a
		}

		peak = max(peak, a)
	}

	return peak
}

// Hash16 returns the 64-bit FNV-1a hash of the samples in little-endian
// byte order, for compact golden-vector checks.
func Hash16(x []int16) uint64 {
	h := fnv.New64a()

	var b [2]byte
	for _, v := range x {
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		_, _ = h.Write(b[:])
	}

	return h.Sum64()
}

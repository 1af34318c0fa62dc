package ladder

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// ErrFormat reports a precision budget that is inconsistent or cannot be
// proven overflow-free.
var ErrFormat = errors.New("ladder: invalid fixed-point format")

const (
	maxCodeValue = 1023
	maxStageMag  = 1 << 15
	maxStageDiff = 1<<16 - 1
)

// Format is the fixed-point precision budget of the filter core. All the
// precision drafts of the ladder (plain, small, oversampled, optimized)
// collapse into one Format value; DefaultFormat holds the final tuning.
type Format struct {
	// CoeffBits is the binary point of the cutoff coefficient:
	// g = cutoff / 2^CoeffBits.
	CoeffBits uint
	// StageShifts[j] is the left shift (negative: right shift) applied to
	// stage j before it is weighted by g^(3-j). Every weighted term must
	// land on the same binary point, so the table steps by CoeffBits.
	StageShifts [4]int
	// TapShift reduces the weighted stage sum to the feedback tap word.
	TapShift uint
	// ResonanceBits is the binary point of the feedback gain:
	// k = quality / 2^ResonanceBits.
	ResonanceBits uint
	// DivisorBits is the binary point of 1 + k*g^4 in the feedback solve.
	DivisorBits uint
	// GainBits is the binary point of the stage gain G = g/(1+g).
	GainBits uint
	// AccumulatorBits is the signed width every intermediate must fit.
	AccumulatorBits uint
}

// DefaultFormat returns the reference precision budget: 12-bit cutoff
// coefficient, stage sum on bit 36, k = quality/512, 24-bit solve divisor,
// 20-bit stage gain and a 53-bit accumulator.
func DefaultFormat() Format {
	return Format{
		CoeffBits:       12,
		StageShifts:     [4]int{0, 12, 24, 36},
		TapShift:        24,
		ResonanceBits:   9,
		DivisorBits:     24,
		GainBits:        20,
		AccumulatorBits: 53,
	}
}

// SumBits returns the binary point of the weighted stage sum.
func (f Format) SumBits() int {
	return f.StageShifts[0] + 3*int(f.CoeffBits)
}

func (f Format) feedbackShift() uint {
	return uint(f.SumBits()) - f.TapShift + f.ResonanceBits
}

func (f Format) resonanceGainShift() uint {
	return 4*f.CoeffBits + f.ResonanceBits - f.DivisorBits
}

// Bounds holds proven worst-case magnitudes of the per-sample intermediates
// for stage values in the 16-bit range and control codes up to 1023.
// Saturated at math.MaxUint64 when a bound does not fit 64 bits.
type Bounds struct {
	Sum             uint64 // weighted stage sum S
	FeedbackProduct uint64 // quality * tap
	Feedback        uint64 // k*S in sample units
	Dividend        uint64 // |x - k*S| << DivisorBits
	ResonanceGain   uint64 // quality * cutoff^4
	Divisor         uint64 // 1 + k*g^4 in DivisorBits
	GainDividend    uint64 // cutoff << GainBits
	StageProduct    uint64 // 2*G*(u - s)
}

// Bounds computes the worst-case magnitudes for the format. The result is
// only meaningful for a format that passes the structural checks of
// Validate.
func (f Format) Bounds() Bounds {
	var b Bounds

	for j, shift := range f.StageShifts {
		b.Sum = addSat(b.Sum, mulSat(shiftBound(maxStageMag, shift), powSat(maxCodeValue, 3-j)))
	}

	tap := shrBound(b.Sum, f.TapShift)
	b.FeedbackProduct = mulSat(maxCodeValue, tap)
	b.Feedback = shrBound(b.FeedbackProduct, f.feedbackShift())
	b.Dividend = shlSat(addSat(maxStageMag, b.Feedback), f.DivisorBits)
	b.ResonanceGain = powSat(maxCodeValue, 5)
	b.Divisor = addSat(shlSat(1, f.DivisorBits), shrBound(b.ResonanceGain, f.resonanceGainShift()))
	b.GainDividend = shlSat(maxCodeValue, f.GainBits)

	gain := b.GainDividend / (1<<min(f.CoeffBits, 63) + maxCodeValue)
	b.StageProduct = mulSat(2, mulSat(gain, maxStageDiff))

	return b
}

// Validate checks that the stage shift table is consistent and that every
// proven bound fits the accumulator budget.
func (f Format) Validate() error {
	if f.CoeffBits < 10 || f.CoeffBits > 16 {
		return fmt.Errorf("%w: coefficient bits must be in [10, 16] so that g < 1 for 10-bit codes: %d",
			ErrFormat, f.CoeffBits)
	}

	if f.AccumulatorBits < 17 || f.AccumulatorBits > 64 {
		return fmt.Errorf("%w: accumulator bits must be in [17, 64]: %d", ErrFormat, f.AccumulatorBits)
	}

	if f.GainBits == 0 || f.GainBits > 32 {
		return fmt.Errorf("%w: gain bits must be in [1, 32]: %d", ErrFormat, f.GainBits)
	}

	sumBits := f.SumBits()
	if sumBits < 0 {
		return fmt.Errorf("%w: stage sum binary point is negative: %d", ErrFormat, sumBits)
	}

	for j, shift := range f.StageShifts {
		point := shift + (3-j)*int(f.CoeffBits)
		if point != sumBits {
			return fmt.Errorf("%w: stage %d term lands on bit %d, stage 0 on bit %d",
				ErrFormat, j, point, sumBits)
		}
	}

	if int(f.TapShift) > sumBits+int(f.ResonanceBits) {
		return fmt.Errorf("%w: tap shift %d exceeds sum point %d plus resonance bits %d",
			ErrFormat, f.TapShift, sumBits, f.ResonanceBits)
	}

	if f.DivisorBits > 4*f.CoeffBits+f.ResonanceBits {
		return fmt.Errorf("%w: divisor bits %d exceed the resonance gain point %d",
			ErrFormat, f.DivisorBits, 4*f.CoeffBits+f.ResonanceBits)
	}

	b := f.Bounds()
	limit := uint64(1) << (f.AccumulatorBits - 1)

	checks := []struct {
		name  string
		value uint64
	}{
		{"stage sum", b.Sum},
		{"feedback product", b.FeedbackProduct},
		{"solve dividend", b.Dividend},
		{"resonance gain", b.ResonanceGain},
		{"solve divisor", b.Divisor},
		{"gain dividend", b.GainDividend},
		{"stage product", b.StageProduct},
	}

	for _, c := range checks {
		if c.value >= limit {
			return fmt.Errorf("%w: %s bound %d exceeds the %d-bit accumulator",
				ErrFormat, c.name, c.value, f.AccumulatorBits)
		}
	}

	return nil
}

func mulSat(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}

	return lo
}

func addSat(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}

	return sum
}

func shlSat(a uint64, n uint) uint64 {
	if a == 0 {
		return 0
	}

	if n >= 64 || a > math.MaxUint64>>n {
		return math.MaxUint64
	}

	return a << n
}

func shrBound(a uint64, n uint) uint64 {
	if n >= 64 {
		return 0
	}

	return a >> n
}

func powSat(a uint64, p int) uint64 {
	r := uint64(1)
	for range p {
		r = mulSat(r, a)
	}

	return r
}

func shiftBound(a uint64, shift int) uint64 {
	if shift >= 0 {
		return shlSat(a, uint(shift))
	}

	return shrBound(a, uint(-shift))
}

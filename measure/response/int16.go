package response

import "math"

// SampleProcessor16 is a stateful processor of 16-bit samples.
type SampleProcessor16 interface {
	ProcessSample(x int16) int16
	Reset()
}

// Int16 adapts a 16-bit processor to Processor. Inputs are rounded to the
// nearest integer and saturated to the 16-bit range.
type Int16 struct {
	P SampleProcessor16
}

// ProcessSample implements Processor.
func (a Int16) ProcessSample(x float64) float64 {
	return float64(a.P.ProcessSample(Quantize16(x)))
}

// Reset implements Processor.
func (a Int16) Reset() { a.P.Reset() }

// Quantize16 rounds x to the nearest 16-bit sample, saturating.
func Quantize16(x float64) int16 {
	r := math.Round(x)

	switch {
	case r >= math.MaxInt16:
		return math.MaxInt16
	case r <= math.MinInt16:
		return math.MinInt16
	case math.IsNaN(r):
		return 0
	default:
		return int16(r)
	}
}

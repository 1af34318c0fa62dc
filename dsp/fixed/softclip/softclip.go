// Package softclip implements a rational saturating nonlinearity for 16-bit
// samples that approximates 2^15 * tanh(3x / 2^15):
//
//	f(x) = (x*2^30 + x*2^31 + x^3) / (2^30 + x^2 + 2x^2)
//
// The curve is odd, monotonic over the 16-bit range, has a slope of 3 at the
// origin and reaches exactly ±2^15 at the range ends, so its output never
// leaves the sample range. The division runs on an unsigned divider: the
// numerator magnitude is divided and its sign restored afterwards.
package softclip

import (
	"github.com/cwbudde/algo-ladder/dsp/fixed"
	"github.com/cwbudde/algo-ladder/dsp/fixed/divider"
)

const (
	unityShift = 30
	unity      = 1 << unityShift
)

// MaxDividend is the largest dividend Prepare produces, reached at -2^15.
const MaxDividend uint64 = 1 << 47

// Clipper applies the rational soft clip using a divider.
type Clipper struct {
	div divider.Divider
}

// New returns a Clipper dividing with div. A nil div selects the restoring
// divider.
func New(div divider.Divider) *Clipper {
	if div == nil {
		div = divider.Restoring{}
	}

	return &Clipper{div: div}
}

// Process clips one sample.
func (c *Clipper) Process(x int16) int16 {
	req, negative := Prepare(x)
	q, _ := c.div.Divide(req.Dividend, req.Divisor)

	return Finish(q, negative)
}

// ProcessInPlace clips a buffer in place.
func (c *Clipper) ProcessInPlace(buf []int16) {
	for i := range buf {
		buf[i] = c.Process(buf[i])
	}
}

// Prepare returns the unsigned division request for x and whether the
// numerator was negative. It is the first half of Process for callers that
// schedule the division themselves.
func Prepare(x int16) (req divider.Request, negative bool) {
	v := int64(x)
	sq := v * v

	n := v<<unityShift + v<<(unityShift+1) + sq*v
	d := unity + sq + sq<<1

	return divider.Request{Dividend: fixed.Abs(n), Divisor: uint64(d)}, n < 0
}

// Finish restores the numerator sign on the quotient of a prepared request.
func Finish(quotient uint64, negative bool) int16 {
	return fixed.Saturate16(fixed.ApplySign(quotient, negative))
}

// Float evaluates the same rational function in floating point.
func Float(x float64) float64 {
	sq := x * x
	return (x*unity + x*2*unity + sq*x) / (unity + 3*sq)
}

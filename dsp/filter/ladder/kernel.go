package ladder

import (
	"github.com/cwbudde/algo-ladder/dsp/fixed"
	"github.com/cwbudde/algo-ladder/dsp/fixed/divider"
)

const stageCount = 4

// squelch is the largest feedback term, in LSB, that a zero input ignores.
const squelch = 4

var stageNames = [stageCount]string{"stage 0", "stage 1", "stage 2", "stage 3"}

// sample carries one input sample through the kernel. Controls are latched
// into it when the sample is accepted.
type sample struct {
	gainReq  divider.Request
	solveReq divider.Request
	negative bool
	soft     bool
	quiet    bool // input is exactly zero

	gain int64 // G = g/(1+g) in GainBits
	u    int64 // signal entering the next stage
}

// begin latches the controls and computes both division requests from the
// current stage registers.
//
// The feedback solve is u = (x - k*S) / (1 + k*g^4) with
// S = g^3*s0 + g^2*s1 + g*s2 + s3. Every term of S sits on the SumBits
// binary point, the tap and the feedback product are truncated toward zero.
// On a zero input a feedback term of at most squelch LSB is dropped.
func (f *Filter) begin(x int16) sample {
	fm := &f.format
	co := MapControls(f.cutoff, f.quality)
	c, q := co.Cutoff, co.Resonance

	c2 := c * c
	c3 := c2 * c
	weights := [stageCount]int64{c3, c2, c, 1}

	var sum int64
	for j, w := range weights {
		sum += fixed.Shift(int64(f.state.Stage[j]), fm.StageShifts[j]) * w
	}

	tap := fixed.TruncShift(sum, fm.TapShift)
	product := q * tap
	feedback := fixed.TruncShift(product, fm.feedbackShift())

	quiet := x == 0
	if quiet && fixed.Abs(feedback) <= squelch {
		feedback = 0
	}

	n := int64(x) - feedback

	resonanceGain := q * c3 * c
	divisor := int64(1)<<fm.DivisorBits + resonanceGain>>fm.resonanceGainShift()

	if f.verify {
		fixed.Check("stage sum", sum, fm.AccumulatorBits)
		fixed.Check("feedback product", product, fm.AccumulatorBits)
		fixed.Check("solve dividend", n<<fm.DivisorBits, fm.AccumulatorBits)
		fixed.Check("resonance gain", resonanceGain, fm.AccumulatorBits)
		fixed.Check("solve divisor", divisor, fm.AccumulatorBits)
		fixed.Check("gain dividend", c<<fm.GainBits, fm.AccumulatorBits)
	}

	return sample{
		gainReq: divider.Request{
			Dividend: uint64(c) << fm.GainBits,
			Divisor:  uint64(1)<<fm.CoeffBits + uint64(c),
		},
		solveReq: divider.Request{
			Dividend: fixed.Abs(n) << fm.DivisorBits,
			Divisor:  uint64(divisor),
		},
		negative: n < 0,
		soft:     f.soft,
		quiet:    quiet,
	}
}

// settle restores the sign of the solve quotient and clamps it to the
// sample range.
func (f *Filter) settle(p *sample, quotient uint64) {
	p.u = int64(fixed.Saturate16(fixed.ApplySign(quotient, p.negative)))
}

// advance runs one trapezoidal one-pole stage. With v = G*(u - s) the stage
// output is s + v and the register moves by 2v, both rounded to nearest.
// On a zero input a register step that rounds to zero while v is nonzero
// becomes one LSB toward the stage input, so silence drains every register.
// A zero gain (cutoff code 0) leaves v at zero and freezes the stages.
func (f *Filter) advance(j int, p *sample) {
	fm := &f.format
	s := int64(f.state.Stage[j])

	v := p.gain * (p.u - s)
	out := s + fixed.RoundShift(v, fm.GainBits)

	step := fixed.RoundShift(2*v, fm.GainBits)
	if p.quiet && step == 0 && v != 0 {
		step = fixed.Sign(p.u - s)
	}

	next := s + step

	if f.verify {
		fixed.Check("stage product", 2*v, fm.AccumulatorBits)
		fixed.Check(stageNames[j], next, fixed.SampleBits)
	}

	f.state.Stage[j] = fixed.Saturate16(next)
	p.u = out
}

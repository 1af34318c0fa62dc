package ladder

import "math"

// Code is a 10-bit control word from the cutoff or quality port. Only the
// low 10 bits are used; higher bits are dropped as a 10-bit port would.
type Code uint16

// MaxCode is the largest control code.
const MaxCode Code = 1<<10 - 1

// Clock and sample rates of the reference hardware.
const (
	// ClockHz is the system clock.
	ClockHz = 100e6
	// NominalPeriod is the clock-cycle period of one external sample.
	NominalPeriod = 2272
	// OversampledPeriod is the clock-cycle period of one internal sample at
	// 4x oversampling.
	OversampledPeriod = NominalPeriod / 4
	// NominalSampleRate is the external sample rate, about 44.014 kHz.
	NominalSampleRate = ClockHz / NominalPeriod
	// InternalSampleRate is the 4x oversampled core rate, about 176.056 kHz.
	InternalSampleRate = ClockHz / OversampledPeriod
)

// Coefficients are the scaled integer coefficients derived from the two
// control codes for one sample.
type Coefficients struct {
	// Cutoff is g scaled by 2^CoeffBits.
	Cutoff int64
	// Resonance is k scaled by 2^ResonanceBits.
	Resonance int64
}

// MapControls maps the control codes to coefficients. The mapping is the
// identity on the low 10 bits of each code; the binary points live in the
// Format.
func MapControls(cutoff, quality Code) Coefficients {
	return Coefficients{
		Cutoff:    int64(cutoff & MaxCode),
		Resonance: int64(quality & MaxCode),
	}
}

// G returns the cutoff coefficient g as a real number.
func (c Coefficients) G(f Format) float64 {
	return math.Ldexp(float64(c.Cutoff), -int(f.CoeffBits))
}

// K returns the feedback gain k as a real number.
func (c Coefficients) K(f Format) float64 {
	return math.Ldexp(float64(c.Resonance), -int(f.ResonanceBits))
}

// CutoffHz returns the analog-prototype cutoff frequency selected by code at
// the given sample rate. The coefficient is g = wc*T/2 without prewarping,
// so the digital -12 dB point drifts below this value near Nyquist.
func CutoffHz(code Code, f Format, sampleRate float64) float64 {
	g := MapControls(code, 0).G(f)
	return g * sampleRate / math.Pi
}

// CutoffCode returns the code whose unwarped cutoff is closest to hz,
// clamped to [0, MaxCode].
func CutoffCode(hz float64, f Format, sampleRate float64) Code {
	return codeFromG(math.Pi*hz/sampleRate, f)
}

// CutoffCodeWarped returns the code whose bilinear-prewarped coefficient
// g = tan(pi*hz/fs) places the digital cutoff at hz, clamped to
// [0, MaxCode].
func CutoffCodeWarped(hz float64, f Format, sampleRate float64) Code {
	w := math.Pi * hz / sampleRate
	if w >= math.Pi/2 {
		return MaxCode
	}

	return codeFromG(math.Tan(w), f)
}

func codeFromG(g float64, f Format) Code {
	v := math.Round(math.Ldexp(g, int(f.CoeffBits)))
	if !(v > 0) {
		return 0
	}

	if v >= float64(MaxCode) {
		return MaxCode
	}

	return Code(v)
}

// Taper maps a linear pot position to an exponential cutoff code,
// 2^(10*pos/1023) - 1, so equal pot travel gives roughly equal musical
// intervals. Taper(0) is 0 and Taper(MaxCode) is MaxCode.
func Taper(pos Code) Code {
	p := float64(pos&MaxCode) / float64(MaxCode)
	v := math.Round(taperExp(p*10*math.Ln2)) - 1

	switch {
	case v <= 0:
		return 0
	case v >= float64(MaxCode):
		return MaxCode
	default:
		return Code(v)
	}
}

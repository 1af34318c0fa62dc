package ladder

import (
	"math"
	"math/cmplx"
)

// TransferFunction evaluates the linear small-signal response of the ladder
// at hz for the given controls. Each stage is the trapezoidal one-pole
//
//	T(z) = G(1 + z^-1) / (1 - (1-2G)z^-1),  G = g/(1+g)
//
// whose register follows its input as Q(z) = 2G z^-1 / (1 - (1-2G)z^-1).
// The feedback solve weights the registers by g^(3-j), so
//
//	H(z) = T^4 / (1 + k*g^4 + k*Q*(g^3 + g^2*T + g*T^2 + T^3))
//
// With k = 0 this is the bilinear transform of four poles at wc = 2fs*g.
// Soft clip and quantization are ignored.
func TransferFunction(cutoff, quality Code, f Format, sampleRate, hz float64) complex128 {
	co := MapControls(cutoff, quality)
	g := co.G(f)
	k := complex(co.K(f), 0)

	if g == 0 {
		return 0
	}

	gain := complex(g/(1+g), 0)
	zi := cmplx.Exp(complex(0, -2*math.Pi*hz/sampleRate))
	den := 1 - (1-2*gain)*zi

	t := gain * (1 + zi) / den
	q := 2 * gain * zi / den

	gc := complex(g, 0)
	t2 := t * t
	sum := gc*gc*gc + gc*gc*t + gc*t2 + t2*t

	return t2 * t2 / (1 + k*gc*gc*gc*gc + k*q*sum)
}

// MagnitudeDB returns |TransferFunction| in decibels.
func MagnitudeDB(cutoff, quality Code, f Format, sampleRate, hz float64) float64 {
	return 20 * math.Log10(cmplx.Abs(TransferFunction(cutoff, quality, f, sampleRate, hz)))
}

// DCGain returns the passband gain 1 / (1 + k(1 + g + g^2 + g^3 + g^4)).
// A cutoff code of 0 closes the filter and has gain 0.
func DCGain(cutoff, quality Code, f Format) float64 {
	co := MapControls(cutoff, quality)
	g := co.G(f)

	if g == 0 {
		return 0
	}

	return 1 / (1 + co.K(f)*(1+g+g*g+g*g*g+g*g*g*g))
}

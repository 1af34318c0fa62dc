// Package signal generates deterministic 16-bit test signals: tones, square
// waves, seeded noise and impulses.
package signal

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-ladder/dsp/fixed"
)

// Sine16 generates a sine wave truncated toward zero to 16-bit samples.
func Sine16(freqHz, sampleRate, amplitude float64, length int) []int16 {
	return Tones16(sampleRate, length, Tone{Hz: freqHz, Amplitude: amplitude})
}

// Tone is one sinusoidal component of a test signal.
type Tone struct {
	Hz        float64
	Amplitude float64
}

// Tones16 generates the sum of tones truncated toward zero and saturated
// to 16-bit samples. Truncation keeps Tones16 odd: negating every amplitude
// negates every sample.
func Tones16(sampleRate float64, length int, tones ...Tone) []int16 {
	out := make([]int16, length)
	for i := range out {
		var v float64
		for _, tn := range tones {
			v += tn.Amplitude * math.Sin(2*math.Pi*tn.Hz*float64(i)/sampleRate)
		}

		out[i] = saturate(math.Trunc(v))
	}

	return out
}

// Square16 generates a full-scale square wave: 32767 while the sine of the
// same frequency is positive, -32768 otherwise.
func Square16(freqHz, sampleRate float64, length int) []int16 {
	out := make([]int16, length)
	for i := range out {
		if math.Sin(2*math.Pi*freqHz*float64(i)/sampleRate) > 0 {
			out[i] = math.MaxInt16
		} else {
			out[i] = math.MinInt16
		}
	}

	return out
}

// Noise16 generates uniform white noise in [-amplitude, amplitude] with a
// fixed seed.
func Noise16(seed int64, amplitude int16, length int) []int16 {
	out := make([]int16, length)
	rng := rand.New(rand.NewSource(seed))
	span := 2*int(amplitude) + 1

	for i := range out {
		out[i] = int16(rng.Intn(span) - int(amplitude))
	}

	return out
}

// Impulse16 generates a single sample of the given value at pos.
func Impulse16(length, pos int, value int16) []int16 {
	out := make([]int16, length)
	if pos >= 0 && pos < length {
		out[pos] = value
	}

	return out
}

// Negate16 returns -x for every sample, saturating -32768 to 32767.
func Negate16(x []int16) []int16 {
	out := make([]int16, len(x))
	for i, v := range x {
		out[i] = saturate(-float64(v))
	}

	return out
}

// Float64 converts 16-bit samples to float64.
func Float64(x []int16) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}

	return out
}

func saturate(v float64) int16 {
	return fixed.Saturate16(int64(v))
}

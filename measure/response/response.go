// Package response measures the steady-state magnitude response and the
// harmonic distortion of sample processors with an FFT.
//
// Tones are snapped to FFT bin centers, so a tone's energy lands in a single
// bin and the level read back is exact up to the processor's own noise.
package response

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultFFTSize = 16384
	hannGain       = 0.5
)

// ErrLength reports a signal whose length does not match the FFT size.
var ErrLength = errors.New("response: signal length must equal the FFT size")

// Processor is a stateful mono sample processor.
type Processor interface {
	ProcessSample(x float64) float64
	Reset()
}

// Config holds analyzer parameters.
type Config struct {
	SampleRate float64
	// FFTSize is the analysis length. Zero selects 16384.
	FFTSize int
	// Settle is the number of samples discarded before analysis so that
	// transients decay. Zero selects FFTSize/2.
	Settle int
	// Hann applies a periodic Hann window before the transform.
	Hann bool
}

// Point is one measured frequency.
type Point struct {
	Hz    float64 // bin-snapped frequency
	Level float64 // output amplitude
	Gain  float64 // output amplitude over input amplitude
	DB    float64 // Gain in decibels
}

// Distortion is a harmonic analysis of one tone.
type Distortion struct {
	Fundamental float64   // fundamental amplitude
	Harmonics   []float64 // amplitude of harmonic 2, 3, ... relative to the fundamental
	THD         float64   // root sum square of Harmonics
	THDdB       float64
}

// Analyzer owns an FFT plan and scratch buffers. It is not safe for
// concurrent use.
type Analyzer struct {
	cfg  Config
	plan *algofft.Plan[complex128]
	win  []float64
	buf  []float64
	in   []complex128
	out  []complex128
}

// NewAnalyzer constructs an analyzer.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if !(cfg.SampleRate > 0) || math.IsInf(cfg.SampleRate, 0) {
		return nil, fmt.Errorf("response: sample rate must be > 0 and finite: %f", cfg.SampleRate)
	}

	if cfg.FFTSize == 0 {
		cfg.FFTSize = defaultFFTSize
	}

	if cfg.FFTSize < 2 || cfg.FFTSize&(cfg.FFTSize-1) != 0 {
		return nil, fmt.Errorf("response: FFT size must be a power of two >= 2: %d", cfg.FFTSize)
	}

	if cfg.Settle < 0 {
		return nil, fmt.Errorf("response: settle must be >= 0: %d", cfg.Settle)
	}

	if cfg.Settle == 0 {
		cfg.Settle = cfg.FFTSize / 2
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}

	a := &Analyzer{
		cfg:  cfg,
		plan: plan,
		buf:  make([]float64, cfg.FFTSize),
		in:   make([]complex128, cfg.FFTSize),
		out:  make([]complex128, cfg.FFTSize),
	}

	if cfg.Hann {
		a.win = periodicHann(cfg.FFTSize)
	}

	return a, nil
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// BinHz returns the bin spacing.
func (a *Analyzer) BinHz() float64 {
	return a.cfg.SampleRate / float64(a.cfg.FFTSize)
}

// Bin returns the bin nearest to hz, at least 1 and at most Nyquist.
func (a *Analyzer) Bin(hz float64) int {
	k := int(math.Round(hz / a.BinHz()))
	return max(1, min(k, a.cfg.FFTSize/2))
}

// SnapHz returns the center frequency of the bin nearest to hz.
func (a *Analyzer) SnapHz(hz float64) float64 {
	return float64(a.Bin(hz)) * a.BinHz()
}

// Spectrum returns the (optionally windowed) transform of signal. The
// returned slice is reused by the next call.
func (a *Analyzer) Spectrum(signal []float64) ([]complex128, error) {
	if len(signal) != a.cfg.FFTSize {
		return nil, fmt.Errorf("%w: %d != %d", ErrLength, len(signal), a.cfg.FFTSize)
	}

	copy(a.buf, signal)

	if a.win != nil {
		vecmath.MulBlockInPlace(a.buf, a.win)
	}

	for i, v := range a.buf {
		a.in[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}

	return a.out, nil
}

// ToneLevel returns the amplitude of the bin nearest to hz.
func (a *Analyzer) ToneLevel(signal []float64, hz float64) (float64, error) {
	spec, err := a.Spectrum(signal)
	if err != nil {
		return 0, err
	}

	return a.level(spec, a.Bin(hz)), nil
}

// Measure drives p with a sine of the given amplitude at the bin-snapped
// frequency and returns the steady-state output level. p is reset first.
func (a *Analyzer) Measure(p Processor, hz, amplitude float64) (Point, error) {
	if !(amplitude > 0) {
		return Point{}, fmt.Errorf("response: amplitude must be > 0: %f", amplitude)
	}

	k := a.Bin(hz)
	snapped := float64(k) * a.BinHz()

	level, err := a.ToneLevel(a.drive(p, snapped, amplitude), snapped)
	if err != nil {
		return Point{}, err
	}

	gain := level / amplitude

	return Point{Hz: snapped, Level: level, Gain: gain, DB: toDB(gain)}, nil
}

// Sweep measures every frequency in freqs.
func (a *Analyzer) Sweep(p Processor, freqs []float64, amplitude float64) ([]Point, error) {
	points := make([]Point, 0, len(freqs))

	for _, hz := range freqs {
		pt, err := a.Measure(p, hz, amplitude)
		if err != nil {
			return nil, err
		}

		points = append(points, pt)
	}

	return points, nil
}

// Harmonics drives p with a sine and reports the levels of up to count
// harmonics below Nyquist relative to the fundamental.
func (a *Analyzer) Harmonics(p Processor, hz, amplitude float64, count int) (Distortion, error) {
	if count < 1 {
		return Distortion{}, fmt.Errorf("response: harmonic count must be >= 1: %d", count)
	}

	k := a.Bin(hz)
	y := a.drive(p, float64(k)*a.BinHz(), amplitude)

	spec, err := a.Spectrum(y)
	if err != nil {
		return Distortion{}, err
	}

	d := Distortion{Fundamental: a.level(spec, k)}
	if d.Fundamental == 0 {
		return d, nil
	}

	var sum float64

	for h := 2; h <= count+1 && h*k < a.cfg.FFTSize/2; h++ {
		r := a.level(spec, h*k) / d.Fundamental
		d.Harmonics = append(d.Harmonics, r)
		sum += r * r
	}

	d.THD = math.Sqrt(sum)
	d.THDdB = toDB(d.THD)

	return d, nil
}

func (a *Analyzer) drive(p Processor, hz, amplitude float64) []float64 {
	p.Reset()

	step := 2 * math.Pi * hz / a.cfg.SampleRate
	for i := range a.cfg.Settle {
		p.ProcessSample(amplitude * math.Sin(step*float64(i)))
	}

	y := make([]float64, a.cfg.FFTSize)
	for i := range y {
		y[i] = p.ProcessSample(amplitude * math.Sin(step*float64(i+a.cfg.Settle)))
	}

	return y
}

func (a *Analyzer) level(spec []complex128, k int) float64 {
	gain := 1.0
	if a.win != nil {
		gain = hannGain
	}

	return 2 * cmplx.Abs(spec[k]) / (float64(a.cfg.FFTSize) * gain)
}

// periodicHann returns the DFT-even Hann window, whose coherent gain is
// exactly 1/2.
func periodicHann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}

	return w
}

// LogGrid returns n frequencies spaced logarithmically from lo to hi
// inclusive.
func LogGrid(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	if n == 1 {
		return []float64{lo}
	}

	out := make([]float64, n)
	ratio := hi / lo

	for i := range out {
		out[i] = lo * math.Pow(ratio, float64(i)/float64(n-1))
	}

	return out
}

func toDB(gain float64) float64 {
	if gain <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(gain)
}

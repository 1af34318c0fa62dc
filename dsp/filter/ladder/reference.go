package ladder

import (
	"math"

	"github.com/cwbudde/algo-ladder/dsp/fixed/softclip"
)

// Reference is the floating-point model of the same ladder: identical
// topology, coefficients and clamp, without quantization. It is the golden
// model the fixed-point core is measured against.
type Reference struct {
	format  Format
	cutoff  Code
	quality Code
	soft    bool

	stage [stageCount]float64
}

// NewReference constructs a floating-point model. Divider and verification
// options are accepted and ignored.
func NewReference(opts ...Option) (*Reference, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Reference{
		format:  cfg.format,
		cutoff:  cfg.cutoff,
		quality: cfg.quality,
		soft:    cfg.soft,
	}, nil
}

// SetCutoff updates the cutoff code.
func (r *Reference) SetCutoff(code Code) { r.cutoff = code }

// SetQuality updates the quality code.
func (r *Reference) SetQuality(code Code) { r.quality = code }

// SetSoftClip enables or disables the soft clip.
func (r *Reference) SetSoftClip(enabled bool) { r.soft = enabled }

// Reset clears the stage state.
func (r *Reference) Reset() { r.stage = [stageCount]float64{} }

// Stages returns the stage state.
func (r *Reference) Stages() [stageCount]float64 { return r.stage }

// SetStages overwrites the stage state.
func (r *Reference) SetStages(s [stageCount]float64) { r.stage = s }

// LoadState copies the registers of a fixed-point filter into the model.
func (r *Reference) LoadState(s State) {
	for j, v := range s.Stage {
		r.stage[j] = float64(v)
	}
}

// ProcessSample filters one sample.
func (r *Reference) ProcessSample(x float64) float64 {
	co := MapControls(r.cutoff, r.quality)
	g := co.G(r.format)
	k := co.K(r.format)
	s := &r.stage

	g2 := g * g
	sum := g2*g*s[0] + g2*s[1] + g*s[2] + s[3]

	u := (x - k*sum) / (1 + k*g2*g2)
	u = math.Max(math.MinInt16, math.Min(math.MaxInt16, u))

	if r.soft {
		u = softclip.Float(u)
	}

	gain := g / (1 + g)
	for j := range s {
		v := gain * (u - s[j])
		u = s[j] + v
		s[j] = u + v
	}

	return u
}

// ProcessInPlace filters a buffer in place.
func (r *Reference) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = r.ProcessSample(buf[i])
	}
}

package ladder

import (
	"fmt"

	"github.com/cwbudde/algo-ladder/dsp/fixed/divider"
	"github.com/cwbudde/algo-ladder/dsp/fixed/softclip"
)

// defaultCutoff is about 1 kHz at the internal sample rate.
const defaultCutoff Code = 73

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	format       Format
	cutoff       Code
	quality      Code
	soft         bool
	div          divider.Divider
	verify       bool
	fixedLatency bool
}

func defaultConfig() config {
	return config{
		format:  DefaultFormat(),
		cutoff:  defaultCutoff,
		quality: 0,
		div:     divider.Restoring{},
		verify:  verifyDefault,
	}
}

// WithFormat selects the fixed-point precision budget. The format must pass
// Validate.
func WithFormat(f Format) Option {
	return func(cfg *config) error {
		if err := f.Validate(); err != nil {
			return err
		}

		cfg.format = f

		return nil
	}
}

// WithCutoff sets the initial cutoff code in [0, 1023].
func WithCutoff(code Code) Option {
	return func(cfg *config) error {
		if code > MaxCode {
			return fmt.Errorf("ladder: cutoff code must be in [0, %d]: %d", MaxCode, code)
		}

		cfg.cutoff = code

		return nil
	}
}

// WithQuality sets the initial quality (resonance) code in [0, 1023].
func WithQuality(code Code) Option {
	return func(cfg *config) error {
		if code > MaxCode {
			return fmt.Errorf("ladder: quality code must be in [0, %d]: %d", MaxCode, code)
		}

		cfg.quality = code

		return nil
	}
}

// WithSoftClip enables the rational soft clip between the feedback solve
// and the first stage.
func WithSoftClip(enabled bool) Option {
	return func(cfg *config) error {
		cfg.soft = enabled
		return nil
	}
}

// WithDivider selects the division primitive. Pass a *divider.Shared to
// arbitrate one divider among several filters.
func WithDivider(div divider.Divider) Option {
	return func(cfg *config) error {
		if div == nil {
			return fmt.Errorf("ladder: divider must not be nil")
		}

		cfg.div = div

		return nil
	}
}

// WithVerify enables per-sample bit-budget checks. A violated budget panics
// with a *fixed.OverflowError. Builds tagged ladderdebug enable it by
// default.
func WithVerify(enabled bool) Option {
	return func(cfg *config) error {
		cfg.verify = enabled
		return nil
	}
}

// WithFixedLatency pads every division of a Machine to the worst case the
// format allows, so that each sample takes FixedSampleLatency cycles
// regardless of its data. Filter and Reference ignore it.
func WithFixedLatency(enabled bool) Option {
	return func(cfg *config) error {
		cfg.fixedLatency = enabled
		return nil
	}
}

func newConfig(opts []Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}

	return cfg, nil
}

// State is the persistent ladder state: one 16-bit register per stage.
type State struct {
	Stage [4]int16
}

// Filter is a fixed-point four-pole ladder low-pass with zero-delay
// feedback. It processes 16-bit samples with integer arithmetic only and is
// bit-exact across platforms.
//
// A Filter is not safe for concurrent use.
type Filter struct {
	format  Format
	cutoff  Code
	quality Code
	soft    bool
	verify  bool
	div     divider.Divider

	state State
}

// New constructs a ladder filter.
func New(opts ...Option) (*Filter, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return newFilter(cfg), nil
}

func newFilter(cfg config) *Filter {
	return &Filter{
		format:  cfg.format,
		cutoff:  cfg.cutoff,
		quality: cfg.quality,
		soft:    cfg.soft,
		verify:  cfg.verify,
		div:     cfg.div,
	}
}

// Format returns the precision budget.
func (f *Filter) Format() Format { return f.format }

// Cutoff returns the cutoff code.
func (f *Filter) Cutoff() Code { return f.cutoff }

// Quality returns the quality code.
func (f *Filter) Quality() Code { return f.quality }

// SoftClip reports whether the soft clip is enabled.
func (f *Filter) SoftClip() bool { return f.soft }

// SetCutoff updates the cutoff code. It takes effect on the next sample.
// Codes above MaxCode keep only their low 10 bits.
func (f *Filter) SetCutoff(code Code) { f.cutoff = code }

// SetQuality updates the quality code. It takes effect on the next sample.
// Codes above MaxCode keep only their low 10 bits.
func (f *Filter) SetQuality(code Code) { f.quality = code }

// SetSoftClip enables or disables the soft clip.
func (f *Filter) SetSoftClip(enabled bool) { f.soft = enabled }

// Reset clears the stage registers.
func (f *Filter) Reset() {
	f.state = State{}
}

// State returns a copy of the stage registers.
func (f *Filter) State() State {
	return f.state
}

// SetState restores externally saved stage registers.
func (f *Filter) SetState(state State) {
	f.state = state
}

// ProcessSample filters one sample.
func (f *Filter) ProcessSample(x int16) int16 {
	p := f.begin(x)

	gain, _ := f.div.Divide(p.gainReq.Dividend, p.gainReq.Divisor)
	p.gain = int64(gain)

	q, _ := f.div.Divide(p.solveReq.Dividend, p.solveReq.Divisor)
	f.settle(&p, q)

	if p.soft {
		req, negative := softclip.Prepare(int16(p.u))
		q, _ = f.div.Divide(req.Dividend, req.Divisor)
		p.u = int64(softclip.Finish(q, negative))
	}

	for j := range stageCount {
		f.advance(j, &p)
	}

	return int16(p.u)
}

// ProcessInPlace filters a mono buffer in place.
func (f *Filter) ProcessInPlace(buf []int16) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

// ProcessTo filters src into dst. Both slices must have the same length.
func (f *Filter) ProcessTo(dst, src []int16) {
	n := len(src)
	if n == 0 {
		return
	}

	_ = dst[n-1]
	for i, x := range src {
		dst[i] = f.ProcessSample(x)
	}
}

// Stereo runs one ladder state per channel with shared controls.
type Stereo struct {
	left  *Filter
	right *Filter
}

// NewStereo constructs a stereo pair with independent state.
func NewStereo(opts ...Option) (*Stereo, error) {
	left, err := New(opts...)
	if err != nil {
		return nil, err
	}

	right, err := New(opts...)
	if err != nil {
		return nil, err
	}

	return &Stereo{left: left, right: right}, nil
}

// Left returns the left-channel filter.
func (s *Stereo) Left() *Filter { return s.left }

// Right returns the right-channel filter.
func (s *Stereo) Right() *Filter { return s.right }

// SetCutoff updates the cutoff code of both channels.
func (s *Stereo) SetCutoff(code Code) {
	s.left.SetCutoff(code)
	s.right.SetCutoff(code)
}

// SetQuality updates the quality code of both channels.
func (s *Stereo) SetQuality(code Code) {
	s.left.SetQuality(code)
	s.right.SetQuality(code)
}

// Reset clears both channels.
func (s *Stereo) Reset() {
	s.left.Reset()
	s.right.Reset()
}

// ProcessSample filters one stereo frame.
func (s *Stereo) ProcessSample(left, right int16) (int16, int16) {
	return s.left.ProcessSample(left), s.right.ProcessSample(right)
}

// ProcessInterleavedInPlace filters an interleaved L/R buffer in place.
func (s *Stereo) ProcessInterleavedInPlace(buf []int16) {
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i], buf[i+1] = s.ProcessSample(buf[i], buf[i+1])
	}
}

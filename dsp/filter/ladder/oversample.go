package ladder

import "fmt"

// FeedMode selects how an Oversampler fills the sub-samples of one nominal
// sample.
type FeedMode int

const (
	// HoldInput repeats the nominal sample.
	HoldInput FeedMode = iota
	// ZeroStuffInput feeds the nominal sample once followed by zeros. The
	// passband gain drops by the oversampling factor.
	ZeroStuffInput
	// LinearInput interpolates linearly from the previous nominal sample.
	LinearInput
)

func (m FeedMode) String() string {
	switch m {
	case HoldInput:
		return "hold"
	case ZeroStuffInput:
		return "zerostuff"
	case LinearInput:
		return "linear"
	default:
		return "unknown"
	}
}

// Oversampler runs a Filter several times per nominal sample and returns the
// last sub-sample output. At factor 4 and the nominal rate the core runs at
// InternalSampleRate.
type Oversampler struct {
	filter *Filter
	factor int
	mode   FeedMode
	prev   int16
}

// NewOversampler constructs an oversampled filter. factor must be one of
// {1,2,4,8}.
func NewOversampler(factor int, mode FeedMode, opts ...Option) (*Oversampler, error) {
	if !validOversampling(factor) {
		return nil, fmt.Errorf("ladder: oversampling factor must be one of {1,2,4,8}: %d", factor)
	}

	if mode < HoldInput || mode > LinearInput {
		return nil, fmt.Errorf("ladder: invalid feed mode: %d", mode)
	}

	f, err := New(opts...)
	if err != nil {
		return nil, err
	}

	return &Oversampler{filter: f, factor: factor, mode: mode}, nil
}

// Filter returns the wrapped core.
func (o *Oversampler) Filter() *Filter { return o.filter }

// Factor returns the oversampling factor.
func (o *Oversampler) Factor() int { return o.factor }

// Mode returns the sub-sample feed mode.
func (o *Oversampler) Mode() FeedMode { return o.mode }

// Reset clears the core and the interpolation memory.
func (o *Oversampler) Reset() {
	o.filter.Reset()
	o.prev = 0
}

// ProcessSample filters one nominal sample.
func (o *Oversampler) ProcessSample(x int16) int16 {
	var out int16

	for i := range o.factor {
		out = o.filter.ProcessSample(o.sub(x, i))
	}

	o.prev = x

	return out
}

// ProcessInPlace filters a buffer of nominal samples in place.
func (o *Oversampler) ProcessInPlace(buf []int16) {
	for i := range buf {
		buf[i] = o.ProcessSample(buf[i])
	}
}

func (o *Oversampler) sub(x int16, i int) int16 {
	switch o.mode {
	case ZeroStuffInput:
		if i == 0 {
			return x
		}

		return 0
	case LinearInput:
		delta := int32(x) - int32(o.prev)
		return int16(int32(o.prev) + delta*int32(i+1)/int32(o.factor))
	default:
		return x
	}
}

func validOversampling(factor int) bool {
	switch factor {
	case 1, 2, 4, 8:
		return true
	default:
		return false
	}
}

package main

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/cwbudde/algo-ladder/dsp/filter/ladder"
)

type synthConfig struct {
	sampleRate float64
	freq       float64
	amplitude  int16
	knob       ladder.Code
	sweep      time.Duration
	samples    int
}

// synth is an io.Reader of mono signed 16-bit little-endian PCM: a naive
// sawtooth filtered by an Oversampler.
type synth struct {
	cfg    synthConfig
	filter *ladder.Oversampler
	phase  float64
	step   float64
	period int
	n      int
}

func newSynth(o *ladder.Oversampler, cfg synthConfig) *synth {
	s := &synth{
		cfg:    cfg,
		filter: o,
		step:   cfg.freq / cfg.sampleRate,
		period: int(cfg.sweep.Seconds() * cfg.sampleRate),
	}
	o.Filter().SetCutoff(ladder.Taper(cfg.knob))

	return s
}

// Read fills p with whole samples. It returns io.EOF once the configured
// length has been rendered.
func (s *synth) Read(p []byte) (int, error) {
	if s.n >= s.cfg.samples {
		return 0, io.EOF
	}

	count := min(len(p)/2, s.cfg.samples-s.n)
	if count == 0 {
		return 0, io.ErrShortBuffer
	}

	for i := range count {
		binary.LittleEndian.PutUint16(p[2*i:], uint16(s.next()))
	}

	return 2 * count, nil
}

func (s *synth) next() int16 {
	if s.period > 0 {
		s.filter.Filter().SetCutoff(ladder.Taper(s.knobAt(s.n)))
	}

	x := int16(float64(s.cfg.amplitude) * (2*s.phase - 1))

	s.phase += s.step
	if s.phase >= 1 {
		s.phase -= 1
	}

	s.n++

	return s.filter.ProcessSample(x)
}

// knobAt is a triangle from 0 up to the configured knob and back over one
// sweep period.
func (s *synth) knobAt(n int) ladder.Code {
	pos := n % s.period
	half := s.period / 2

	if half == 0 {
		return s.cfg.knob
	}

	if pos > half {
		pos = s.period - pos
	}

	return ladder.Code(int(s.cfg.knob) * pos / half)
}

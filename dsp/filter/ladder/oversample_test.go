package ladder

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-ladder/dsp/signal"
)

func TestNewOversamplerValidation(t *testing.T) {
	if _, err := NewOversampler(3, HoldInput); err == nil {
		t.Fatal("expected error for factor 3")
	}

	if _, err := NewOversampler(4, FeedMode(9)); err == nil {
		t.Fatal("expected error for invalid feed mode")
	}

	if _, err := NewOversampler(4, HoldInput, WithCutoff(5000)); err == nil {
		t.Fatal("expected option error")
	}
}

func TestOversamplerFactorOneIsPlain(t *testing.T) {
	in := signal.Noise16(2, 25000, 512)

	for _, mode := range []FeedMode{HoldInput, ZeroStuffInput, LinearInput} {
		o, err := NewOversampler(1, mode, WithCutoff(300), WithQuality(500))
		if err != nil {
			t.Fatalf("NewOversampler() error = %v", err)
		}

		f := mustNew(t, WithCutoff(300), WithQuality(500))

		for i, x := range in {
			if y1, y2 := o.ProcessSample(x), f.ProcessSample(x); y1 != y2 {
				t.Fatalf("%v sample %d: %d vs %d", mode, i, y1, y2)
			}
		}
	}
}

func TestOversamplerHoldRepeatsInput(t *testing.T) {
	in := signal.Noise16(4, 25000, 256)

	o, err := NewOversampler(4, HoldInput, WithCutoff(300))
	if err != nil {
		t.Fatalf("NewOversampler() error = %v", err)
	}

	f := mustNew(t, WithCutoff(300))

	for i, x := range in {
		var want int16
		for range 4 {
			want = f.ProcessSample(x)
		}

		if got := o.ProcessSample(x); got != want {
			t.Fatalf("sample %d: %d, want %d", i, got, want)
		}
	}
}

func TestOversamplerSubSamples(t *testing.T) {
	tests := []struct {
		mode FeedMode
		want []int16
	}{
		{mode: HoldInput, want: []int16{100, 100, 100, 100}},
		{mode: ZeroStuffInput, want: []int16{100, 0, 0, 0}},
		{mode: LinearInput, want: []int16{-50, 0, 50, 100}},
	}

	for _, tc := range tests {
		o, err := NewOversampler(4, tc.mode)
		if err != nil {
			t.Fatalf("NewOversampler() error = %v", err)
		}

		o.prev = -100

		for i, want := range tc.want {
			if got := o.sub(100, i); got != want {
				t.Fatalf("%v sub %d: %d, want %d", tc.mode, i, got, want)
			}
		}
	}
}

func TestOversamplerDCGain(t *testing.T) {
	o, err := NewOversampler(4, LinearInput, WithCutoff(73))
	if err != nil {
		t.Fatalf("NewOversampler() error = %v", err)
	}

	var y int16
	for range 5000 {
		y = o.ProcessSample(12000)
	}

	// Rounding leaves a DC offset within the tracking bound of the cutoff.
	if d := math.Abs(float64(y) - 12000); d > trackingBound(73) {
		t.Fatalf("DC output %d, want 12000 within %.1f", y, trackingBound(73))
	}

	o.Reset()

	if o.Filter().State() != (State{}) || o.prev != 0 {
		t.Fatal("Reset did not clear state")
	}

	if o.Factor() != 4 || o.Mode() != LinearInput || o.Mode().String() != "linear" {
		t.Fatal("accessors")
	}
}

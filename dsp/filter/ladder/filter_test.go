package ladder

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-ladder/dsp/fixed"
	"github.com/cwbudde/algo-ladder/dsp/fixed/divider"
	"github.com/cwbudde/algo-ladder/dsp/signal"
	"github.com/cwbudde/algo-ladder/internal/testutil"
)

func mustNew(t *testing.T, opts ...Option) *Filter {
	t.Helper()

	f, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return f
}

func mustReference(t *testing.T, opts ...Option) *Reference {
	t.Helper()

	r, err := NewReference(opts...)
	if err != nil {
		t.Fatalf("NewReference() error = %v", err)
	}

	return r
}

func TestNewValidation(t *testing.T) {
	if _, err := New(WithCutoff(1024)); err == nil {
		t.Fatal("expected error for cutoff code out of range")
	}

	if _, err := New(WithQuality(4096)); err == nil {
		t.Fatal("expected error for quality code out of range")
	}

	if _, err := New(WithDivider(nil)); err == nil {
		t.Fatal("expected error for nil divider")
	}

	bad := DefaultFormat()
	bad.StageShifts[2] = 23

	if _, err := New(WithFormat(bad)); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}

	if _, err := NewReference(WithCutoff(2000)); err == nil {
		t.Fatal("expected reference error for cutoff code out of range")
	}
}

func TestDefaults(t *testing.T) {
	f := mustNew(t, nil)

	if f.Cutoff() != 73 || f.Quality() != 0 || f.SoftClip() {
		t.Fatalf("defaults: cutoff=%d quality=%d soft=%v", f.Cutoff(), f.Quality(), f.SoftClip())
	}

	if f.Format() != DefaultFormat() {
		t.Fatalf("format = %+v", f.Format())
	}

	if f.State() != (State{}) {
		t.Fatalf("initial state = %+v", f.State())
	}
}

func TestZeroInputFromRestStaysZero(t *testing.T) {
	for _, soft := range []bool{false, true} {
		f := mustNew(t, WithCutoff(MaxCode), WithQuality(MaxCode), WithSoftClip(soft))

		for i := range 1000 {
			if y := f.ProcessSample(0); y != 0 {
				t.Fatalf("soft=%v sample %d: got %d", soft, i, y)
			}
		}

		if f.State() != (State{}) {
			t.Fatalf("soft=%v state = %+v", soft, f.State())
		}
	}
}

func TestProcessInPlaceMatchesSample(t *testing.T) {
	in := signal.Tones16(InternalSampleRate, 2048,
		signal.Tone{Hz: 440, Amplitude: 16000},
		signal.Tone{Hz: 5000, Amplitude: 9000},
	)

	f1 := mustNew(t, WithCutoff(300), WithQuality(800), WithSoftClip(true))
	f2 := mustNew(t, WithCutoff(300), WithQuality(800), WithSoftClip(true))
	f3 := mustNew(t, WithCutoff(300), WithQuality(800), WithSoftClip(true), WithDivider(divider.Native{}))

	want := make([]int16, len(in))
	for i, x := range in {
		want[i] = f1.ProcessSample(x)
	}

	got := append([]int16(nil), in...)
	f2.ProcessInPlace(got)

	to := make([]int16, len(in))
	f3.ProcessTo(to, in)

	for i := range want {
		if got[i] != want[i] || to[i] != want[i] {
			t.Fatalf("sample %d: in-place %d, to %d, want %d", i, got[i], to[i], want[i])
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	f := mustNew(t, WithCutoff(150), WithQuality(700))
	noise := signal.Noise16(3, 20000, 400)

	for _, x := range noise[:200] {
		f.ProcessSample(x)
	}

	clone := mustNew(t, WithCutoff(150), WithQuality(700))
	clone.SetState(f.State())

	for i, x := range noise[200:] {
		if y1, y2 := f.ProcessSample(x), clone.ProcessSample(x); y1 != y2 {
			t.Fatalf("state mismatch at %d: %d vs %d", i, y1, y2)
		}
	}

	f.Reset()

	if f.State() != (State{}) {
		t.Fatalf("state after Reset = %+v", f.State())
	}
}

func TestSettersMaskToTenBits(t *testing.T) {
	in := signal.Noise16(9, 30000, 256)

	f1 := mustNew(t)
	f1.SetCutoff(1024 + 200)
	f1.SetQuality(2048 + 900)

	f2 := mustNew(t, WithCutoff(200), WithQuality(900))

	for i, x := range in {
		if y1, y2 := f1.ProcessSample(x), f2.ProcessSample(x); y1 != y2 {
			t.Fatalf("sample %d: %d vs %d", i, y1, y2)
		}
	}
}

func TestSingleStepMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	f := mustNew(t, WithVerify(true))
	r := mustReference(t)

	var worstOut, worstState float64

	for range 20000 {
		var st State
		for j := range st.Stage {
			st.Stage[j] = int16(rng.Intn(65536) - 32768)
		}

		c := Code(rng.Intn(1024))
		q := Code(rng.Intn(1024))
		x := int16(rng.Intn(65536) - 32768)

		f.SetCutoff(c)
		f.SetQuality(q)
		f.SetState(st)
		r.SetCutoff(c)
		r.SetQuality(q)
		r.LoadState(st)

		y := f.ProcessSample(x)
		want := r.ProcessSample(float64(x))
		worstOut = math.Max(worstOut, math.Abs(float64(y)-want))

		ref := r.Stages()
		for j, s := range f.State().Stage {
			worstState = math.Max(worstState, math.Abs(float64(s)-ref[j]))
		}
	}

	if worstOut > 1 {
		t.Fatalf("single-step output error %v LSB, want <= 1", worstOut)
	}

	if worstState > 2 {
		t.Fatalf("single-step state error %v LSB, want <= 2", worstState)
	}
}

// trackingBound is the largest distance, in LSB, between the filter output
// and the floating-point model at quality 0 for the given cutoff code.
func trackingBound(code Code) float64 {
	return 4096/float64(code) + 4
}

func TestTrackingBoundOverCutoffRange(t *testing.T) {
	const n = 3000

	inputs := map[string][]int16{
		"tones": signal.Tones16(InternalSampleRate, n,
			signal.Tone{Hz: 50, Amplitude: 20000},
			signal.Tone{Hz: 1100, Amplitude: 8000},
		),
		"noise":  signal.Noise16(9, math.MaxInt16, n),
		"square": signal.Square16(200, InternalSampleRate, n),
	}

	step := Code(1)
	if testing.Short() {
		step = 7
	}

	for code := Code(1); code <= MaxCode; code += step {
		for name, in := range inputs {
			f := mustNew(t, WithCutoff(code), WithDivider(divider.Native{}))
			r := mustReference(t, WithCutoff(code))

			got := append([]int16(nil), in...)
			f.ProcessInPlace(got)

			want := signal.Float64(in)
			r.ProcessInPlace(want)

			t.Run(fmt.Sprintf("cutoff=%d/%s", code, name), func(t *testing.T) {
				testutil.RequireWithinLSB(t, got, want, trackingBound(code))
			})
		}
	}
}

func TestTrackingBoundLowCodes(t *testing.T) {
	in := signal.Noise16(4, 20000, 4000)

	for code := Code(1); code <= 32; code++ {
		f := mustNew(t, WithCutoff(code))
		r := mustReference(t, WithCutoff(code))

		got := append([]int16(nil), in...)
		f.ProcessInPlace(got)

		want := signal.Float64(in)
		r.ProcessInPlace(want)

		d, err := testutil.MaxAbsDiff(got, want)
		if err != nil {
			t.Fatal(err)
		}

		if d > trackingBound(code) {
			t.Fatalf("cutoff %d: error %v LSB, want <= %v", code, d, trackingBound(code))
		}
	}
}

func TestZeroCutoffFreezesStages(t *testing.T) {
	for _, q := range []Code{0, 512, MaxCode} {
		f := mustNew(t, WithCutoff(0), WithQuality(q), WithVerify(true))

		for i := range 2000 {
			if y := f.ProcessSample(12000); y != 0 {
				t.Fatalf("quality %d sample %d: got %d, want 0", q, i, y)
			}
		}

		if f.State() != (State{}) {
			t.Fatalf("quality %d: state = %+v", q, f.State())
		}

		if g := DCGain(0, q, DefaultFormat()); g != 0 {
			t.Fatalf("quality %d: DCGain = %v, want 0", q, g)
		}
	}

	// Loaded registers hold and the last one is the output.
	f := mustNew(t, WithCutoff(0))
	r := mustReference(t, WithCutoff(0))

	held := State{Stage: [4]int16{-700, 300, 5, -2}}
	f.SetState(held)
	r.SetStages([4]float64{-700, 300, 5, -2})

	for i, x := range []int16{0, 20000, -32768, 1, 0} {
		y := f.ProcessSample(x)
		if want := r.ProcessSample(float64(x)); float64(y) != want || y != -2 {
			t.Fatalf("sample %d: got %d, reference %v, want -2", i, y, want)
		}

		if f.State() != held {
			t.Fatalf("sample %d: state = %+v, want %+v", i, f.State(), held)
		}
	}
}

func TestSilenceDecaysToZero(t *testing.T) {
	excite := signal.Sine16(700, InternalSampleRate, 30000, 2000)

	tests := []struct {
		cutoff  Code
		quality Code
		soft    bool
	}{
		{cutoff: 1, quality: 0},
		{cutoff: 10, quality: 0},
		{cutoff: 73, quality: 0},
		{cutoff: 1023, quality: 0},
		{cutoff: 73, quality: 512},
		{cutoff: 200, quality: 512},
		{cutoff: 1023, quality: 512},
		{cutoff: 500, quality: 300, soft: true},
		{cutoff: 73, quality: 512, soft: true},
	}

	for _, tc := range tests {
		f := mustNew(t, WithCutoff(tc.cutoff), WithQuality(tc.quality), WithSoftClip(tc.soft))
		f.ProcessInPlace(append([]int16(nil), excite...))

		settled := false

		for range 10000 {
			if f.ProcessSample(0) == 0 && f.State() == (State{}) {
				settled = true
				break
			}
		}

		if !settled {
			t.Fatalf("%+v: state did not reach zero: %+v", tc, f.State())
		}

		for i := range 100 {
			if y := f.ProcessSample(0); y != 0 {
				t.Fatalf("%+v: output %d at %d after settling", tc, y, i)
			}
		}
	}
}

func TestHardModeSilenceIsExact(t *testing.T) {
	excite := signal.Sine16(700, InternalSampleRate, 30000, 3000)
	cutoffs := []Code{1, 2, 5, 10, 30, 73, 128, 200, 300, 512, 700, 1023}
	qualities := []Code{0, 256, 512, 600, 700, 800, 900, 1023}

	for _, c := range cutoffs {
		for _, q := range qualities {
			f := mustNew(t, WithCutoff(c), WithQuality(q), WithDivider(divider.Native{}))
			f.ProcessInPlace(append([]int16(nil), excite...))

			settled := -1

			for i := range 5000 {
				if f.ProcessSample(0) == 0 && f.State() == (State{}) {
					settled = i
					break
				}
			}

			if settled < 0 {
				t.Fatalf("cutoff %d quality %d: state %+v after 5000 zeros", c, q, f.State())
			}

			tail := make([]int16, 100)
			f.ProcessInPlace(tail)

			if p := testutil.Peak16(tail); p != 0 || f.State() != (State{}) {
				t.Fatalf("cutoff %d quality %d: peak %d after settling at %d", c, q, p, settled)
			}
		}
	}
}

func TestSetSoftClipTakesEffectNextSample(t *testing.T) {
	in := signal.Sine16(300, InternalSampleRate, 30000, 600)

	f := mustNew(t, WithCutoff(400), WithQuality(600))
	f.ProcessInPlace(append([]int16(nil), in[:300]...))

	soft := mustNew(t, WithCutoff(400), WithQuality(600), WithSoftClip(true))
	soft.SetState(f.State())

	f.SetSoftClip(true)

	if !f.SoftClip() {
		t.Fatal("SoftClip() = false after SetSoftClip(true)")
	}

	for i, x := range in[300:] {
		if y1, y2 := f.ProcessSample(x), soft.ProcessSample(x); y1 != y2 {
			t.Fatalf("sample %d: %d vs %d", i, y1, y2)
		}
	}
}

func TestSoftClipSelfOscillates(t *testing.T) {
	f := mustNew(t, WithCutoff(200), WithQuality(1023), WithSoftClip(true), WithVerify(true))
	f.ProcessInPlace(signal.Sine16(700, InternalSampleRate, 30000, 3000))

	tail := make([]int16, 22000)
	f.ProcessInPlace(tail)

	p := testutil.Peak16(tail[20000:])
	if p < 4000 || p > 16000 {
		t.Fatalf("oscillation peak %d, want in [4000, 16000]", p)
	}
}

func TestOddSymmetry(t *testing.T) {
	pos := signal.Tones16(InternalSampleRate, 4000,
		signal.Tone{Hz: 900, Amplitude: 6000},
		signal.Tone{Hz: 2500, Amplitude: 3000},
	)
	neg := signal.Negate16(pos)

	tests := []struct {
		cutoff  Code
		quality Code
		soft    bool
	}{
		{cutoff: 200, quality: 1023},
		{cutoff: 73, quality: 0},
		{cutoff: 10, quality: 300},
		{cutoff: 500, quality: 700, soft: true},
		{cutoff: 1023, quality: 1023, soft: true},
	}

	for _, tc := range tests {
		f1 := mustNew(t, WithCutoff(tc.cutoff), WithQuality(tc.quality), WithSoftClip(tc.soft))
		f2 := mustNew(t, WithCutoff(tc.cutoff), WithQuality(tc.quality), WithSoftClip(tc.soft))

		for i := range pos {
			a := f1.ProcessSample(pos[i])
			b := f2.ProcessSample(neg[i])

			if a != -b {
				t.Fatalf("%+v sample %d: f(x)=%d f(-x)=%d", tc, i, a, b)
			}
		}

		s1, s2 := f1.State(), f2.State()
		for j := range s1.Stage {
			if s1.Stage[j] != -s2.Stage[j] {
				t.Fatalf("%+v: states %+v vs %+v", tc, s1, s2)
			}
		}
	}
}

func TestFullScaleStaysInBudget(t *testing.T) {
	square := signal.Square16(300, InternalSampleRate, 20000)
	noise := signal.Noise16(5, math.MaxInt16, 20000)

	for _, soft := range []bool{false, true} {
		for _, c := range []Code{1, 50, 200, 600, 1023} {
			for _, in := range [][]int16{square, noise} {
				f := mustNew(t, WithCutoff(c), WithQuality(MaxCode), WithSoftClip(soft), WithVerify(true))

				buf := append([]int16(nil), in...)
				f.ProcessInPlace(buf)

				if p := testutil.Peak16(buf); p > 24000 {
					t.Fatalf("soft=%v cutoff %d: peak %d", soft, c, p)
				}
			}
		}
	}
}

func TestVerifyReportsOverflow(t *testing.T) {
	f := mustNew(t, WithVerify(true))
	// Bypass Validate: a 40-bit accumulator cannot hold the stage sum.
	f.format.AccumulatorBits = 40

	defer func() {
		r := recover()

		var oe *fixed.OverflowError
		err, ok := r.(error)
		if !ok || !errors.As(err, &oe) {
			t.Fatalf("recovered %v, want *fixed.OverflowError", r)
		}

		if oe.Quantity != "stage sum" || oe.Bits != 40 {
			t.Fatalf("overflow = %+v", oe)
		}
	}()

	for range 1000 {
		f.ProcessSample(math.MaxInt16)
	}

	t.Fatal("expected overflow panic")
}

func TestDCGainMatchesTransfer(t *testing.T) {
	for _, q := range []Code{0, 512, 1023} {
		f := mustNew(t, WithCutoff(200), WithQuality(q))

		var y int16
		for range 20000 {
			y = f.ProcessSample(10000)
		}

		want := 10000 * DCGain(200, q, DefaultFormat())
		if math.Abs(float64(y)-want) > trackingBound(200) {
			t.Fatalf("quality %d: DC output %d, want %.1f", q, y, want)
		}
	}
}

func TestSharedDividerCountsDivisions(t *testing.T) {
	shared := divider.NewShared(nil)
	f := mustNew(t, WithDivider(shared), WithSoftClip(true))
	f.ProcessInPlace(make([]int16, 100))

	if got := shared.Calls(); got != 300 {
		t.Fatalf("divisions = %d, want 300", got)
	}
}

func TestStereoIndependentChannels(t *testing.T) {
	s, err := NewStereo(WithCutoff(100), WithQuality(400))
	if err != nil {
		t.Fatalf("NewStereo() error = %v", err)
	}

	mono := mustNew(t, WithCutoff(100), WithQuality(400))
	left := signal.Noise16(11, 20000, 256)

	buf := make([]int16, 2*len(left))
	for i, x := range left {
		buf[2*i] = x
	}

	s.ProcessInterleavedInPlace(buf)

	for i, x := range left {
		if want := mono.ProcessSample(x); buf[2*i] != want {
			t.Fatalf("left %d: %d, want %d", i, buf[2*i], want)
		}

		if buf[2*i+1] != 0 {
			t.Fatalf("right %d: %d, want 0", i, buf[2*i+1])
		}
	}

	s.SetCutoff(300)
	s.SetQuality(10)

	if s.Left().Cutoff() != 300 || s.Right().Quality() != 10 {
		t.Fatal("stereo controls not applied to both channels")
	}

	s.Reset()

	if s.Left().State() != (State{}) {
		t.Fatal("stereo Reset did not clear state")
	}
}

package signal

import (
	"math"
	"testing"
)

func TestSine16(t *testing.T) {
	s := Sine16(1000, 48000, 20000, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}

	if s[0] != 0 {
		t.Fatalf("s[0] = %d, want 0", s[0])
	}

	if s[12] < 19999 {
		t.Fatalf("s[12] = %d, want about 20000", s[12])
	}

	for i, v := range s {
		if v > 20000 || v < -20000 {
			t.Fatalf("s[%d] = %d exceeds amplitude", i, v)
		}
	}
}

func TestTones16Saturates(t *testing.T) {
	s := Tones16(48000, 48, Tone{Hz: 1000, Amplitude: 30000}, Tone{Hz: 1000, Amplitude: 30000})
	if s[12] != math.MaxInt16 || s[36] != math.MinInt16 {
		t.Fatalf("peaks = %d, %d", s[12], s[36])
	}
}

func TestTones16Odd(t *testing.T) {
	a := Tones16(44100, 500, Tone{Hz: 900, Amplitude: 6000}, Tone{Hz: 2500, Amplitude: 3000})
	b := Tones16(44100, 500, Tone{Hz: 900, Amplitude: -6000}, Tone{Hz: 2500, Amplitude: -3000})

	for i := range a {
		if a[i] != -b[i] {
			t.Fatalf("index %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestSquare16(t *testing.T) {
	s := Square16(1000, 7000, 7)
	want := []int16{-32768, 32767, 32767, 32767, -32768, -32768, -32768}

	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("s = %v, want %v", s, want)
		}
	}
}

func TestNoise16(t *testing.T) {
	a := Noise16(42, 1000, 256)
	b := Noise16(42, 1000, 256)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}

		if a[i] < -1000 || a[i] > 1000 {
			t.Fatalf("a[%d] = %d out of range", i, a[i])
		}
	}

	c := Noise16(43, 1000, 256)

	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}

	if same {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestImpulseNegateFloat(t *testing.T) {
	x := Impulse16(4, 1, math.MinInt16)
	if x[1] != math.MinInt16 || x[0] != 0 {
		t.Fatalf("impulse = %v", x)
	}

	if n := Negate16(x); n[1] != math.MaxInt16 {
		t.Fatalf("negate = %v", n)
	}

	if f := Float64(x); f[1] != -32768 {
		t.Fatalf("float = %v", f)
	}

	if len(Impulse16(3, 5, 1)) != 3 {
		t.Fatal("out-of-range position should still allocate")
	}
}

package softclip

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-ladder/dsp/fixed/divider"
)

func TestKnownValues(t *testing.T) {
	c := New(nil)

	tests := []struct {
		in   int16
		want int16
	}{
		{in: 0, want: 0},
		{in: 1, want: 2},
		{in: 2, want: 5},
		{in: 100, want: 299},
		{in: 1000, want: 2992},
		{in: -1000, want: -2992},
		{in: 5000, want: 14129},
		{in: 10000, want: 24176},
		{in: 20000, want: 31852},
		{in: 32767, want: 32767},
		{in: -32768, want: -32768},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, c.Process(tc.in), "f(%d)", tc.in)
	}
}

func TestOddSymmetryAndBounds(t *testing.T) {
	c := New(divider.Native{})

	for x := -32767; x <= 32767; x++ {
		pos := c.Process(int16(x))
		neg := c.Process(int16(-x))
		require.Equal(t, pos, -neg, "f(-x) != -f(x) at %d", x)
	}
}

func TestMonotonic(t *testing.T) {
	c := New(divider.Native{})
	prev := c.Process(math.MinInt16)

	for x := math.MinInt16 + 1; x <= math.MaxInt16; x++ {
		y := c.Process(int16(x))
		require.GreaterOrEqual(t, y, prev, "not monotonic at %d", x)

		prev = y
	}
}

func TestMatchesFloatWithinOneLSB(t *testing.T) {
	c := New(nil)

	for x := -32768; x <= 32767; x += 13 {
		got := float64(c.Process(int16(x)))
		want := Float(float64(x))
		require.LessOrEqual(t, math.Abs(got-want), 1.0, "x=%d got=%v want=%v", x, got, want)
	}
}

func TestApproximatesTanh(t *testing.T) {
	for x := -32768.0; x <= 32767; x += 512 {
		want := 32768 * math.Tanh(3*x/32768)
		assert.InDelta(t, want, Float(x), 0.03*32768, "x=%v", x)
	}
}

func TestPrepareFinishMatchesProcess(t *testing.T) {
	c := New(nil)

	for _, x := range []int16{-32768, -20000, -3, 0, 3, 777, 32767} {
		req, negative := Prepare(x)
		res := divider.LongDivide(req.Dividend, req.Divisor)
		assert.Equal(t, c.Process(x), Finish(res.Quotient, negative))
		assert.GreaterOrEqual(t, req.Divisor, uint64(1)<<30)
	}
}

func TestProcessInPlace(t *testing.T) {
	c := New(nil)
	buf := []int16{0, 1000, -1000, 32767}
	c.ProcessInPlace(buf)
	assert.Equal(t, []int16{0, 2992, -2992, 32767}, buf)
}

func TestMaxDividend(t *testing.T) {
	req, _ := Prepare(math.MinInt16)
	assert.Equal(t, MaxDividend, req.Dividend)

	for x := math.MinInt16; x <= math.MaxInt16; x += 97 {
		req, _ := Prepare(int16(x))
		require.LessOrEqual(t, req.Dividend, MaxDividend, "x = %d", x)
	}
}

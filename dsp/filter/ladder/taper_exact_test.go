//go:build !fastmath

package ladder

import "testing"

func TestTaperValues(t *testing.T) {
	tests := []struct {
		pos  Code
		want Code
	}{
		{pos: 0, want: 0},
		{pos: 1, want: 0},
		{pos: 100, want: 1},
		{pos: 512, want: 31},
		{pos: 1000, want: 875},
		{pos: 1023, want: 1023},
		{pos: 1023 + 1024, want: 1023},
	}

	for _, tc := range tests {
		if got := Taper(tc.pos); got != tc.want {
			t.Fatalf("Taper(%d) = %d, want %d", tc.pos, got, tc.want)
		}
	}
}

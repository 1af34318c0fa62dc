//go:build fastmath

package ladder

import "github.com/meko-christian/algo-approx"

// taperExp uses the fast exponential; Taper rounds to whole codes, so the
// approximation error only moves a code near a rounding boundary.
func taperExp(x float64) float64 {
	return approx.FastExp(x)
}

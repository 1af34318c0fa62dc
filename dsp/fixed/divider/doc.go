// Package divider provides the unsigned integer long-division primitive used
// by the fixed-point ladder filter and the rational soft clipper.
//
// The primitive is a restoring divider that retires one quotient bit per
// step, so its latency is bounded by and depends on the dividend width:
//   - Sequential: cycle-stepped model with Start/Step/Result, for bit- and
//     cycle-exact co-simulation against a hardware divider.
//   - Restoring / LongDivide: the same algorithm run to completion as an
//     ordinary synchronous call.
//   - Native: CPU division with identical results.
//   - Shared: mutex arbitration of one divider among several instances.
//
// All implementations satisfy dividend == quotient*divisor + remainder with
// remainder < divisor. Division by zero is a caller contract violation and
// is not checked.
package divider

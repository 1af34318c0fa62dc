// Package ladder provides a fixed-point four-pole ladder low-pass filter with
// zero-delay feedback, built for bit-exact agreement with a hardware
// implementation.
//
// Each sample solves the feedback loop in closed form,
//
//	u = (x - k*S) / (1 + k*g^4),  S = g^3*s0 + g^2*s1 + g*s2 + s3
//
// and then runs u through four trapezoidal one-pole stages with gain
// G = g/(1+g). All arithmetic is integer: the binary points and the
// accumulator budget live in a Format, divisions go through a
// divider.Divider, and the optional soft clip is the rational curve of
// package softclip.
//
// Processors:
//   - Filter: synchronous per-sample and block processing.
//   - Machine: cycle-stepped model of the same core with a shared
//     sequential divider, an input handshake and data-dependent latency,
//     or a constant latency with WithFixedLatency.
//   - Oversampler: runs the core 1, 2, 4 or 8 times per nominal sample.
//   - Stereo and ProcessVoices: independent instances side by side.
//   - Reference: floating-point model of the same topology.
//
// Controls are 10-bit codes. The cutoff code maps to g = code/4096, which at
// the 4x internal rate of 176.056 kHz covers roughly 0 to 14 kHz; the
// quality code maps to k = code/512. The linear loop is stable for every
// code pair. The soft clip has a slope of 3 at the origin, which triples the
// loop gain, so with it enabled quality codes above roughly 600 to 700
// (depending on the cutoff) sustain a bounded self-oscillation.
//
// Stage registers are 16 bits wide and every update rounds to nearest. At
// quality 0 the output therefore stays within
//
//	|y - y_ref| <= 4096/c + 4 LSB
//
// of the Reference output for cutoff code c >= 1: each register may sit up
// to 1/(4G) away from the unquantized one, and G is about c/4096. The bound
// is loose above code 100 and reaches hundreds of LSB below code 20, where
// a one-LSB register step is larger than the change the input asks for. A
// steady DC input can settle that far from its target. Resonance scales the
// error with the loop gain.
//
// A zero input drains the loop: a feedback term of at most 4 LSB is
// dropped, and a register step that rounds to zero becomes one LSB toward
// the stage input. Silence after any excitation therefore reaches an
// all-zero state and output in hard mode. Cutoff code 0 has G = 0 and
// freezes the registers, so the output holds the last register.
//
// Format.Validate proves that no intermediate can leave the accumulator
// budget for any code and any 16-bit state; builds tagged ladderdebug
// additionally check every intermediate per sample.
package ladder

package divider

import (
	"errors"
	"math/bits"
	"sync"
)

// ErrBusy is returned when a division is started while another is in flight.
var ErrBusy = errors.New("divider: division already in flight")

// Divider performs unsigned integer division. Implementations must satisfy
// dividend == quotient*divisor + remainder with remainder < divisor.
// A zero divisor is a caller contract violation.
type Divider interface {
	Divide(dividend, divisor uint64) (quotient, remainder uint64)
}

// Request is one division operand pair.
type Request struct {
	Dividend uint64
	Divisor  uint64
}

// Result is the outcome of a division together with the number of steps the
// iterative divider needed to produce it.
type Result struct {
	Quotient  uint64
	Remainder uint64
	Cycles    int
}

// Latency returns the number of steps the restoring divider spends on the
// given dividend: one per significant dividend bit, at least one.
func Latency(dividend uint64) int {
	return max(1, bits.Len64(dividend))
}

// WorstCaseLatency returns the latency bound for dividends of the given width.
func WorstCaseLatency(width uint) int {
	return max(1, int(min(width, 64)))
}

// LongDivide runs the restoring long division to completion and returns the
// quotient, remainder and step count.
func LongDivide(dividend, divisor uint64) Result {
	var s Sequential

	_ = s.Start(Request{Dividend: dividend, Divisor: divisor})
	for !s.Step() {
	}

	res, _ := s.Result()

	return res
}

// Restoring is the stateless bit-serial divider. It models the hardware
// primitive exactly and is the default divider of the fixed-point filter.
type Restoring struct{}

// Divide implements Divider.
func (Restoring) Divide(dividend, divisor uint64) (quotient, remainder uint64) {
	res := LongDivide(dividend, divisor)
	return res.Quotient, res.Remainder
}

// Native divides with the CPU's divide instruction. Results are identical to
// Restoring; only the latency model is lost.
type Native struct{}

// Divide implements Divider.
func (Native) Divide(dividend, divisor uint64) (quotient, remainder uint64) {
	return dividend / divisor, dividend % divisor
}

// Shared arbitrates one divider between several filter instances. Requests
// are serialized with a mutex; ordering between callers is unspecified.
type Shared struct {
	mu    sync.Mutex
	div   Divider
	calls uint64
}

// NewShared wraps div for concurrent use. A nil div selects Restoring.
func NewShared(div Divider) *Shared {
	if div == nil {
		div = Restoring{}
	}

	return &Shared{div: div}
}

// Divide implements Divider.
func (s *Shared) Divide(dividend, divisor uint64) (quotient, remainder uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++

	return s.div.Divide(dividend, divisor)
}

// Calls returns how many divisions have been served.
func (s *Shared) Calls() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

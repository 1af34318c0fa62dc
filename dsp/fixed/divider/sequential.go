package divider

import "math/bits"

// Sequential is a cycle-stepped restoring divider. Start loads the operands,
// each Step retires one quotient bit from the most significant set dividend
// bit downwards, and Result becomes available once Step reports completion.
// At most one division is in flight.
type Sequential struct {
	req    Request
	q, r   uint64
	bit    int
	cycles int
	busy   bool
	done   bool
}

// Start loads a new division. It returns ErrBusy while a previous division
// has not completed.
func (s *Sequential) Start(req Request) error {
	if s.busy {
		return ErrBusy
	}

	s.req = req
	s.q, s.r = 0, 0
	s.bit = bits.Len64(req.Dividend) - 1
	s.cycles = 0
	s.busy = true
	s.done = false

	return nil
}

// Busy reports whether a division is in flight.
func (s *Sequential) Busy() bool { return s.busy }

// Step advances the division by one cycle and reports whether the result is
// ready. Calling Step while idle is a no-op that reports the current
// completion state.
func (s *Sequential) Step() bool {
	if !s.busy {
		return s.done
	}

	s.cycles++

	if s.bit >= 0 {
		carry := s.r >> 63
		s.r = s.r<<1 | (s.req.Dividend>>uint(s.bit))&1

		if carry != 0 || s.r >= s.req.Divisor {
			s.r -= s.req.Divisor
			s.q |= 1 << uint(s.bit)
		}

		s.bit--
	}

	if s.bit < 0 {
		s.busy = false
		s.done = true
	}

	return s.done
}

// Result returns the completed division. ok is false while the division is
// still in flight or none was started.
func (s *Sequential) Result() (res Result, ok bool) {
	if !s.done {
		return Result{}, false
	}

	return Result{Quotient: s.q, Remainder: s.r, Cycles: s.cycles}, true
}

package ladder

import (
	"errors"
	"math/bits"

	"github.com/cwbudde/algo-ladder/dsp/fixed/divider"
	"github.com/cwbudde/algo-ladder/dsp/fixed/softclip"
)

// ErrBusy is returned by Machine.Tick when a valid input is offered while a
// sample is still in flight. The input is not consumed; the producer must
// hold it and offer it again.
var ErrBusy = errors.New("ladder: sample in flight, hold input")

// Phase is the sequencing state of a Machine.
type Phase int

const (
	// PhaseIdle waits for a valid input.
	PhaseIdle Phase = iota
	// PhaseDivide steps the shared divider one quotient bit per cycle.
	PhaseDivide
	// PhaseStage0 to PhaseStage3 each run one ladder stage.
	PhaseStage0
	PhaseStage1
	PhaseStage2
	PhaseStage3
	// PhaseOutput presents the result for one cycle.
	PhaseOutput
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDivide:
		return "divide"
	case PhaseStage0:
		return "stage0"
	case PhaseStage1:
		return "stage1"
	case PhaseStage2:
		return "stage2"
	case PhaseStage3:
		return "stage3"
	case PhaseOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Input is one cycle of the sample input port.
type Input struct {
	Sample int16
	Valid  bool
}

// Output is one cycle of the sample output port.
type Output struct {
	Sample int16
	Valid  bool
}

type division int

const (
	divGain division = iota
	divSolve
	divClip
)

// Machine is a cycle-stepped model of the filter core. It produces the same
// samples as Filter.ProcessSample but spreads each sample over clock cycles:
// one accept cycle, the divisions in sequence on one shared restoring
// divider, one cycle per stage and one output cycle. Latency therefore
// depends on the dividend widths of the sample.
//
// A Machine is not safe for concurrent use.
type Machine struct {
	filter *Filter
	div    divider.Sequential

	phase   Phase
	pending division
	job     sample
	clipNeg bool

	budget   [3]int // per-division cycle floor, zero when unpadded
	spent    int
	quotient uint64
	divDone  bool

	cycles  int
	latency int
}

// NewMachine constructs a cycle-stepped filter core. The divider option is
// ignored; the machine always owns its sequential divider.
func NewMachine(opts ...Option) (*Machine, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	m := &Machine{filter: newFilter(cfg)}
	if cfg.fixedLatency {
		m.budget = divisionBudgets(cfg.format)
	}

	return m, nil
}

// divisionBudgets returns the worst-case divider latency of the gain, solve
// and soft clip divisions under f.
func divisionBudgets(f Format) [3]int {
	b := f.Bounds()

	return [3]int{
		divGain:  divider.WorstCaseLatency(uint(bits.Len64(b.GainDividend))),
		divSolve: divider.WorstCaseLatency(uint(bits.Len64(b.Dividend))),
		divClip:  divider.WorstCaseLatency(uint(bits.Len64(softclip.MaxDividend))),
	}
}

// FixedSampleLatency returns the cycle count of every sample of a Machine
// built WithFixedLatency under format f.
func FixedSampleLatency(f Format, soft bool) int {
	budget := divisionBudgets(f)

	n := 1 + stageCount + 1 + budget[divGain] + budget[divSolve]
	if soft {
		n += budget[divClip]
	}

	return n
}

// Filter returns the controls and state shared with the machine. Control
// changes take effect on the next accepted sample.
func (m *Machine) Filter() *Filter { return m.filter }

// Phase returns the current sequencing phase.
func (m *Machine) Phase() Phase { return m.phase }

// Ready reports whether the next Tick can accept an input.
func (m *Machine) Ready() bool { return m.phase == PhaseIdle }

// Latency returns the cycle count of the last completed sample, from the
// accept cycle to the output cycle inclusive.
func (m *Machine) Latency() int { return m.latency }

// Reset clears the stage registers and abandons any sample in flight.
func (m *Machine) Reset() {
	m.filter.Reset()
	m.div = divider.Sequential{}
	m.phase = PhaseIdle
	m.job = sample{}
	m.cycles = 0
	m.spent = 0
	m.divDone = false
}

// Tick advances the machine by one clock cycle. A valid input is accepted
// only in PhaseIdle; offered at any other time it is refused with ErrBusy
// while the machine still advances.
func (m *Machine) Tick(in Input) (Output, error) {
	if m.phase == PhaseIdle {
		if in.Valid {
			m.accept(in.Sample)
		}

		return Output{}, nil
	}

	m.cycles++

	var out Output

	switch m.phase {
	case PhaseDivide:
		m.spent++
		if !m.divDone && m.div.Step() {
			res, _ := m.div.Result()
			m.quotient, m.divDone = res.Quotient, true
		}

		if m.divDone && m.spent >= m.budget[m.pending] {
			m.retire(m.quotient)
		}
	case PhaseStage0, PhaseStage1, PhaseStage2, PhaseStage3:
		m.filter.advance(int(m.phase-PhaseStage0), &m.job)
		m.phase++
	case PhaseOutput:
		out = Output{Sample: int16(m.job.u), Valid: true}
		m.latency = m.cycles
		m.phase = PhaseIdle
	}

	if in.Valid {
		return out, ErrBusy
	}

	return out, nil
}

// Run feeds one sample into an idle machine and ticks until it is out. It
// returns the output and the cycles it took.
func (m *Machine) Run(x int16) (int16, int, error) {
	if !m.Ready() {
		return 0, 0, ErrBusy
	}

	if _, err := m.Tick(Input{Sample: x, Valid: true}); err != nil {
		return 0, 0, err
	}

	for {
		out, err := m.Tick(Input{})
		if err != nil {
			return 0, 0, err
		}

		if out.Valid {
			return out.Sample, m.latency, nil
		}
	}
}

func (m *Machine) accept(x int16) {
	m.job = m.filter.begin(x)
	m.cycles = 1
	m.start(divGain, m.job.gainReq)
}

func (m *Machine) start(d division, req divider.Request) {
	m.pending = d
	m.phase = PhaseDivide
	m.spent = 0
	m.divDone = false
	// Only started after the previous division has completed.
	_ = m.div.Start(req)
}

func (m *Machine) retire(quotient uint64) {
	switch m.pending {
	case divGain:
		m.job.gain = int64(quotient)
		m.start(divSolve, m.job.solveReq)
	case divSolve:
		m.filter.settle(&m.job, quotient)
		if !m.job.soft {
			m.phase = PhaseStage0
			return
		}

		req, negative := softclip.Prepare(int16(m.job.u))
		m.clipNeg = negative
		m.start(divClip, req)
	case divClip:
		m.job.u = int64(softclip.Finish(quotient, m.clipNeg))
		m.phase = PhaseStage0
	}
}

// SampleLatency returns the cycle count a Machine needs for the given
// division dividends: one accept cycle, the divider latency of each
// dividend, four stage cycles and one output cycle.
func SampleLatency(dividends ...uint64) int {
	n := 1 + stageCount + 1
	for _, d := range dividends {
		n += divider.Latency(d)
	}

	return n
}

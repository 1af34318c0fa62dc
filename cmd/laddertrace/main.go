// Command laddertrace runs the fixed-point ladder filter and prints what it
// does, sample by sample or as a measured frequency response.
//
// Usage:
//
//	laddertrace [flags] trace|response
//
// trace feeds a test signal through the cycle-stepped core and prints the
// output, the four stage registers and the cycle count of every sample.
// response sweeps sines through the filter, measures the output level with
// an FFT and prints it next to the small-signal model.
//
// Output is an aligned table on a terminal and CSV otherwise.
//
// Examples:
//
//	laddertrace -cutoff 200 -quality 1023 -n 32 trace
//	laddertrace -signal noise -soft trace > trace.csv
//	laddertrace -fixed -n 8 trace
//	laddertrace -cutoff 512 -quality 512 -points 40 response
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/cwbudde/algo-ladder/dsp/filter/ladder"
	"github.com/cwbudde/algo-ladder/dsp/signal"
	"github.com/cwbudde/algo-ladder/measure/response"
)

type options struct {
	cutoff  uint
	quality uint
	soft    bool
	fixed   bool
	signal  string
	freq    float64
	amp     float64
	n       int
	rate    float64
	points  int
	fftSize int
	csv     bool
}

func main() {
	var o options

	flag.UintVar(&o.cutoff, "cutoff", 73, "cutoff code (0..1023)")
	flag.UintVar(&o.quality, "quality", 0, "quality code (0..1023)")
	flag.BoolVar(&o.soft, "soft", false, "enable the soft clipper")
	flag.BoolVar(&o.fixed, "fixed", false, "pad every trace sample to the worst-case cycle count")
	flag.StringVar(&o.signal, "signal", "square", "trace input: square, sine, noise or impulse")
	flag.Float64Var(&o.freq, "freq", 1000, "trace input frequency in Hz")
	flag.Float64Var(&o.amp, "amp", 8000, "input amplitude")
	flag.IntVar(&o.n, "n", 64, "trace length in samples")
	flag.Float64Var(&o.rate, "rate", ladder.InternalSampleRate, "sample rate in Hz")
	flag.IntVar(&o.points, "points", 24, "response points")
	flag.IntVar(&o.fftSize, "fft", 16384, "response FFT size")
	flag.BoolVar(&o.csv, "csv", false, "force CSV output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: laddertrace [flags] trace|response\n\n")
		fmt.Fprintf(os.Stderr, "Traces the fixed-point ladder filter or measures its response.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  laddertrace -cutoff 200 -quality 1023 -n 32 trace\n")
		fmt.Fprintf(os.Stderr, "  laddertrace -signal noise -soft trace > trace.csv\n")
		fmt.Fprintf(os.Stderr, "  laddertrace -fixed -n 8 trace\n")
		fmt.Fprintf(os.Stderr, "  laddertrace -cutoff 512 -quality 512 -points 40 response\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if o.cutoff > uint(ladder.MaxCode) || o.quality > uint(ladder.MaxCode) {
		fmt.Fprintf(os.Stderr, "error: codes must be in [0, %d]\n", ladder.MaxCode)
		os.Exit(1)
	}

	out := newTable(os.Stdout, o.csv || !term.IsTerminal(int(os.Stdout.Fd())))

	var err error

	switch strings.ToLower(flag.Arg(0)) {
	case "trace":
		err = trace(out, o)
	case "response":
		err = sweep(out, o)
	default:
		err = fmt.Errorf("unknown mode %q", flag.Arg(0))
	}

	if err == nil {
		err = out.Flush()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func trace(out table, o options) error {
	m, err := ladder.NewMachine(
		ladder.WithCutoff(ladder.Code(o.cutoff)),
		ladder.WithQuality(ladder.Code(o.quality)),
		ladder.WithSoftClip(o.soft),
		ladder.WithFixedLatency(o.fixed),
	)
	if err != nil {
		return err
	}

	in, err := input(o)
	if err != nil {
		return err
	}

	if err := out.Row("n", "in", "out", "s0", "s1", "s2", "s3", "cycles"); err != nil {
		return err
	}

	for i, x := range in {
		y, cycles, err := m.Run(x)
		if err != nil {
			return err
		}

		st := m.Filter().State().Stage
		if err := out.Row(
			strconv.Itoa(i),
			strconv.Itoa(int(x)),
			strconv.Itoa(int(y)),
			strconv.Itoa(int(st[0])),
			strconv.Itoa(int(st[1])),
			strconv.Itoa(int(st[2])),
			strconv.Itoa(int(st[3])),
			strconv.Itoa(cycles),
		); err != nil {
			return err
		}
	}

	return nil
}

func input(o options) ([]int16, error) {
	amp := math.Min(math.Abs(o.amp), math.MaxInt16)

	switch strings.ToLower(o.signal) {
	case "square":
		return signal.Square16(o.freq, o.rate, o.n), nil
	case "sine":
		return signal.Sine16(o.freq, o.rate, amp, o.n), nil
	case "noise":
		return signal.Noise16(1, int16(amp), o.n), nil
	case "impulse":
		return signal.Impulse16(o.n, 0, int16(amp)), nil
	default:
		return nil, fmt.Errorf("unknown signal %q", o.signal)
	}
}

func sweep(out table, o options) error {
	f, err := ladder.New(
		ladder.WithCutoff(ladder.Code(o.cutoff)),
		ladder.WithQuality(ladder.Code(o.quality)),
		ladder.WithSoftClip(o.soft),
	)
	if err != nil {
		return err
	}

	an, err := response.NewAnalyzer(response.Config{SampleRate: o.rate, FFTSize: o.fftSize})
	if err != nil {
		return err
	}

	lo := 2 * an.BinHz()
	hi := 0.45 * o.rate

	points, err := an.Sweep(response.Int16{P: f}, response.LogGrid(lo, hi, o.points), o.amp)
	if err != nil {
		return err
	}

	if err := out.Row("hz", "measured_db", "model_db", "error_db"); err != nil {
		return err
	}

	fmtDB := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

	for _, p := range points {
		model := ladder.MagnitudeDB(ladder.Code(o.cutoff), ladder.Code(o.quality), f.Format(), o.rate, p.Hz)
		if err := out.Row(
			strconv.FormatFloat(p.Hz, 'f', 1, 64),
			fmtDB(p.DB),
			fmtDB(model),
			fmtDB(p.DB-model),
		); err != nil {
			return err
		}
	}

	return nil
}

// table writes rows either as CSV or as tab-aligned columns.
type table interface {
	Row(cols ...string) error
	Flush() error
}

func newTable(w io.Writer, asCSV bool) table {
	if asCSV {
		return csvTable{csv.NewWriter(w)}
	}

	return tabTable{tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)}
}

type csvTable struct{ w *csv.Writer }

func (t csvTable) Row(cols ...string) error { return t.w.Write(cols) }

func (t csvTable) Flush() error {
	t.w.Flush()
	return t.w.Error()
}

type tabTable struct{ w *tabwriter.Writer }

func (t tabTable) Row(cols ...string) error {
	_, err := fmt.Fprintf(t.w, "%s\t\n", strings.Join(cols, "\t"))
	return err
}

func (t tabTable) Flush() error { return t.w.Flush() }

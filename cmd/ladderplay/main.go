// Command ladderplay renders a sawtooth through the oversampled ladder filter
// and plays it, or writes it as raw signed 16-bit little-endian PCM.
//
// Usage:
//
//	ladderplay [flags]
//
// The cutoff knob follows the exponential taper. With -sweep the knob moves
// up and down over the given period.
//
// Examples:
//
//	ladderplay -knob 600 -quality 900
//	ladderplay -sweep 4s -quality 1023 -soft
//	ladderplay -duration 2s -out saw.raw
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/cwbudde/algo-ladder/dsp/filter/ladder"
)

func main() {
	freq := flag.Float64("freq", 110, "oscillator frequency in Hz")
	amp := flag.Int("amp", 12000, "oscillator amplitude")
	knob := flag.Uint("knob", 700, "cutoff knob position (0..1023)")
	quality := flag.Uint("quality", 800, "quality code (0..1023)")
	soft := flag.Bool("soft", false, "enable the soft clipper")
	factor := flag.Int("oversample", 4, "oversampling factor (1, 2, 4 or 8)")
	sweep := flag.Duration("sweep", 0, "knob sweep period, 0 holds the knob")
	duration := flag.Duration("duration", 5*time.Second, "length of the rendered sound")
	out := flag.String("out", "", "write raw PCM to this file instead of playing (- for stdout)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ladderplay [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Plays a sawtooth through the fixed-point ladder filter.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  ladderplay -knob 600 -quality 900\n")
		fmt.Fprintf(os.Stderr, "  ladderplay -sweep 4s -quality 1023 -soft\n")
		fmt.Fprintf(os.Stderr, "  ladderplay -duration 2s -out saw.raw\n")
	}
	flag.Parse()

	if *knob > uint(ladder.MaxCode) || *quality > uint(ladder.MaxCode) {
		fmt.Fprintf(os.Stderr, "error: codes must be in [0, %d]\n", ladder.MaxCode)
		os.Exit(1)
	}

	if *amp < 1 || *amp > math.MaxInt16 {
		fmt.Fprintf(os.Stderr, "error: amplitude must be in [1, %d]\n", math.MaxInt16)
		os.Exit(1)
	}

	over, err := ladder.NewOversampler(*factor, ladder.LinearInput,
		ladder.WithQuality(ladder.Code(*quality)),
		ladder.WithSoftClip(*soft),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	sampleRate := int(math.Round(ladder.NominalSampleRate))
	src := newSynth(over, synthConfig{
		sampleRate: float64(sampleRate),
		freq:       *freq,
		amplitude:  int16(*amp),
		knob:       ladder.Code(*knob),
		sweep:      *sweep,
		samples:    int(duration.Seconds() * float64(sampleRate)),
	})

	if *out != "" {
		err = write(*out, src)
	} else {
		err = play(sampleRate, src)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func write(path string, src io.Reader) error {
	if path == "-" {
		w := bufio.NewWriter(os.Stdout)
		if _, err := io.Copy(w, src); err != nil {
			return err
		}

		return w.Flush()
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if _, err := io.Copy(w, src); err != nil {
		_ = f.Close()
		return err
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

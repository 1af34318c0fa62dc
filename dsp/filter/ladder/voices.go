package ladder

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// voiceBlock is the number of samples a voice processes between
// cancellation checks.
const voiceBlock = 256

// ProcessVoices filters bufs[i] in place with voices[i], one goroutine per
// voice. Voices must be distinct filters; a repeated filter is rejected.
// They may share a *divider.Shared. The first error (or cancellation of ctx) stops the
// remaining voices at their next block boundary.
func ProcessVoices(ctx context.Context, voices []*Filter, bufs [][]int16) error {
	if len(voices) != len(bufs) {
		return fmt.Errorf("ladder: %d voices but %d buffers", len(voices), len(bufs))
	}

	seen := make(map[*Filter]int, len(voices))
	for i, v := range voices {
		if v == nil {
			return fmt.Errorf("ladder: voice %d is nil", i)
		}

		if j, ok := seen[v]; ok {
			return fmt.Errorf("ladder: voice %d repeats voice %d", i, j)
		}

		seen[v] = i
	}

	g, ctx := errgroup.WithContext(ctx)

	for i, v := range voices {
		buf := bufs[i]

		g.Go(func() error {
			for start := 0; start < len(buf); start += voiceBlock {
				if err := ctx.Err(); err != nil {
					return err
				}

				v.ProcessInPlace(buf[start:min(start+voiceBlock, len(buf))])
			}

			return nil
		})
	}

	return g.Wait()
}

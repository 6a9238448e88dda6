package abstract

import (
	"errors"
	"math"
	"strings"

	"github.com/openpaper/abstractor/page"
)

// Tuning defaults for the gap-based strategy.
const (
	// DefaultMinWords is the word count above which the block right
	// after the header is taken to contain the whole abstract.
	DefaultMinWords = 100
	// DefaultInitialBlocks is the number of blocks absorbed
	// unconditionally before gap consistency is enforced.
	DefaultInitialBlocks = 5
	// DefaultGapThreshold is the tolerated relative deviation of a
	// block's gap from the running average.
	DefaultGapThreshold = 0.5
)

// ErrNoBlockAfterHeader reports a page whose abstract header is the
// final block, leaving no candidate body to inspect.
var ErrNoBlockAfterHeader = errors.New("abstract: no block after header")

// GapParams tunes FromBlocks. Zero values are replaced with the
// package defaults.
type GapParams struct {
	MinWords      int
	InitialBlocks int
	GapThreshold  float64
}

func (p GapParams) withDefaults() GapParams {
	if p.MinWords == 0 {
		p.MinWords = DefaultMinWords
	}
	if p.InitialBlocks == 0 {
		p.InitialBlocks = DefaultInitialBlocks
	}
	if p.GapThreshold == 0 {
		p.GapThreshold = DefaultGapThreshold
	}
	return p
}

// FromBlocks extracts the abstract from ordered page blocks by merging
// the blocks that follow the header while their vertical gaps stay
// consistent.
//
// The block immediately after the header is inspected first: past
// MinWords it is assumed to hold the entire abstract and is returned
// after trailing-noise filtering alone. Shorter candidates start a
// multi-block merge: the first InitialBlocks blocks are absorbed
// unconditionally (spacing right after a header is often irregular),
// after which a block whose gap deviates from the running average by
// more than GapThreshold of that average ends the abstract.
//
// The bool result is false when no header block exists. A header with
// no block after it is a malformed layout and returns an error.
func FromBlocks(blocks []page.Block, p GapParams) (string, bool, error) {
	p = p.withDefaults()

	header := -1
	for i, b := range blocks {
		if IsHeader(b.Text) {
			header = i
			break
		}
	}
	if header < 0 {
		return "", false, nil
	}
	if header+1 >= len(blocks) {
		return "", false, ErrNoBlockAfterHeader
	}

	first := blocks[header+1]
	if len(strings.Fields(first.Text)) > p.MinWords {
		// Single-block abstract: only trailing noise is stripped.
		// Whitespace normalization happens on the multi-block path alone.
		return FilterTrailingNoise(first.Text, DefaultNoiseRules), true, nil
	}

	collected := []string{first.Text}
	var gaps []float64
	cur := header + 1

	// Warm-up: absorb unconditionally.
	for cur < len(blocks)-1 && len(collected) < p.InitialBlocks {
		next := blocks[cur+1]
		gaps = append(gaps, next.Box.Y0-blocks[cur].Box.Y1)
		collected = append(collected, next.Text)
		cur++
	}

	// Steady state: absorb while the gap stays near the average.
	for cur < len(blocks)-1 {
		if len(gaps) == 0 {
			break
		}
		next := blocks[cur+1]
		gap := next.Box.Y0 - blocks[cur].Box.Y1
		avg := mean(gaps)
		if math.Abs(gap-avg) > p.GapThreshold*avg {
			break
		}
		collected = append(collected, next.Text)
		gaps = append(gaps, gap)
		cur++
	}

	return Clean(strings.Join(collected, " ")), true, nil
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

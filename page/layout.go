package page

import (
	"sort"
	"strings"
)

// Grouping tolerances, in fractions of the observed glyph/line height.
const (
	// lineSlack is the vertical distance within which two spans are
	// considered part of the same visual line.
	lineSlack = 0.4
	// wordGapFactor times the span height is the horizontal gap that
	// separates two words on a line.
	wordGapFactor = 0.2
	// regionGapFactor times the average line height is the vertical gap
	// that starts a new block. Single-spaced body lines sit well under
	// it; paragraph and section breaks exceed it.
	regionGapFactor = 0.8
)

// span is a positioned run of text on one visual line, in top-left
// origin coordinates.
type span struct {
	x0, x1      float64
	top, bottom float64
	text        string
}

func (s span) height() float64 { return s.bottom - s.top }

// line is a group of spans sharing a baseline.
type line struct {
	spans       []span
	x0, x1      float64
	top, bottom float64
}

func (l line) height() float64 { return l.bottom - l.top }

// buildLines groups spans into visual lines. Spans whose vertical
// midpoints sit within lineSlack of a line's running midpoint join that
// line; others start a new one. Lines come back sorted top to bottom,
// spans within a line left to right.
func buildLines(spans []span) []line {
	if len(spans) == 0 {
		return nil
	}

	sorted := make([]span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		mi := (sorted[i].top + sorted[i].bottom) / 2
		mj := (sorted[j].top + sorted[j].bottom) / 2
		if mi != mj {
			return mi < mj
		}
		return sorted[i].x0 < sorted[j].x0
	})

	var lines []line
	cur := newLine(sorted[0])
	for _, s := range sorted[1:] {
		mid := (s.top + s.bottom) / 2
		curMid := (cur.top + cur.bottom) / 2
		if abs(mid-curMid) <= lineSlack*max(s.height(), cur.height()) {
			cur.add(s)
			continue
		}
		lines = append(lines, cur)
		cur = newLine(s)
	}
	lines = append(lines, cur)

	for i := range lines {
		sort.SliceStable(lines[i].spans, func(a, b int) bool {
			return lines[i].spans[a].x0 < lines[i].spans[b].x0
		})
	}
	return lines
}

func newLine(s span) line {
	return line{spans: []span{s}, x0: s.x0, x1: s.x1, top: s.top, bottom: s.bottom}
}

func (l *line) add(s span) {
	l.spans = append(l.spans, s)
	if s.x0 < l.x0 {
		l.x0 = s.x0
	}
	if s.x1 > l.x1 {
		l.x1 = s.x1
	}
	if s.top < l.top {
		l.top = s.top
	}
	if s.bottom > l.bottom {
		l.bottom = s.bottom
	}
}

// text joins a line's spans. A space is inserted between spans whose
// horizontal gap reaches wordGapFactor of the line height; tighter runs
// are treated as one split word and joined directly.
func (l line) text() string {
	var b strings.Builder
	for i, s := range l.spans {
		if i > 0 {
			gap := s.x0 - l.spans[i-1].x1
			if gap >= wordGapFactor*l.height() {
				b.WriteByte(' ')
			}
		}
		b.WriteString(s.text)
	}
	return b.String()
}

// mergeLines groups consecutive lines into rectangular regions. A line
// joins the current region when the vertical gap to the region's last
// line stays under regionGapFactor of the average line height and the
// two overlap horizontally; otherwise it starts a new region. Column
// neighbours never overlap horizontally, so they stay separate.
func mergeLines(lines []line) [][]line {
	if len(lines) == 0 {
		return nil
	}

	var total float64
	for _, l := range lines {
		total += l.height()
	}
	maxGap := regionGapFactor * (total / float64(len(lines)))

	var regions [][]line
	cur := []line{lines[0]}
	for _, l := range lines[1:] {
		prev := cur[len(cur)-1]
		gap := l.top - prev.bottom
		if gap <= maxGap && overlapsX(prev, l) {
			cur = append(cur, l)
			continue
		}
		regions = append(regions, cur)
		cur = []line{l}
	}
	regions = append(regions, cur)
	return regions
}

// overlapsX reports whether two lines share any horizontal extent.
func overlapsX(a, b line) bool {
	return a.x0 < b.x1 && b.x0 < a.x1
}

// regionBox returns the union rectangle of a region's lines.
func regionBox(region []line) Box {
	box := Box{X0: region[0].x0, Y0: region[0].top, X1: region[0].x1, Y1: region[0].bottom}
	for _, l := range region[1:] {
		if l.x0 < box.X0 {
			box.X0 = l.x0
		}
		if l.x1 > box.X1 {
			box.X1 = l.x1
		}
		if l.top < box.Y0 {
			box.Y0 = l.top
		}
		if l.bottom > box.Y1 {
			box.Y1 = l.bottom
		}
	}
	return box
}

// regionText joins a region's lines with single spaces.
func regionText(region []line) string {
	parts := make([]string, 0, len(region))
	for _, l := range region {
		if t := l.text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

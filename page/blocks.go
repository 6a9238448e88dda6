package page

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// defaultPageHeight is US Letter in points, used when a document carries
// no resolvable MediaBox.
const defaultPageHeight = 792.0

// baselineSlack is the vertical play, in points, within which two glyphs
// are taken to share a baseline.
const baselineSlack = 1.0

// ReadBlocks decodes the first page of the PDF at path into ordered text
// blocks. Glyphs are assembled into words, words into lines, lines into
// blocks by vertical-gap proximity. A page with no text yields zero
// blocks; a file that cannot be decoded yields an error.
func ReadBlocks(path string) (blocks []Block, err error) {
	// The underlying reader panics on some malformed documents; those
	// must surface as decode errors, not crash the caller.
	defer func() {
		if r := recover(); r != nil {
			blocks = nil
			err = fmt.Errorf("decoding PDF: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	if reader.NumPage() < 1 {
		return nil, fmt.Errorf("PDF has no pages")
	}
	p := reader.Page(1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("PDF page 1 is missing")
	}

	content := p.Content()
	if len(content.Text) == 0 {
		return nil, nil
	}

	words := assembleWords(content.Text, pageHeight(p))
	regions := mergeLines(buildLines(words))

	blocks = make([]Block, 0, len(regions))
	for _, reg := range regions {
		text := foldText(regionText(reg))
		if strings.TrimSpace(text) == "" {
			continue
		}
		blocks = append(blocks, Block{Box: regionBox(reg), Text: text})
	}
	return blocks, nil
}

// assembleWords joins per-glyph content into word spans. Glyphs are
// ordered top-to-bottom, left-to-right in PDF user space (y up), then
// split into words wherever the baseline changes or the horizontal gap
// exceeds the word-break distance for the glyph's font size.
func assembleWords(glyphs []pdf.Text, pageH float64) []span {
	gs := make([]pdf.Text, 0, len(glyphs))
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			continue
		}
		gs = append(gs, g)
	}
	if len(gs) == 0 {
		return nil
	}

	sort.SliceStable(gs, func(i, j int) bool {
		if gs[i].Y != gs[j].Y {
			return gs[i].Y > gs[j].Y // higher Y = higher on page
		}
		return gs[i].X < gs[j].X
	})

	var words []span
	var cur []pdf.Text
	flush := func() {
		if len(cur) > 0 {
			words = append(words, wordSpan(cur, pageH))
			cur = nil
		}
	}
	for i, g := range gs {
		if i > 0 {
			prev := gs[i-1]
			gap := g.X - (prev.X + prev.W)
			if abs(g.Y-prev.Y) > baselineSlack || gap > wordBreak(prev) {
				flush()
			}
		}
		cur = append(cur, g)
	}
	flush()
	return words
}

// wordBreak is the horizontal gap beyond which two glyphs belong to
// separate words.
func wordBreak(g pdf.Text) float64 {
	if g.FontSize > 0 {
		return 0.3 * g.FontSize
	}
	return 2.0
}

// wordSpan collapses a run of same-word glyphs into a span, flipping
// the baseline into top-left origin coordinates. Descenders are ignored;
// the font size stands in for the glyph height.
func wordSpan(gs []pdf.Text, pageH float64) span {
	x0, x1 := gs[0].X, gs[0].X+gs[0].W
	size := gs[0].FontSize
	var b strings.Builder
	for _, g := range gs {
		if g.X < x0 {
			x0 = g.X
		}
		if g.X+g.W > x1 {
			x1 = g.X + g.W
		}
		if g.FontSize > size {
			size = g.FontSize
		}
		b.WriteString(g.S)
	}
	if size <= 0 {
		size = 10
	}
	base := gs[0].Y
	return span{
		x0:     x0,
		x1:     x1,
		top:    pageH - (base + size),
		bottom: pageH - base,
		text:   b.String(),
	}
}

// pageHeight resolves the page's MediaBox height, following Parent
// links for inherited boxes.
func pageHeight(p pdf.Page) float64 {
	mb := p.V.Key("MediaBox")
	node := p.V
	for mb.IsNull() {
		node = node.Key("Parent")
		if node.IsNull() {
			break
		}
		mb = node.Key("MediaBox")
	}
	if mb.Kind() != pdf.Array || mb.Len() != 4 {
		return defaultPageHeight
	}
	y0 := boxNum(mb, 1)
	y1 := boxNum(mb, 3)
	if y1 > y0 {
		return y1 - y0
	}
	return defaultPageHeight
}

// boxNum reads one numeric entry of a PDF rectangle array.
func boxNum(v pdf.Value, i int) float64 {
	e := v.Index(i)
	switch e.Kind() {
	case pdf.Integer:
		return float64(e.Int64())
	case pdf.Real:
		return e.Float64()
	}
	return 0
}

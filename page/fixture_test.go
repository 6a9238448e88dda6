package page

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// pdfLine is one line of a synthetic page: a baseline measured down from
// the page top and the words placed on it left to right.
type pdfLine struct {
	y     float64
	size  float64
	style string
	words []string
}

// renderLines paints lines onto the current page. Every word gets its
// own Td at an advance proportional to the font size; the core fonts
// carry no width table, so per-glyph advances cannot be relied on.
func renderLines(doc *gofpdf.Fpdf, lines []pdfLine) {
	for _, ln := range lines {
		doc.SetFont("Helvetica", ln.style, ln.size)
		x := 72.0
		for _, w := range ln.words {
			doc.Text(x, ln.y, w)
			x += 0.6*ln.size*float64(len(w)) + 0.4*ln.size
		}
	}
}

func savePDF(t *testing.T, doc *gofpdf.Fpdf) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.pdf")
	if err := doc.OutputFileAndClose(path); err != nil {
		t.Fatalf("writing fixture PDF: %v", err)
	}
	return path
}

// newFixtureDoc starts a single-page Letter document measured in points.
func newFixtureDoc() *gofpdf.Fpdf {
	doc := gofpdf.New("P", "pt", "Letter", "")
	doc.AddPage()
	return doc
}

// writeFixturePDF renders lines onto a single Letter page in points.
func writeFixturePDF(t *testing.T, lines []pdfLine) string {
	t.Helper()
	doc := newFixtureDoc()
	renderLines(doc, lines)
	return savePDF(t, doc)
}

var abstractBodyLines = []string{
	"We study the recovery of band-limited",
	"signals transmitted over dispersive channels with strong",
	"additive noise. A decomposition of the received",
	"waveform into spectral atoms separates channel distortion",
	"from source structure and admits a closed",
	"form estimator. Experiments on simulated and recorded",
	"acoustic traces show consistent gains over matched",
	"filtering at low signal to noise ratios.",
}

// abstractText is the body exactly as the decoders should reassemble it.
var abstractText = strings.Join(abstractBodyLines, " ")

// academicLines lays out a typical paper first page: a bold title, an
// author line, the Abstract header, and a single-spaced abstract body at
// a 12pt leading. The vertical gaps between sections are wide enough to
// split regions, the gaps inside the body narrow enough to merge.
func academicLines() []pdfLine {
	lines := []pdfLine{
		{y: 80, size: 16, style: "B", words: strings.Fields("Spectral Decomposition of Noisy Acoustic Channels")},
		{y: 104, size: 10, words: strings.Fields("R. Alvarez, M. Chen, and J. Okafor")},
		{y: 140, size: 12, style: "B", words: []string{"Abstract"}},
	}
	for i, text := range abstractBodyLines {
		lines = append(lines, pdfLine{y: 164 + 12*float64(i), size: 10, words: strings.Fields(text)})
	}
	return lines
}

var introBodyLines = []string{
	"Dispersive media smear transmitted energy across both",
	"time and frequency, degrading any receiver built",
	"on a single matched template.",
}

// crowdedLines extends the academic page with the matter that usually
// follows an abstract: a keywords line and the opening of the
// introduction.
func crowdedLines() []pdfLine {
	lines := academicLines()
	lines = append(lines,
		pdfLine{y: 272, size: 10, style: "I", words: strings.Fields("Keywords: spectral atoms, dispersive channels, matched filtering")},
		pdfLine{y: 304, size: 12, style: "B", words: strings.Fields("1 Introduction")},
	)
	for i, text := range introBodyLines {
		lines = append(lines, pdfLine{y: 324 + 12*float64(i), size: 10, words: strings.Fields(text)})
	}
	return lines
}

func approx(got, want float64) bool { return math.Abs(got-want) < 0.1 }

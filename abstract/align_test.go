package abstract

import (
	"testing"

	"github.com/openpaper/abstractor/page"
)

// quadAt builds a quad from horizontal extent [x0, x1] and vertical
// extent [top, bottom] in top-left origin coordinates.
func quadAt(x0, x1, top, bottom float64) page.Quad {
	return page.Quad{
		{X: x0, Y: top},
		{X: x0, Y: bottom},
		{X: x1, Y: bottom},
		{X: x1, Y: top},
	}
}

func elem(text string, q page.Quad) page.Element {
	return page.Element{Text: text, Quad: q, HasQuad: true}
}

func TestFromElementsSelectsAlignedCandidate(t *testing.T) {
	elems := []page.Element{
		elem("Abstract", quadAt(0, 100, 0, 20)),
		elem("the abstract body text", quadAt(0, 100, 25, 80)),
	}
	text, found := FromElements(elems, AlignParams{})
	if !found {
		t.Fatal("expected a candidate")
	}
	if want := "the abstract body text"; text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestFromElementsRejectsOffsetCandidate(t *testing.T) {
	elems := []page.Element{
		elem("Abstract", quadAt(0, 100, 0, 20)),
		// Tall enough, but far to the right: an affiliation column,
		// not the abstract body.
		elem("Department of Things", quadAt(200, 300, 25, 80)),
	}
	_, found := FromElements(elems, AlignParams{})
	if found {
		t.Error("horizontally offset element should not qualify")
	}
}

func TestFromElementsRejectsShortCandidate(t *testing.T) {
	elems := []page.Element{
		elem("Abstract", quadAt(0, 100, 0, 20)),
		// Aligned but only 30 units tall: not more than twice the
		// header's 20.
		elem("Keywords: things, stuff", quadAt(0, 100, 25, 55)),
	}
	_, found := FromElements(elems, AlignParams{})
	if found {
		t.Error("one-line candidate should not qualify")
	}
}

func TestFromElementsNearestCandidateWins(t *testing.T) {
	elems := []page.Element{
		elem("Abstract", quadAt(0, 100, 0, 20)),
		elem("far body", quadAt(0, 100, 200, 300)),
		elem("near body", quadAt(0, 100, 25, 80)),
	}
	text, found := FromElements(elems, AlignParams{})
	if !found {
		t.Fatal("expected a candidate")
	}
	if want := "near body"; text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestFromElementsIgnoresElementsAboveHeader(t *testing.T) {
	elems := []page.Element{
		elem("A Long Paper Title Spanning The Page", quadAt(0, 100, 0, 60)),
		elem("Abstract", quadAt(0, 100, 100, 120)),
		elem("actual body", quadAt(0, 100, 125, 180)),
	}
	text, found := FromElements(elems, AlignParams{})
	if !found {
		t.Fatal("expected a candidate")
	}
	if want := "actual body"; text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestFromElementsOrderIndependent(t *testing.T) {
	// The body precedes the header in the element sequence, as content
	// streams are free to do. Geometry alone decides.
	elems := []page.Element{
		elem("out-of-order body", quadAt(0, 100, 25, 80)),
		elem("Abstract", quadAt(0, 100, 0, 20)),
	}
	text, found := FromElements(elems, AlignParams{})
	if !found {
		t.Fatal("expected a candidate")
	}
	if want := "out-of-order body"; text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestFromElementsNoHeader(t *testing.T) {
	elems := []page.Element{
		elem("Introduction", quadAt(0, 100, 0, 20)),
		elem("body text", quadAt(0, 100, 25, 80)),
	}
	if _, found := FromElements(elems, AlignParams{}); found {
		t.Error("no header should mean no result")
	}
}

func TestFromElementsHeaderWithoutGeometry(t *testing.T) {
	elems := []page.Element{
		{Text: "Abstract"},
		elem("body text", quadAt(0, 100, 25, 80)),
	}
	if _, found := FromElements(elems, AlignParams{}); found {
		t.Error("header without geometry should mean no result")
	}
}

func TestFromElementsSkipsCandidatesWithoutGeometry(t *testing.T) {
	elems := []page.Element{
		elem("Abstract", quadAt(0, 100, 0, 20)),
		{Text: "floating decoration"},
		elem("real body", quadAt(0, 100, 25, 80)),
	}
	text, found := FromElements(elems, AlignParams{})
	if !found {
		t.Fatal("expected a candidate")
	}
	if want := "real body"; text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestFromElementsXTolerance(t *testing.T) {
	elems := []page.Element{
		elem("Abstract", quadAt(0, 100, 0, 20)),
		// Indented 15 units: inside the default tolerance of 20,
		// outside a tightened tolerance of 5.
		elem("slightly indented body", quadAt(15, 100, 25, 80)),
	}

	if _, found := FromElements(elems, AlignParams{}); !found {
		t.Error("candidate within default tolerance should qualify")
	}
	if _, found := FromElements(elems, AlignParams{XTolerance: 5}); found {
		t.Error("candidate outside tightened tolerance should not qualify")
	}
}

func TestFromElementsCleansCandidateText(t *testing.T) {
	elems := []page.Element{
		elem("Abstract", quadAt(0, 100, 0, 20)),
		elem("ragged\n  body   text", quadAt(0, 100, 25, 80)),
	}
	text, found := FromElements(elems, AlignParams{})
	if !found {
		t.Fatal("expected a candidate")
	}
	if want := "ragged body text"; text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

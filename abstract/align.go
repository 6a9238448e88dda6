package abstract

import (
	"math"

	"github.com/openpaper/abstractor/page"
)

// DefaultXTolerance is the horizontal play, in page units, allowed when
// testing whether a candidate's span brackets the header's span.
const DefaultXTolerance = 20

// AlignParams tunes FromElements. A zero XTolerance is replaced with
// DefaultXTolerance.
type AlignParams struct {
	XTolerance float64
}

func (p AlignParams) withDefaults() AlignParams {
	if p.XTolerance == 0 {
		p.XTolerance = DefaultXTolerance
	}
	return p
}

// FromElements extracts the abstract by geometry: the element chosen is
// the one closest below the header whose horizontal span brackets the
// header's within XTolerance and whose height exceeds twice the
// header's. Narrow or offset elements are author and affiliation lines,
// not the abstract body; one-line candidates are section titles.
// Selection ignores element order, which in a PDF content stream need
// not match reading order; everything geometrically above the header,
// the header itself included, is skipped.
//
// Returns false when no header element exists, when the header carries
// no geometry, or when no element passes all three constraints.
func FromElements(elems []page.Element, p AlignParams) (string, bool) {
	p = p.withDefaults()

	header := -1
	for i, e := range elems {
		if IsHeader(e.Text) {
			header = i
			break
		}
	}
	if header < 0 || !elems[header].HasQuad {
		return "", false
	}

	hq := elems[header].Quad
	leftX := hq[0].X
	rightX := hq[3].X
	bottomY := hq[1].Y
	headerHeight := hq[1].Y - hq[0].Y

	best := -1
	bestDist := math.Inf(1)
	for i, e := range elems {
		if !e.HasQuad {
			continue
		}
		q := e.Quad
		if q[0].Y < bottomY {
			continue // above the header
		}
		if q[0].X > leftX+p.XTolerance || q[3].X < rightX-p.XTolerance {
			continue // does not bracket the header's span
		}
		if q[1].Y-q[0].Y <= 2*headerHeight {
			continue // too short to be a body paragraph
		}
		if d := q[0].Y - bottomY; d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return Clean(elems[best].Text), true
}

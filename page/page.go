// Package page decodes the first page of a PDF into the two geometric
// views the extraction strategies consume: ordered text blocks with
// bounding boxes, and structural elements with corner-point quads.
//
// Two independent decoders are provided. ReadBlocks reconstructs blocks
// from per-glyph geometry (github.com/ledongthuc/pdf); ReadElements
// interprets the raw content stream with position tracking
// (github.com/pdfcpu/pdfcpu). Both report coordinates in a top-left
// origin system: y grows downward, so a block visually below another has
// the larger Y0.
package page

// Box is an axis-aligned bounding rectangle. (X0, Y0) is the top-left
// corner, (X1, Y1) the bottom-right.
type Box struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b.Y1 - b.Y0 }

// Block is a rectangular text region in page reading order, roughly
// top-to-bottom. Blocks are immutable once returned.
type Block struct {
	Box  Box
	Text string
}

// Point is a 2D page coordinate.
type Point struct {
	X, Y float64
}

// Quad holds the four corners of an element region:
// index 0 top-left, 1 bottom-left, 2 bottom-right, 3 top-right.
type Quad [4]Point

// Height returns the vertical extent of the quad.
func (q Quad) Height() float64 { return q[1].Y - q[0].Y }

// Element is a decoded structural unit with precise corner geometry.
// HasQuad reports whether geometry could be derived for the element;
// it is resolved once at the decode boundary, so consumers only check
// the flag, never the coordinate values themselves. Elements with
// HasQuad false carry a zero Quad.
type Element struct {
	Text    string
	Quad    Quad
	HasQuad bool
}

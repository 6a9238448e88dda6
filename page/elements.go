package page

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// approxGlyphWidth is the average advance of a glyph as a fraction of
// the font size, used to estimate run extents without font metrics.
const approxGlyphWidth = 0.5

// ReadElements decodes the first page of the PDF at path into
// structural elements with corner-point quads. The page's content
// stream is interpreted directly; runs painted with a rotated or
// sheared matrix yield elements without geometry (HasQuad false)
// rather than failing the decode.
func ReadElements(path string) ([]Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	if ctx.PageCount < 1 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	r, err := pdfcpu.ExtractPageContent(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("extracting page 1 content: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading page 1 content: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	return assembleElements(interpretTextStream(data), pageHeightOf(ctx)), nil
}

// pageHeightOf resolves the first page's height from the document's
// page dimensions, defaulting to US Letter.
func pageHeightOf(ctx *model.Context) float64 {
	dims, err := ctx.PageDims()
	if err == nil && len(dims) > 0 && dims[0].Height > 0 {
		return dims[0].Height
	}
	return defaultPageHeight
}

// assembleElements groups positioned text runs into elements. Upright
// runs are merged into lines and line regions exactly like blocks;
// each region becomes one element with a full quad. Skewed runs keep
// their text but carry no geometry.
func assembleElements(runs []textRun, pageH float64) []Element {
	var spans []span
	var skewed []textRun
	for _, r := range runs {
		if strings.TrimSpace(r.text) == "" {
			continue
		}
		if r.skewed {
			skewed = append(skewed, r)
			continue
		}
		spans = append(spans, span{
			x0:     r.x,
			x1:     r.x + approxGlyphWidth*r.size*float64(len([]rune(r.text))),
			top:    pageH - (r.y + r.size),
			bottom: pageH - r.y,
			text:   r.text,
		})
	}

	var elems []Element
	for _, reg := range mergeLines(buildLines(spans)) {
		text := foldText(regionText(reg))
		if strings.TrimSpace(text) == "" {
			continue
		}
		elems = append(elems, Element{
			Text:    text,
			Quad:    boxQuad(regionBox(reg)),
			HasQuad: true,
		})
	}
	for _, r := range skewed {
		elems = append(elems, Element{Text: foldText(r.text)})
	}
	return elems
}

// boxQuad expands a rectangle into the quad corner order the alignment
// scan expects: top-left, bottom-left, bottom-right, top-right.
func boxQuad(b Box) Quad {
	return Quad{
		{X: b.X0, Y: b.Y0},
		{X: b.X0, Y: b.Y1},
		{X: b.X1, Y: b.Y1},
		{X: b.X1, Y: b.Y0},
	}
}

package page

import "testing"

func sp(x0, x1, top, bottom float64, text string) span {
	return span{x0: x0, x1: x1, top: top, bottom: bottom, text: text}
}

func TestBuildLinesGroupsByMidpoint(t *testing.T) {
	// Scrambled input, slight vertical jitter on the first line.
	spans := []span{
		sp(72, 120, 114, 124, "gamma"),
		sp(110, 150, 100.5, 110.5, "beta"),
		sp(72, 100, 100, 110, "alpha"),
	}

	lines := buildLines(spans)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if got := lines[0].text(); got != "alpha beta" {
		t.Errorf("lines[0].text() = %q, want %q", got, "alpha beta")
	}
	if got := lines[1].text(); got != "gamma" {
		t.Errorf("lines[1].text() = %q, want %q", got, "gamma")
	}

	l := lines[0]
	if l.x0 != 72 || l.x1 != 150 || l.top != 100 || l.bottom != 110.5 {
		t.Errorf("lines[0] bounds = [%v %v %v %v], want [72 150 100 110.5]",
			l.x0, l.x1, l.top, l.bottom)
	}
}

func TestLineTextJoinsTightRunsDirectly(t *testing.T) {
	// Kerned fragments of a single word arrive as separate spans; a gap
	// under a fifth of the line height is not a word break.
	spans := []span{
		sp(72, 80, 100, 110, "Ab"),
		sp(80.5, 95, 100, 110, "stract"),
	}

	lines := buildLines(spans)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if got := lines[0].text(); got != "Abstract" {
		t.Errorf("text = %q, want %q", got, "Abstract")
	}
}

func TestBuildLinesEmpty(t *testing.T) {
	if lines := buildLines(nil); lines != nil {
		t.Errorf("expected nil lines, got %+v", lines)
	}
	if regions := mergeLines(nil); regions != nil {
		t.Errorf("expected nil regions, got %+v", regions)
	}
}

func TestMergeLinesByGap(t *testing.T) {
	// Four single-spaced lines, then one after a paragraph break.
	var spans []span
	for i, text := range []string{"one", "two", "three", "four"} {
		top := 100 + 12*float64(i)
		spans = append(spans, sp(72, 300, top, top+10, text))
	}
	spans = append(spans, sp(72, 300, 170, 180, "five"))

	regions := mergeLines(buildLines(spans))
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
	if got := regionText(regions[0]); got != "one two three four" {
		t.Errorf("regionText = %q, want joined body", got)
	}
	if got := regionText(regions[1]); got != "five" {
		t.Errorf("regionText = %q, want %q", got, "five")
	}

	box := regionBox(regions[0])
	want := Box{X0: 72, Y0: 100, X1: 300, Y1: 146}
	if box != want {
		t.Errorf("regionBox = %+v, want %+v", box, want)
	}
}

func TestMergeLinesRequiresHorizontalOverlap(t *testing.T) {
	// A caption sits right under a paragraph but in its own column; a
	// small vertical gap alone must not merge them.
	spans := []span{
		sp(72, 300, 100, 110, "body one"),
		sp(72, 300, 112, 122, "body two"),
		sp(380, 500, 124, 134, "Figure 1"),
	}

	regions := mergeLines(buildLines(spans))
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
	if got := regionText(regions[1]); got != "Figure 1" {
		t.Errorf("regionText = %q, want %q", got, "Figure 1")
	}
}

func TestOverlapsX(t *testing.T) {
	a := line{x0: 72, x1: 300}
	tests := []struct {
		name string
		b    line
		want bool
	}{
		{"contained", line{x0: 100, x1: 200}, true},
		{"partial", line{x0: 250, x1: 400}, true},
		{"disjoint_right", line{x0: 320, x1: 400}, false},
		{"touching", line{x0: 300, x1: 400}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overlapsX(a, tt.b); got != tt.want {
				t.Errorf("overlapsX = %v, want %v", got, tt.want)
			}
		})
	}
}

package page

import "testing"

func TestFoldTextLigatures(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"eﬃcient", "efficient"},
		{"ﬁltering", "filtering"},
		{"diﬀer", "differ"},
		{"baﬄe", "baffle"},
		{"ﬆyle", "style"},
	}
	for _, tt := range tests {
		if got := foldText(tt.in); got != tt.want {
			t.Errorf("foldText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFoldTextDropsInvisibles(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"soft_hyphen", "ab\u00adcd", "abcd"},
		{"zero_widths", "a\u200bb\u200cc\u200dd", "abcd"},
		{"direction_marks", "a\u200eb\u200fc", "abc"},
		{"bom", "\ufeffstart", "start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := foldText(tt.in); got != tt.want {
				t.Errorf("foldText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFoldTextComposesNFC(t *testing.T) {
	// Decomposed e plus combining acute must come back as one rune.
	if got := foldText("cafe\u0301"); got != "caf\u00e9" {
		t.Errorf("foldText = %q, want composed %q", got, "caf\u00e9")
	}
}

func TestFoldTextPassthrough(t *testing.T) {
	if got := foldText(""); got != "" {
		t.Errorf("foldText(\"\") = %q", got)
	}
	plain := "plain ASCII text, untouched."
	if got := foldText(plain); got != plain {
		t.Errorf("foldText(%q) = %q", plain, got)
	}
}

package page

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ligatures maps the typographic ligature codepoints common in embedded
// PDF fonts back to their letter sequences. Left folded, "efficient"
// rendered with U+FB03 would never match a word-level comparison.
var ligatures = map[rune]string{
	'ﬀ': "ff",
	'ﬁ': "fi",
	'ﬂ': "fl",
	'ﬃ': "ffi",
	'ﬄ': "ffl",
	'ﬅ': "st",
	'ﬆ': "st",
}

// foldText normalizes decoded text for downstream matching: ligatures
// are expanded, zero-width and soft-hyphen characters dropped, and the
// result composed to NFC.
func foldText(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if seq, ok := ligatures[r]; ok {
			b.WriteString(seq)
			continue
		}
		switch r {
		case 0x00ad, // soft hyphen
			0x200b, 0x200c, 0x200d, // zero-width space, ZWNJ, ZWJ
			0x200e, 0x200f, // directional marks
			0xfeff: // byte order mark
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

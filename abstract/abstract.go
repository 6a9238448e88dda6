// Package abstract holds the heuristics that locate a paper's abstract
// on a decoded first page: header detection, text normalization, and
// the two extraction strategies (vertical-gap block merging and
// spatial-alignment candidate selection).
package abstract

import "strings"

// NoiseRule reports whether a token marks the start of trailing
// boilerplate (license lines, DOIs, URLs) glued onto the abstract.
type NoiseRule func(token string) bool

// DefaultNoiseRules match the footer noise most commonly concatenated
// into an abstract's final block: URLs, copyright marks, and DOI lines.
var DefaultNoiseRules = []NoiseRule{
	func(tok string) bool { return strings.HasPrefix(tok, "http") },
	func(tok string) bool { return strings.ContainsRune(tok, '©') },
	func(tok string) bool { return strings.Contains(strings.ToLower(tok), "copyright") },
	func(tok string) bool { return strings.HasPrefix(strings.ToLower(tok), "doi:") },
}

// Clean collapses every whitespace run, newlines included, to a single
// space and trims the ends.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FilterTrailingNoise copies whitespace-delimited tokens until the
// first one matching any rule, then discards that token and everything
// after it, even tokens that would not match on their own. Abstracts
// are frequently followed by footer boilerplate inside the same block;
// one left-to-right scan truncates it.
func FilterTrailingNoise(s string, rules []NoiseRule) string {
	var kept []string
	for _, tok := range strings.Fields(s) {
		if matchesAny(tok, rules) {
			break
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func matchesAny(tok string, rules []NoiseRule) bool {
	for _, rule := range rules {
		if rule(tok) {
			return true
		}
	}
	return false
}

// IsHeader reports whether text reads as an abstract section header.
// All whitespace is removed before matching, so spaced-out headers
// ("A B S T R A C T") and headers fused with body text
// ("Abstract This paper...") both pass. Callers must treat this as a
// weak anchor and bound the payload themselves.
func IsHeader(s string) bool {
	stripped := strings.Join(strings.Fields(s), "")
	return strings.HasPrefix(strings.ToLower(stripped), "abstract")
}

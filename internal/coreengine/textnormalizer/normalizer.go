package textnormalizer

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes raw transcript text so hypothesis and reference
// are compared fairly: lower-case, strip punctuation and symbols (keeping
// only letters, digits, underscore and whitespace), collapse whitespace
// runs to a single space, and trim. Pure and idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		case isWordRune(r):
			b.WriteRune(r)
			lastSpace = false
		}
		// Everything else (punctuation, symbols) is dropped.
	}

	return strings.TrimSpace(b.String())
}

// isWordRune reports whether r counts as a word character, matching the
// \w class used when the normalization rules were first written: letters,
// digits, and underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

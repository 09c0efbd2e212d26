package game

import (
	"strings"
	"unicode"
)

// NormalizeAnswer lowercases, strips punctuation and collapses whitespace so
// "The Beatles - Yesterday!" and "the beatles yesterday" compare equal.
func NormalizeAnswer(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// MatchAnswer reports whether the submission matches the canonical answer or
// any accepted alternative after normalization.
func MatchAnswer(submitted, canonical string, alternatives []string) bool {
	got := NormalizeAnswer(submitted)
	if got == "" {
		return false
	}
	if got == NormalizeAnswer(canonical) {
		return true
	}
	for _, alt := range alternatives {
		if got == NormalizeAnswer(alt) {
			return true
		}
	}
	return false
}

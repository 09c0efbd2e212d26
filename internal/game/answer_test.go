package game

import "testing"

func TestNormalizeAnswer(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"The Beatles - Yesterday", "the beatles yesterday"},
		{"  The Beatles - yesterday!  ", "the beatles yesterday"},
		{"BOHEMIAN RHAPSODY", "bohemian rhapsody"},
		{"don't stop me now", "dont stop me now"},
		{"", ""},
		{"?!.", ""},
	} {
		if got := NormalizeAnswer(tc.in); got != tc.want {
			t.Fatalf("NormalizeAnswer(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMatchAnswer(t *testing.T) {
	canonical := "The Beatles - Yesterday"
	alternatives := []string{"Yesterday", "The Beatles", "Yesterday - The Beatles"}

	for _, submitted := range []string{
		"The Beatles - yesterday!",
		"the beatles yesterday",
		"YESTERDAY",
		"yesterday - the beatles",
	} {
		if !MatchAnswer(submitted, canonical, alternatives) {
			t.Fatalf("expected %q to match", submitted)
		}
	}

	for _, submitted := range []string{"Let It Be", "beatles", ""} {
		if MatchAnswer(submitted, canonical, alternatives) {
			t.Fatalf("expected %q not to match", submitted)
		}
	}
}

func TestMatchAnswerAlternativeIndependentOfCanonical(t *testing.T) {
	// An alternative matches on its own, not via the canonical string.
	if !MatchAnswer("Radioactive", "Imagine Dragons - Radioactive", []string{"Radioactive"}) {
		t.Fatalf("expected alternative to match independently")
	}
}

package legparse

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Facebook posts from the municipal page frequently use mathematical bold
// digits (U+1D7CE..U+1D7D7) for document numbers. They are mapped to ASCII
// before NFKC so number patterns match regardless of styling.
const (
	mathBoldZero = '\U0001D7CE'
	mathBoldNine = '\U0001D7D7'
)

// Normalize canonicalizes post text for pattern matching: bold digits become
// ASCII digits, then the whole string is NFKC-normalized. Idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= mathBoldZero && r <= mathBoldNine {
			b.WriteRune('0' + (r - mathBoldZero))
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFKC.String(b.String())
}

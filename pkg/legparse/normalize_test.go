package legparse

import "testing"

func TestNormalizeBoldDigits(t *testing.T) {
	in := "ORDINANCE NO. \U0001D7D0\U0001D7CE\U0001D7D0\U0001D7D3-\U0001D7CE\U0001D7CE\U0001D7D6\U0001D7D5"
	want := "ORDINANCE NO. 2025-0087"
	if got := Normalize(in); got != want {
		t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain ascii text",
		"ﬁancée № \U0001D7D9",
		"ＲＥＳＯＬＵＴＩＯＮ ＮＯ. ２０２５",
		"mixed 𝟐𝟎𝟐𝟓 and 2025",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeCompatibilityForms(t *testing.T) {
	// Fullwidth forms collapse to ASCII under NFKC.
	if got := Normalize("ＮＯ．　２０２５"); got != "NO. 2025" {
		t.Fatalf("fullwidth normalization: got %q", got)
	}
}

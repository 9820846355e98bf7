package legparse

import (
	"regexp"
	"strings"
)

var (
	honorificPrefix = regexp.MustCompile(`(?i)^hon\.?\s*`)
	allMembersForm  = regexp.MustCompile(`(?i)^\s*all\s+sb\s+members\s*$`)
	andDelimiter    = regexp.MustCompile(`(?i) and `)
)

// CleanName strips a leading "Hon." honorific and surrounding whitespace.
// Idempotent.
func CleanName(name string) string {
	return strings.TrimSpace(honorificPrefix.ReplaceAllString(strings.TrimSpace(name), ""))
}

// delimiterRule is one entry in the split cascade: the first rule whose
// delimiter appears in the string wins and the rest are never consulted.
type delimiterRule struct {
	present func(string) bool
	split   func(string) []string
}

// Ordered by observed frequency in the source posts. A clearer delimiter
// earlier in the list prevents mis-splitting names that merely contain
// "and" as a substring.
var delimiterRules = []delimiterRule{
	{
		present: func(s string) bool { return strings.Contains(s, " / ") },
		split:   func(s string) []string { return strings.Split(s, " / ") },
	},
	{
		present: func(s string) bool { return strings.Contains(s, ",") },
		split:   func(s string) []string { return strings.Split(s, ",") },
	},
	{
		present: func(s string) bool { return andDelimiter.MatchString(s) },
		split:   func(s string) []string { return andDelimiter.Split(s, -1) },
	},
	{
		present: func(s string) bool { return strings.Contains(s, " & ") },
		split:   func(s string) []string { return strings.Split(s, " & ") },
	},
}

// SplitNames splits a raw delimiter-separated name list into cleaned names.
// Blank input yields an empty list. The literal "all sb members" (any case,
// flexible whitespace) short-circuits to the collective marker.
func SplitNames(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	if allMembersForm.MatchString(raw) {
		return []string{AllMembers}
	}

	parts := []string{raw}
	for _, rule := range delimiterRules {
		if rule.present(raw) {
			parts = rule.split(raw)
			break
		}
	}

	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := CleanName(p); n != "" {
			names = append(names, n)
		}
	}
	return names
}

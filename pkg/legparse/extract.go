package legparse

import (
	"regexp"
	"strings"
)

// Document numbers follow <year>-<sequence> with an optional amendatory
// letter suffix, e.g. 2026-2464 or 2026-2464-A.
var docNumberPattern = regexp.MustCompile(`\d{4}-\d+(?:-[A-Za-z]+)?`)

// labelRule pairs a field-label pattern with the list field it feeds. Rules
// are tried in order and the first match consumes the rest of its line; later
// rules for the same field are never merged in.
type labelRule struct {
	pattern *regexp.Regexp
}

var (
	authorLabelRules = []labelRule{
		{regexp.MustCompile(`(?mi)^\s*author:\s*(.+)$`)},
		{regexp.MustCompile(`(?mi)^\s*authors:\s*(.+)$`)},
		{regexp.MustCompile(`(?mi)^\s*author\(s\):\s*(.+)$`)},
		{regexp.MustCompile(`(?mi)^\s*may akda:\s*(.+)$`)},
	}
	coAuthorLabelRules = []labelRule{
		{regexp.MustCompile(`(?mi)^\s*co-authors?:\s*(.+)$`)},
		{regexp.MustCompile(`(?mi)^\s*pinangalawahan ni:\s*(.+)$`)},
	}
	secondedByPattern = regexp.MustCompile(`(?mi)^\s*seconded by:\s*(.+)$`)
	movedByPattern    = regexp.MustCompile(`(?mi)^\s*moved by:\s*(.+)$`)

	// Any field label ends title accumulation.
	fieldLabelPattern = regexp.MustCompile(`(?i)^\s*(?:authors?|author\(s\)|co-authors?|may akda|pinangalawahan ni|seconded by|moved by)\s*:`)

	// Posts without labeled fields often end the title with the author's
	// title and name, optionally followed by a date.
	trailingAuthorPattern = regexp.MustCompile(`(?i)(?:councilor|councilwoman|honorable|vice\s+mayor|konsehal)\s+([A-Za-z][A-Za-z.'\- ]*?)(?:\s*[,–-]?\s*(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}|\d{1,2}[/.]\d{1,2}[/.]\d{2,4}))?\s*$`)
)

// Fixed confidence constants per extraction path. Review-priority flags for
// the admin UI, nothing more.
const (
	confType           = 0.9
	confNumber         = 0.95
	confTitle          = 0.8
	confTitleShort     = 0.3
	confAuthorsFound   = 0.7
	confAuthorsMissing = 0.2
)

// ParseBlock extracts a structured legislative item from one segmented block.
// Returns nil when the first line carries no recognizable type keyword or the
// block carries no document number; both are hard preconditions, not low
// confidence.
func ParseBlock(block string) *Item {
	lines := strings.Split(block, "\n")
	if len(lines) == 0 {
		return nil
	}

	docType, ok := detectType(lines[0])
	if !ok {
		return nil
	}
	number := docNumberPattern.FindString(block)
	if number == "" {
		return nil
	}

	item := &Item{
		Type:       docType,
		Number:     number,
		Authors:    []string{},
		CoAuthors:  []string{},
		SecondedBy: []string{},
		Confidence: Confidence{Type: confType, Number: confNumber},
	}

	item.Title, item.Confidence.Title = extractTitle(lines)
	item.Authors = firstLabelMatch(block, authorLabelRules)
	item.CoAuthors = firstLabelMatch(block, coAuthorLabelRules)
	if m := secondedByPattern.FindStringSubmatch(block); m != nil {
		item.SecondedBy = SplitNames(m[1])
	}
	if m := movedByPattern.FindStringSubmatch(block); m != nil {
		// Resolutions name exactly one mover.
		if movers := SplitNames(m[1]); len(movers) > 0 {
			item.MovedBy = movers[0]
		}
	}

	// Inline-author fallback: only when no labeled author of any kind was
	// found does the trailing "Councilor <Name>" form count.
	if len(item.Authors) == 0 && len(item.CoAuthors) == 0 {
		if m := trailingAuthorPattern.FindStringSubmatch(strings.TrimSpace(block)); m != nil {
			if name := CleanName(m[1]); len(name) > 3 {
				item.Authors = []string{name}
			}
		}
	}

	if len(item.Authors) > 0 {
		item.Confidence.Authors = confAuthorsFound
	} else {
		item.Confidence.Authors = confAuthorsMissing
	}
	return item
}

// detectType maps the numbering line's keyword to a document type. The
// ordinance fallback is unreachable once the keyword precondition holds but
// defines the default.
func detectType(line string) (DocumentType, bool) {
	u := strings.ToUpper(line)
	switch {
	case strings.Contains(u, "EXECUTIVE"):
		return TypeExecutiveOrder, true
	case strings.Contains(u, "RESOLUTION"):
		return TypeResolution, true
	case strings.Contains(u, "ORDINANCE"), strings.Contains(u, "KAUTUSAN"):
		return TypeOrdinance, true
	}
	return TypeOrdinance, false
}

// extractTitle joins the lines after the numbering line up to the first field
// label. Too-short titles are replaced with a placeholder the admin UI knows
// to flag.
func extractTitle(lines []string) (string, float64) {
	var parts []string
	for _, line := range lines[1:] {
		if fieldLabelPattern.MatchString(line) {
			break
		}
		if t := strings.TrimSpace(line); t != "" {
			parts = append(parts, t)
		}
	}
	title := strings.TrimRight(strings.Join(parts, " "), "\"'”“‘’ \t")
	if len(title) < 10 {
		return PlaceholderTitle, confTitleShort
	}
	return title, confTitle
}

// firstLabelMatch walks the rule list and returns the names from the first
// pattern that matches anywhere in the block.
func firstLabelMatch(block string, rules []labelRule) []string {
	for _, rule := range rules {
		if m := rule.pattern.FindStringSubmatch(block); m != nil {
			return SplitNames(m[1])
		}
	}
	return []string{}
}

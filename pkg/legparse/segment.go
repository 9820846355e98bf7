package legparse

import (
	"regexp"
	"strings"
)

// A numbered line like "1. ORDINANCE NO. 2026-2464" or "3. KAUTUSAN BLG.
// 2025-0107-A" opens a new item block. Suffixed numbers (amendatory "-A"
// variants) are part of the same pattern.
var itemStartPattern = regexp.MustCompile(`(?i)^\d+\.\s*(?:ORDINANCE|RESOLUTION|EXECUTIVE\s+ORDER|KAUTUSAN)\s*(?:NO\.|BLG\.)?\s*\d{4}-\d+(?:-[A-Za-z]+)?`)

// SegmentItems splits a multi-item post into per-item text blocks. Each block
// starts with its numbering line; text before the first numbering line is
// discarded. A post with no numbered items yields no blocks.
func SegmentItems(content string) []string {
	lines := strings.Split(Normalize(content), "\n")

	var blocks []string
	var current []string
	for _, line := range lines {
		if itemStartPattern.MatchString(strings.TrimSpace(line)) {
			if len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n"))
			}
			current = []string{line}
			continue
		}
		if current != nil {
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

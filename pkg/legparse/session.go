package legparse

import (
	"regexp"
	"strconv"
	"strings"
)

// "100th Regular Session", "1st Inaugural Session", "2nd Special".
var ordinalSessionPattern = regexp.MustCompile(`(?i)(\d+)(?:st|nd|rd|th)\s+(regular|special|inaugural)(?:\s+session)?`)

// bareSessionRule is the fallback when no ordinal qualifies the session.
type bareSessionRule struct {
	pattern *regexp.Regexp
	session SessionType
}

var bareSessionRules = []bareSessionRule{
	{regexp.MustCompile(`(?i)\bregular\s+session\b`), SessionRegular},
	{regexp.MustCompile(`(?i)\bspecial\s+session\b`), SessionSpecial},
	{regexp.MustCompile(`(?i)\binaugural\s+session\b`), SessionInaugural},
}

// ParseSessionInfo detects the session ordinal and type mentioned in a post.
// Both fields are nil when the text names no session. Never fails.
func ParseSessionInfo(content string) SessionInfo {
	text := Normalize(content)

	if m := ordinalSessionPattern.FindStringSubmatch(text); m != nil {
		ordinal, err := strconv.Atoi(m[1])
		if err == nil {
			st := SessionType(strings.ToLower(m[2]))
			return SessionInfo{Type: &st, Ordinal: &ordinal}
		}
	}

	for _, rule := range bareSessionRules {
		if rule.pattern.MatchString(text) {
			st := rule.session
			return SessionInfo{Type: &st}
		}
	}
	return SessionInfo{}
}

// Package match resolves raw extracted name strings to canonical person
// records. Matching is best-effort: a miss is an expected outcome the admin
// UI handles, not an error.
package match

import (
	"strings"

	"github.com/betterlb/openlgu/pkg/db"
	"github.com/betterlb/openlgu/pkg/legparse"
)

// Store is the person lookup surface the matcher runs against. Each method
// returns (nil, nil) on no match so tests can seed small fixture stores.
type Store interface {
	ByExactName(first, last string) (*db.Person, error)
	ByNamePrefix(first, last string) (*db.Person, error)
	ByFullNameSubstring(full string) (*db.Person, error)
}

// Match is a resolved person for one raw name.
type Match struct {
	PersonID   int64   `json:"person_id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// All tiers report the same fixed confidence; the tier that hit is not a
// calibrated signal.
const matchConfidence = 0.7

// tier is one lookup strategy. Tiers run in order and the first hit wins.
type tier struct {
	name   string
	lookup func(s Store, first, last, full string) (*db.Person, error)
}

var tiers = []tier{
	{"exact", func(s Store, first, last, _ string) (*db.Person, error) {
		return s.ByExactName(first, last)
	}},
	{"prefix", func(s Store, first, last, _ string) (*db.Person, error) {
		return s.ByNamePrefix(first, last)
	}},
	{"substring", func(s Store, _, _ string, full string) (*db.Person, error) {
		return s.ByFullNameSubstring(full)
	}},
}

// Matcher resolves names against a Store.
type Matcher struct {
	store Store
}

func NewMatcher(store Store) *Matcher {
	return &Matcher{store: store}
}

// MatchName resolves a single raw name. Returns (nil, nil) for the collective
// "All SB Members" marker, for names without a discernible first and last
// part (no query is issued), and when every tier misses.
func (m *Matcher) MatchName(raw string) (*Match, error) {
	if strings.EqualFold(strings.TrimSpace(raw), legparse.AllMembers) {
		return nil, nil
	}
	cleaned := legparse.CleanName(raw)
	parts := strings.Fields(cleaned)
	if len(parts) < 2 {
		return nil, nil
	}
	first, last := parts[0], parts[len(parts)-1]

	for _, t := range tiers {
		p, err := t.lookup(m.store, first, last, cleaned)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return &Match{PersonID: p.ID, Name: p.DisplayName(), Confidence: matchConfidence}, nil
		}
	}
	return nil, nil
}

// MatchAll resolves a batch of raw names into a map keyed by the raw string.
// Input is deduplicated by exact raw identity, so each unique name is looked
// up once; unresolved names map to nil. The map is a pure function of the
// input list — no cache survives the call.
func (m *Matcher) MatchAll(names []string) (map[string]*Match, error) {
	matched := make(map[string]*Match, len(names))
	for _, raw := range names {
		if _, seen := matched[raw]; seen {
			continue
		}
		hit, err := m.MatchName(raw)
		if err != nil {
			return nil, err
		}
		matched[raw] = hit
	}
	return matched, nil
}

package legparse

// DocumentType classifies a legislative document.
type DocumentType string

const (
	TypeOrdinance      DocumentType = "ordinance"
	TypeResolution     DocumentType = "resolution"
	TypeExecutiveOrder DocumentType = "executive_order"
)

// SessionType classifies a council session.
type SessionType string

const (
	SessionRegular   SessionType = "regular"
	SessionSpecial   SessionType = "special"
	SessionInaugural SessionType = "inaugural"
)

// Confidence carries per-field extraction confidence in [0,1].
// These are fixed review-priority flags for the admin UI, not calibrated
// probabilities.
type Confidence struct {
	Type    float64 `json:"type"`
	Number  float64 `json:"number"`
	Title   float64 `json:"title"`
	Authors float64 `json:"authors"`
}

// Item is one legislative item extracted from a post. It is transient:
// the admin workflow turns accepted items into persisted documents.
type Item struct {
	Type       DocumentType `json:"type"`
	Number     string       `json:"number"`
	Title      string       `json:"title"`
	Authors    []string     `json:"authors"`
	CoAuthors  []string     `json:"co_authors"`
	SecondedBy []string     `json:"seconded_by"`
	MovedBy    string       `json:"moved_by,omitempty"`
	Confidence Confidence   `json:"confidence"`
}

// SessionInfo is the session ordinal and type detected in a post, when any.
type SessionInfo struct {
	Type    *SessionType `json:"type"`
	Ordinal *int         `json:"ordinal"`
}

// PlaceholderTitle replaces titles too short to be real after label stripping.
const PlaceholderTitle = "[Title to be completed]"

// AllMembers is the collective author marker used when a post credits the
// whole council instead of individuals.
const AllMembers = "All SB Members"

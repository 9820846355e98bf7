package db

import (
	"strings"
	"time"
)

// Person is a canonical council member or official.
type Person struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name"`
	Suffix     string `json:"suffix,omitempty"`
	Aliases    string `json:"aliases,omitempty"`
}

// DisplayName joins the non-empty name parts with single spaces.
func (p *Person) DisplayName() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.FirstName, p.MiddleName, p.LastName, p.Suffix} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Session is one dated legislative meeting.
type Session struct {
	ID           int64
	Date         string
	Type         string
	Ordinal      int
	TermID       int64
	Source       string
	NeedsReview  bool
	ReviewReason string
}

// Document is a persisted legislative document. Number is the natural
// dedup key.
type Document struct {
	ID         int64  `json:"id"`
	Type       string `json:"type"`
	Number     string `json:"number"`
	Title      string `json:"title"`
	SessionID  *int64 `json:"session_id"`
	Status     string `json:"status"`
	SourceType string `json:"source_type"`
	MovedBy    string `json:"moved_by,omitempty"`
	SecondedBy string `json:"seconded_by,omitempty"`
	Processed  bool   `json:"processed"`
}

// DocumentAuthor links a document to a person with a role.
type DocumentAuthor struct {
	DocumentID int64  `json:"document_id"`
	PersonID   int64  `json:"person_id"`
	AuthorType string `json:"author_type"`
}

// SourceCapture is the per-source snapshot of a document's conflictable
// fields, recorded at ingestion time and compared during conflict scans.
type SourceCapture struct {
	DocumentID int64
	SourceType string
	Title      string
	MovedBy    string
	SecondedBy string
	CapturedAt time.Time
}

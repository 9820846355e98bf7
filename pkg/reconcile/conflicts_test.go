package reconcile

import (
	"strconv"
	"testing"

	"github.com/betterlb/openlgu/pkg/db"
)

func TestScanConflicts(t *testing.T) {
	conn := setupTestDB(t)
	docID := seedDocument(t, conn, &db.Document{
		Type: "resolution", Number: "2025-0500",
		Title: "A Resolution Adopting The Municipal Budget", MovedBy: "Juan Dela Cruz",
	})
	mustCapture := func(c *db.SourceCapture) {
		t.Helper()
		if err := db.RecordSourceCapture(conn, c); err != nil {
			t.Fatalf("capture: %v", err)
		}
	}
	mustCapture(&db.SourceCapture{
		DocumentID: docID, SourceType: "facebook",
		Title: "A Resolution Adopting The Municipal Budget", MovedBy: "Juan Dela Cruz",
	})
	mustCapture(&db.SourceCapture{
		DocumentID: docID, SourceType: "pdf",
		Title: "A Resolution Adopting The FY2025 Municipal Budget", MovedBy: "Juan Dela Cruz",
	})

	conflicts, err := ScanConflicts(conn)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1 (title only)", len(conflicts))
	}
	c := conflicts[0]
	if c.ID != "conflict_title_"+itoa(docID) || c.ConflictType != "title" {
		t.Errorf("unexpected conflict identity: %+v", c)
	}
	if c.FacebookValue == c.GovphValue {
		t.Errorf("conflict emitted for agreeing values: %+v", c)
	}
	if c.ResolvedValue != "A Resolution Adopting The Municipal Budget" {
		t.Errorf("resolved value should mirror the document: %q", c.ResolvedValue)
	}
	if c.Status != "pending" {
		t.Errorf("status = %q", c.Status)
	}
}

func TestScanConflictsSkipsProcessedDocuments(t *testing.T) {
	conn := setupTestDB(t)
	docID := seedDocument(t, conn, &db.Document{Type: "ordinance", Number: "2025-0501", Title: "Short"})
	for _, src := range []string{"facebook", "pdf"} {
		if err := db.RecordSourceCapture(conn, &db.SourceCapture{DocumentID: docID, SourceType: src, Title: "disagrees-" + src}); err != nil {
			t.Fatalf("capture: %v", err)
		}
	}

	before, err := ScanConflicts(conn)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(before) == 0 {
		t.Fatal("expected a conflict before resolution")
	}

	// Resolving the duplicate mutates the document; the conflict stops
	// reproducing on the next scan.
	e := NewEngine(conn)
	if _, err := e.Resolve(docID, &ProposedDocument{Title: "An Ordinance With Its Final Reconciled Title"}, ActionMerge, UpdateFields{Title: true}, "admin"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	after, err := ScanConflicts(conn)
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if len(after) != 0 {
		t.Fatalf("conflicts still reproduce after resolution: %+v", after)
	}
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

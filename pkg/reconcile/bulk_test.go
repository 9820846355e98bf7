package reconcile

import (
	"errors"
	"fmt"
	"testing"

	"github.com/betterlb/openlgu/pkg/db"
)

func TestBulkCreateBatchTooLarge(t *testing.T) {
	conn := setupTestDB(t)
	sessionID := seedSession(t, conn)
	e := NewEngine(conn)

	docs := make([]DraftDocument, MaxBulkDocuments+1)
	for i := range docs {
		docs[i] = DraftDocument{Type: "ordinance", Number: fmt.Sprintf("2025-%04d", i), Title: "Filler"}
	}
	_, err := e.BulkCreate(sessionID, docs, false, "admin")
	if !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("oversize batch wrote %d rows, want 0", n)
	}
}

func TestBulkCreateHappyPath(t *testing.T) {
	conn := setupTestDB(t)
	sessionID := seedSession(t, conn)
	author := seedPerson(t, conn, "Juan", "Dela Cruz")
	e := NewEngine(conn)

	docs := []DraftDocument{
		{
			Type: "ordinance", Number: "2025-0200",
			Title:      "An Ordinance Creating The Public Library",
			SourceType: "facebook",
			Authors:    []ProposedAuthor{{PersonID: author, AuthorType: "author"}},
		},
		{
			Type: "resolution", Number: "2025-0201",
			Title:      "A Resolution Accepting The Annual Report",
			SourceType: "facebook",
			MovedBy:    "Juan Dela Cruz",
		},
	}
	res, err := e.BulkCreate(sessionID, docs, true, "admin")
	if err != nil {
		t.Fatalf("bulk create: %v", err)
	}
	if res.Created != 2 || len(res.Duplicates) != 0 || len(res.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}

	d, err := db.GetDocumentByNumber(conn, "2025-0200")
	if err != nil || d == nil {
		t.Fatalf("created document missing: %v", err)
	}
	if d.SessionID == nil || *d.SessionID != sessionID {
		t.Fatalf("session not linked: %+v", d)
	}
	ids := authorIDs(t, conn, d.ID)
	if len(ids) != 1 || ids[0] != author {
		t.Fatalf("authors not linked: %v", ids)
	}

	// Facebook-sourced drafts leave a source capture for conflict scans.
	var captures int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM document_sources WHERE document_id = ?`, d.ID).Scan(&captures); err != nil {
		t.Fatalf("captures: %v", err)
	}
	if captures != 1 {
		t.Fatalf("got %d captures, want 1", captures)
	}
}

func TestBulkCreateDuplicateAccounting(t *testing.T) {
	conn := setupTestDB(t)
	sessionID := seedSession(t, conn)
	seedDocument(t, conn, &db.Document{Type: "ordinance", Number: "2025-0300", Title: "Already Here"})
	e := NewEngine(conn)

	docs := []DraftDocument{
		{Type: "ordinance", Number: "2025-0300", Title: "Duplicate Of The Seeded Document"},
		{Type: "ordinance", Number: "2025-0301", Title: "A Fresh Document That Still Lands"},
	}

	// skip_duplicates: duplicate counted, not an error, batch continues.
	res, err := e.BulkCreate(sessionID, docs, true, "admin")
	if err != nil {
		t.Fatalf("bulk create: %v", err)
	}
	if res.Created != 1 {
		t.Errorf("created = %d, want 1", res.Created)
	}
	if len(res.Duplicates) != 1 || res.Duplicates[0] != "2025-0300" {
		t.Errorf("duplicates = %v", res.Duplicates)
	}
	if len(res.Errors) != 0 {
		t.Errorf("errors = %v, want none with skip_duplicates", res.Errors)
	}

	// Without skip_duplicates the duplicate is also surfaced per-index.
	res, err = e.BulkCreate(sessionID, docs[:1], false, "admin")
	if err != nil {
		t.Fatalf("bulk create: %v", err)
	}
	if len(res.Duplicates) != 1 || len(res.Errors) != 1 || res.Errors[0].Index != 0 {
		t.Fatalf("unexpected accounting: %+v", res)
	}
}

func TestBulkCreatePartialFailureContinues(t *testing.T) {
	conn := setupTestDB(t)
	sessionID := seedSession(t, conn)
	e := NewEngine(conn)

	docs := []DraftDocument{
		{Type: "ordinance", Number: "2025-0400", Title: "First Document In The Batch"},
		{Type: "ordinance", Number: "2025-0400", Title: "Same Number Again Within One Batch"},
		{Type: "ordinance", Number: "2025-0401", Title: "Third Document Still Gets Created"},
	}
	res, err := e.BulkCreate(sessionID, docs, true, "admin")
	if err != nil {
		t.Fatalf("bulk create: %v", err)
	}
	if res.Created != 2 {
		t.Errorf("created = %d, want 2", res.Created)
	}
	if len(res.Duplicates) != 1 {
		t.Errorf("duplicates = %v, want the in-batch repeat", res.Duplicates)
	}
}

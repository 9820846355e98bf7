// Package reconcile applies curator decisions to conflicting legislative
// records: duplicate resolution, bulk document creation, and conflict
// synthesis. OCR-derived records tend to carry authoritative titles while
// Facebook posts arrive earlier with fresher mover data, so the curator picks
// per conflict which source wins.
package reconcile

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/betterlb/openlgu/pkg/db"
)

// Action selects a duplicate resolution strategy.
type Action string

const (
	ActionKeepExisting    Action = "keep_existing"
	ActionReplaceExisting Action = "replace_existing"
	ActionMerge           Action = "merge"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrUnknownAction    = errors.New("unknown resolution action")
)

// Existing titles shorter than this are treated as placeholders a merge may
// overwrite.
const placeholderTitleMax = 20

// ProposedAuthor is one author entry of a proposed document. IsNew entries
// reference a person not yet in the store; linking them requires the
// person-creation flow, so write paths skip them.
type ProposedAuthor struct {
	PersonID   int64  `json:"person_id"`
	Name       string `json:"name,omitempty"`
	AuthorType string `json:"author_type,omitempty"`
	IsNew      bool   `json:"is_new,omitempty"`
}

// ProposedDocument is the incoming record competing with a persisted one.
type ProposedDocument struct {
	Type       string           `json:"type"`
	Number     string           `json:"number"`
	Title      string           `json:"title"`
	SessionID  *int64           `json:"session_id"`
	SourceType string           `json:"source_type"`
	MovedBy    string           `json:"moved_by"`
	SecondedBy string           `json:"seconded_by"`
	Authors    []ProposedAuthor `json:"authors"`
}

// UpdateFields are the per-field flags the curator toggled in the review UI.
type UpdateFields struct {
	Title      bool `json:"title"`
	SessionID  bool `json:"session_id"`
	MovedBy    bool `json:"moved_by"`
	SecondedBy bool `json:"seconded_by"`
	Authors    bool `json:"authors"`
}

// Result is the outcome envelope shared by all three actions.
type Result struct {
	Success     bool   `json:"success"`
	ActionTaken Action `json:"action_taken"`
	DocumentID  int64  `json:"document_id"`
	Message     string `json:"message"`
}

// Engine owns the store handle used by resolution and bulk operations.
type Engine struct {
	DB *sql.DB
	// Logger receives audit-adjacent notices. nil means no logging.
	Logger *log.Logger
}

func NewEngine(conn *sql.DB) *Engine {
	return &Engine{DB: conn}
}

// Resolve applies one curator decision about a duplicate document pair.
// actor identifies the admin user for the audit trail.
func (e *Engine) Resolve(existingID int64, proposed *ProposedDocument, action Action, fields UpdateFields, actor string) (*Result, error) {
	existing, err := db.GetDocument(e.DB, existingID)
	if err != nil {
		return nil, fmt.Errorf("load document %d: %w", existingID, err)
	}
	if existing == nil {
		return nil, ErrDocumentNotFound
	}

	switch action {
	case ActionKeepExisting:
		// Deliberately no mutation: the existing record stands as-is.
		e.audit(actor, "resolve_duplicate:keep_existing", &existingID, existing.Number)
		return &Result{
			Success:     true,
			ActionTaken: ActionKeepExisting,
			DocumentID:  existingID,
			Message:     fmt.Sprintf("kept existing document %s", existing.Number),
		}, nil
	case ActionReplaceExisting:
		if err := e.inTx(func(tx *sql.Tx) error {
			return replaceFields(tx, existing, proposed, fields)
		}); err != nil {
			return nil, err
		}
		e.audit(actor, "resolve_duplicate:replace_existing", &existingID, existing.Number)
		return &Result{
			Success:     true,
			ActionTaken: ActionReplaceExisting,
			DocumentID:  existingID,
			Message:     fmt.Sprintf("replaced fields on document %s", existing.Number),
		}, nil
	case ActionMerge:
		if err := e.inTx(func(tx *sql.Tx) error {
			return mergeFields(tx, existing, proposed, fields)
		}); err != nil {
			return nil, err
		}
		e.audit(actor, "resolve_duplicate:merge", &existingID, existing.Number)
		return &Result{
			Success:     true,
			ActionTaken: ActionMerge,
			DocumentID:  existingID,
			Message:     fmt.Sprintf("merged proposed data into document %s", existing.Number),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// replaceFields overwrites flagged fields unconditionally; the authors flag
// clears and fully rebuilds the author set.
func replaceFields(tx *sql.Tx, existing *db.Document, proposed *ProposedDocument, fields UpdateFields) error {
	if fields.Title {
		if err := db.SetDocumentTitle(tx, existing.ID, proposed.Title); err != nil {
			return err
		}
	}
	if fields.SessionID && proposed.SessionID != nil {
		if err := db.SetDocumentSession(tx, existing.ID, *proposed.SessionID); err != nil {
			return err
		}
	}
	if fields.MovedBy {
		if err := db.SetDocumentMovedBy(tx, existing.ID, proposed.MovedBy); err != nil {
			return err
		}
	}
	if fields.SecondedBy {
		if err := db.SetDocumentSecondedBy(tx, existing.ID, proposed.SecondedBy); err != nil {
			return err
		}
	}
	if fields.Authors {
		if err := db.DeleteDocumentAuthors(tx, existing.ID); err != nil {
			return err
		}
		for _, a := range proposed.Authors {
			if a.IsNew {
				continue
			}
			if err := db.AddDocumentAuthor(tx, existing.ID, a.PersonID, a.AuthorType); err != nil {
				return err
			}
		}
	}
	return db.MarkDocumentProcessed(tx, existing.ID)
}

// mergeFields is existing-wins-unless-missing: scalar fields only fill gaps,
// the title may replace a placeholder, and authors are merged additively with
// no deletions.
func mergeFields(tx *sql.Tx, existing *db.Document, proposed *ProposedDocument, fields UpdateFields) error {
	if fields.Title && len(existing.Title) < placeholderTitleMax {
		if err := db.SetDocumentTitle(tx, existing.ID, proposed.Title); err != nil {
			return err
		}
	}
	if fields.SessionID && proposed.SessionID != nil && existing.SessionID == nil {
		if err := db.SetDocumentSession(tx, existing.ID, *proposed.SessionID); err != nil {
			return err
		}
	}
	if fields.MovedBy && proposed.MovedBy != "" && existing.MovedBy == "" {
		if err := db.SetDocumentMovedBy(tx, existing.ID, proposed.MovedBy); err != nil {
			return err
		}
	}
	if fields.SecondedBy && proposed.SecondedBy != "" && existing.SecondedBy == "" {
		if err := db.SetDocumentSecondedBy(tx, existing.ID, proposed.SecondedBy); err != nil {
			return err
		}
	}

	existingIDs, err := db.GetDocumentAuthorIDs(tx, existing.ID)
	if err != nil {
		return err
	}
	present := make(map[int64]bool, len(existingIDs))
	for _, id := range existingIDs {
		present[id] = true
	}
	for _, a := range proposed.Authors {
		if a.IsNew || present[a.PersonID] {
			continue
		}
		if err := db.AddDocumentAuthor(tx, existing.ID, a.PersonID, a.AuthorType); err != nil {
			return err
		}
	}
	return db.MarkDocumentProcessed(tx, existing.ID)
}

// inTx runs fn inside a transaction so a multi-statement resolution either
// lands whole or not at all.
func (e *Engine) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := e.DB.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (e *Engine) audit(actor, action string, documentID *int64, detail string) {
	if err := db.InsertAuditEntry(e.DB, uuid.NewString(), actor, action, documentID, detail); err != nil && e.Logger != nil {
		e.Logger.Printf("audit entry failed (%s by %s): %v", action, actor, err)
	}
}

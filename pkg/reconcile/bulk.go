package reconcile

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/betterlb/openlgu/pkg/db"
)

// MaxBulkDocuments bounds per-request work for bulk creation.
const MaxBulkDocuments = 100

// ErrBatchTooLarge rejects the whole request before any write happens.
var ErrBatchTooLarge = errors.New("bulk create batch exceeds maximum size")

// DraftDocument is one already-structured document in a bulk-create request,
// typically produced from a parsed post after curator review.
type DraftDocument struct {
	Type       string           `json:"type"`
	Number     string           `json:"number"`
	Title      string           `json:"title"`
	SourceType string           `json:"source_type"`
	MovedBy    string           `json:"moved_by"`
	SecondedBy string           `json:"seconded_by"`
	Authors    []ProposedAuthor `json:"authors"`
}

// BulkError reports one failed item by its input index; the batch continues
// past it.
type BulkError struct {
	Index   int    `json:"index"`
	Number  string `json:"number"`
	Message string `json:"message"`
}

// BulkResult accounts for every item in the batch. Callers must inspect
// Duplicates and Errors: the envelope stays successful even when individual
// items failed.
type BulkResult struct {
	Created    int         `json:"created"`
	CreatedIDs []int64     `json:"created_ids"`
	Duplicates []string    `json:"duplicates"`
	Errors     []BulkError `json:"errors"`
}

// BulkCreate inserts a batch of documents for one session. Items iterate
// sequentially; each document and its author links land in one transaction.
// A document whose number already exists is counted as a duplicate — with
// skipDuplicates false it is additionally surfaced as a per-item error.
func (e *Engine) BulkCreate(sessionID int64, docs []DraftDocument, skipDuplicates bool, actor string) (*BulkResult, error) {
	if len(docs) > MaxBulkDocuments {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(docs), MaxBulkDocuments)
	}

	result := &BulkResult{CreatedIDs: []int64{}, Duplicates: []string{}, Errors: []BulkError{}}
	for i, draft := range docs {
		existing, err := db.GetDocumentByNumber(e.DB, draft.Number)
		if err != nil {
			result.Errors = append(result.Errors, BulkError{Index: i, Number: draft.Number, Message: err.Error()})
			continue
		}
		if existing != nil {
			e.recordDuplicate(result, i, draft.Number, skipDuplicates)
			continue
		}

		docID, err := e.createDocument(sessionID, &draft)
		if errors.Is(err, db.ErrDuplicateNumber) {
			// Lost the race between the existence check and the insert; the
			// unique constraint is the authoritative duplicate signal.
			e.recordDuplicate(result, i, draft.Number, skipDuplicates)
			continue
		}
		if err != nil {
			result.Errors = append(result.Errors, BulkError{Index: i, Number: draft.Number, Message: err.Error()})
			continue
		}
		e.audit(actor, "bulk_create", &docID, draft.Number)
		result.Created++
		result.CreatedIDs = append(result.CreatedIDs, docID)
	}
	return result, nil
}

func (e *Engine) recordDuplicate(result *BulkResult, index int, number string, skipDuplicates bool) {
	result.Duplicates = append(result.Duplicates, number)
	if !skipDuplicates {
		result.Errors = append(result.Errors, BulkError{
			Index:   index,
			Number:  number,
			Message: "document number already exists",
		})
	}
}

// createDocument inserts one document, its author links, and its per-source
// field capture in a single transaction.
func (e *Engine) createDocument(sessionID int64, draft *DraftDocument) (int64, error) {
	var docID int64
	err := e.inTx(func(tx *sql.Tx) error {
		var err error
		docID, err = db.InsertDocument(tx, &db.Document{
			Type:       draft.Type,
			Number:     draft.Number,
			Title:      draft.Title,
			SessionID:  &sessionID,
			SourceType: draft.SourceType,
			MovedBy:    draft.MovedBy,
			SecondedBy: draft.SecondedBy,
		})
		if err != nil {
			return err
		}
		for _, a := range draft.Authors {
			if a.IsNew {
				continue
			}
			if err := db.AddDocumentAuthor(tx, docID, a.PersonID, a.AuthorType); err != nil {
				return err
			}
		}
		if draft.SourceType == "facebook" || draft.SourceType == "pdf" {
			return db.RecordSourceCapture(tx, &db.SourceCapture{
				DocumentID: docID,
				SourceType: draft.SourceType,
				Title:      draft.Title,
				MovedBy:    draft.MovedBy,
				SecondedBy: draft.SecondedBy,
			})
		}
		return nil
	})
	return docID, err
}

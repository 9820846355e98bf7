package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// ErrDuplicateNumber reports an insert against an already-used document
// number. The unique constraint on documents.number is the authoritative
// signal; the pre-insert lookup only exists to answer faster.
var ErrDuplicateNumber = errors.New("document number already exists")

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

const documentColumns = `id, type, number, title, session_id, status, source_type,
	IFNULL(moved_by, ''), IFNULL(seconded_by, ''), processed`

func scanDocument(row *sql.Row) (*Document, error) {
	var d Document
	var sessionID sql.NullInt64
	err := row.Scan(&d.ID, &d.Type, &d.Number, &d.Title, &sessionID, &d.Status,
		&d.SourceType, &d.MovedBy, &d.SecondedBy, &d.Processed)
	if err != nil {
		return nil, err
	}
	if sessionID.Valid {
		d.SessionID = &sessionID.Int64
	}
	return &d, nil
}

// GetDocument fetches a document by id. Returns (nil, nil) when absent.
func GetDocument(db DBExecutor, id int64) (*Document, error) {
	d, err := scanDocument(db.QueryRow(
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

// GetDocumentByNumber fetches a document by its business number. Returns
// (nil, nil) when absent.
func GetDocumentByNumber(db DBExecutor, number string) (*Document, error) {
	d, err := scanDocument(db.QueryRow(
		`SELECT `+documentColumns+` FROM documents WHERE number = ?`, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

// InsertDocument inserts a document and returns its id. A number collision
// surfaces as ErrDuplicateNumber whether it came from the pre-check race or
// not.
func InsertDocument(db DBExecutor, d *Document) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO documents (type, number, title, session_id, status, source_type, moved_by, seconded_by, processed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Type, d.Number, d.Title, nullableID(d.SessionID), orDefault(d.Status, "active"),
		orDefault(d.SourceType, "manual"), d.MovedBy, d.SecondedBy, d.Processed)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return 0, ErrDuplicateNumber
		}
		return 0, fmt.Errorf("insert document %s: %w", d.Number, err)
	}
	return res.LastInsertId()
}

// SetDocumentTitle overwrites the title.
func SetDocumentTitle(db DBExecutor, id int64, title string) error {
	return touchUpdate(db, id, `UPDATE documents SET title = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, title)
}

// SetDocumentSession overwrites the session reference.
func SetDocumentSession(db DBExecutor, id, sessionID int64) error {
	return touchUpdate(db, id, `UPDATE documents SET session_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, sessionID)
}

// SetDocumentMovedBy overwrites the mover.
func SetDocumentMovedBy(db DBExecutor, id int64, movedBy string) error {
	return touchUpdate(db, id, `UPDATE documents SET moved_by = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, movedBy)
}

// SetDocumentSecondedBy overwrites the seconder list.
func SetDocumentSecondedBy(db DBExecutor, id int64, secondedBy string) error {
	return touchUpdate(db, id, `UPDATE documents SET seconded_by = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, secondedBy)
}

// MarkDocumentProcessed flags a document as reviewed; conflict scans skip
// processed documents.
func MarkDocumentProcessed(db DBExecutor, id int64) error {
	return touchUpdate(db, id, `UPDATE documents SET processed = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
}

func touchUpdate(db DBExecutor, id int64, query string, args ...interface{}) error {
	args = append(args, id)
	_, err := db.Exec(query, args...)
	return err
}

// DeleteDocumentAuthors removes every author link for a document.
func DeleteDocumentAuthors(db DBExecutor, documentID int64) error {
	_, err := db.Exec(`DELETE FROM document_authors WHERE document_id = ?`, documentID)
	return err
}

// AddDocumentAuthor links a person to a document. Re-linking the same pair
// is a silent no-op.
func AddDocumentAuthor(db DBExecutor, documentID, personID int64, authorType string) error {
	_, err := db.Exec(
		`INSERT OR IGNORE INTO document_authors (document_id, person_id, author_type) VALUES (?, ?, ?)`,
		documentID, personID, orDefault(authorType, "author"))
	return err
}

// GetDocumentAuthorIDs returns the person ids currently linked to a document.
func GetDocumentAuthorIDs(db DBExecutor, documentID int64) ([]int64, error) {
	rows, err := db.Query(`SELECT person_id FROM document_authors WHERE document_id = ?`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecordSourceCapture stores (or refreshes) the per-source snapshot of a
// document's conflictable fields.
func RecordSourceCapture(db DBExecutor, c *SourceCapture) error {
	_, err := db.Exec(
		`INSERT INTO document_sources (document_id, source_type, title, moved_by, seconded_by)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(document_id, source_type) DO UPDATE SET
		   title = excluded.title,
		   moved_by = excluded.moved_by,
		   seconded_by = excluded.seconded_by,
		   captured_at = CURRENT_TIMESTAMP`,
		c.DocumentID, c.SourceType, c.Title, c.MovedBy, c.SecondedBy)
	return err
}

// InsertAuditEntry records an admin mutation for the audit trail.
func InsertAuditEntry(db DBExecutor, id, actor, action string, documentID *int64, detail string) error {
	_, err := db.Exec(
		`INSERT INTO audit_log (id, actor, action, document_id, detail) VALUES (?, ?, ?, ?, ?)`,
		id, actor, action, nullableID(documentID), detail)
	return err
}

func nullableID(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

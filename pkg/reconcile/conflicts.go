package reconcile

import (
	"fmt"

	"github.com/betterlb/openlgu/pkg/db"
)

// Conflict is a synthesized disagreement between the Facebook capture and the
// official-record (govph PDF) capture of one document field. Conflicts have
// no rows of their own: they are derived fresh on every scan, and resolving
// the document (which marks it processed) makes them stop reproducing.
type Conflict struct {
	ID            string `json:"id"`
	DocumentID    int64  `json:"document_id"`
	ConflictType  string `json:"conflict_type"`
	FacebookValue string `json:"facebook_value"`
	GovphValue    string `json:"govph_value"`
	ResolvedValue string `json:"resolved_value"`
	Status        string `json:"status"`
}

// conflictField maps a conflict type to the captured column pair and the
// document's current value.
type conflictField struct {
	name    string
	values  func(fb, pdf *db.SourceCapture) (string, string)
	current func(d *db.Document) string
}

var conflictFields = []conflictField{
	{"title", func(fb, pdf *db.SourceCapture) (string, string) { return fb.Title, pdf.Title },
		func(d *db.Document) string { return d.Title }},
	{"moved_by", func(fb, pdf *db.SourceCapture) (string, string) { return fb.MovedBy, pdf.MovedBy },
		func(d *db.Document) string { return d.MovedBy }},
	{"seconded_by", func(fb, pdf *db.SourceCapture) (string, string) { return fb.SecondedBy, pdf.SecondedBy },
		func(d *db.Document) string { return d.SecondedBy }},
}

// ScanConflicts walks unprocessed documents that carry captures from both
// sources and emits one conflict per disagreeing field.
func ScanConflicts(exec db.DBExecutor) ([]Conflict, error) {
	rows, err := exec.Query(`
		SELECT d.id, d.title, IFNULL(d.moved_by, ''), IFNULL(d.seconded_by, ''),
		       IFNULL(fb.title, ''), IFNULL(fb.moved_by, ''), IFNULL(fb.seconded_by, ''),
		       IFNULL(pdf.title, ''), IFNULL(pdf.moved_by, ''), IFNULL(pdf.seconded_by, '')
		FROM documents d
		JOIN document_sources fb ON fb.document_id = d.id AND fb.source_type = 'facebook'
		JOIN document_sources pdf ON pdf.document_id = d.id AND pdf.source_type = 'pdf'
		WHERE d.processed = 0
		ORDER BY d.id`)
	if err != nil {
		return nil, fmt.Errorf("scan conflicts: %w", err)
	}
	defer rows.Close()

	conflicts := []Conflict{}
	for rows.Next() {
		var doc db.Document
		var fb, pdf db.SourceCapture
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.MovedBy, &doc.SecondedBy,
			&fb.Title, &fb.MovedBy, &fb.SecondedBy,
			&pdf.Title, &pdf.MovedBy, &pdf.SecondedBy); err != nil {
			return nil, err
		}
		for _, f := range conflictFields {
			fbVal, pdfVal := f.values(&fb, &pdf)
			if fbVal == pdfVal {
				continue
			}
			conflicts = append(conflicts, Conflict{
				ID:            fmt.Sprintf("conflict_%s_%d", f.name, doc.ID),
				DocumentID:    doc.ID,
				ConflictType:  f.name,
				FacebookValue: fbVal,
				GovphValue:    pdfVal,
				ResolvedValue: f.current(&doc),
				Status:        "pending",
			})
		}
	}
	return conflicts, rows.Err()
}

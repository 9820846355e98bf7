package search

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/betterlb/openlgu/pkg/db"
)

// Reindexer rebuilds the search index from the document store. Projection
// building (one author-name lookup per document) runs on a small worker
// pool; index writes are batched on a single collector to keep the bleve
// batch single-writer.
type Reindexer struct {
	DB    *sql.DB
	Index *Index

	Workers   int
	BatchSize int
	// Logger receives progress messages. nil means no logging.
	Logger *log.Logger
}

func NewReindexer(conn *sql.DB, idx *Index) *Reindexer {
	return &Reindexer{DB: conn, Index: idx, Workers: 4, BatchSize: 50}
}

// Reindex walks every document and (re)indexes it. Returns the number of
// documents indexed.
func (r *Reindexer) Reindex(ctx context.Context) (int, error) {
	docs, err := loadDocuments(r.DB)
	if err != nil {
		return 0, fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	jobs := make(chan db.Document, workers*2)
	results := make(chan *IndexedDocument, workers*2)

	// First async error wins; later ones are dropped.
	var errMu sync.Mutex
	var firstErr error
	setErr := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range jobs {
				names, err := loadAuthorNames(r.DB, d.ID)
				if err != nil {
					setErr(err)
					continue
				}
				results <- &IndexedDocument{
					ID:      strconv.FormatInt(d.ID, 10),
					Type:    d.Type,
					Number:  d.Number,
					Title:   d.Title,
					Authors: names,
					MovedBy: d.MovedBy,
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	go func() {
		defer close(jobs)
		for _, d := range docs {
			select {
			case <-ctx.Done():
				setErr(ctx.Err())
				return
			case jobs <- d:
			}
		}
	}()

	indexed := 0
	batch := r.Index.index.NewBatch()
	for doc := range results {
		if err := batch.Index(doc.ID, doc); err != nil {
			setErr(fmt.Errorf("batch index %s: %w", doc.ID, err))
			continue
		}
		indexed++
		if batch.Size() >= batchSize {
			if err := r.Index.index.Batch(batch); err != nil {
				setErr(fmt.Errorf("commit batch: %w", err))
			}
			batch = r.Index.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := r.Index.index.Batch(batch); err != nil {
			setErr(fmt.Errorf("commit batch: %w", err))
		}
	}

	if r.Logger != nil {
		r.Logger.Printf("reindexed %d of %d documents", indexed, len(docs))
	}
	errMu.Lock()
	defer errMu.Unlock()
	return indexed, firstErr
}

// IndexOne refreshes a single document in the index, removing it when the
// row no longer exists.
func (r *Reindexer) IndexOne(documentID int64) error {
	d, err := db.GetDocument(r.DB, documentID)
	if err != nil {
		return fmt.Errorf("load document %d: %w", documentID, err)
	}
	if d == nil {
		return r.Index.Delete(documentID)
	}
	names, err := loadAuthorNames(r.DB, documentID)
	if err != nil {
		return err
	}
	return r.Index.IndexDocument(&IndexedDocument{
		ID:      strconv.FormatInt(d.ID, 10),
		Type:    d.Type,
		Number:  d.Number,
		Title:   d.Title,
		Authors: names,
		MovedBy: d.MovedBy,
	})
}

func loadDocuments(exec db.DBExecutor) ([]db.Document, error) {
	rows, err := exec.Query(`SELECT id, type, number, title, IFNULL(moved_by, '') FROM documents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []db.Document
	for rows.Next() {
		var d db.Document
		if err := rows.Scan(&d.ID, &d.Type, &d.Number, &d.Title, &d.MovedBy); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func loadAuthorNames(exec db.DBExecutor, documentID int64) ([]string, error) {
	rows, err := exec.Query(`
		SELECT p.first_name, IFNULL(p.middle_name, ''), p.last_name, IFNULL(p.suffix, '')
		FROM document_authors da
		JOIN persons p ON p.id = da.person_id
		WHERE da.document_id = ?`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var p db.Person
		if err := rows.Scan(&p.FirstName, &p.MiddleName, &p.LastName, &p.Suffix); err != nil {
			return nil, err
		}
		names = append(names, p.DisplayName())
	}
	return names, rows.Err()
}

// Package search maintains the public full-text index over legislative
// documents.
package search

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Index wraps a Bleve search index over documents.
type Index struct {
	index bleve.Index
}

// IndexedDocument is the search projection of a persisted document.
type IndexedDocument struct {
	ID      string
	Type    string
	Number  string
	Title   string
	Authors []string
	MovedBy string
}

// Result is one search hit.
type Result struct {
	ID        int64               `json:"id"`
	Type      string              `json:"type"`
	Number    string              `json:"number"`
	Title     string              `json:"title"`
	Score     float64             `json:"score"`
	Fragments map[string][]string `json:"fragments,omitempty"`
}

// Open opens or creates a Bleve index at path. An empty path opens an
// in-memory index (used by tests and when search persistence is disabled).
func Open(path string) (*Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &Index{index: idx}, nil
	}

	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return &Index{index: idx}, nil
}

// buildIndexMapping gives titles an English analyzer for stemming; numbers
// and types stay as plain text fields.
func buildIndexMapping() mapping.IndexMapping {
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = "en"

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("Title", titleFieldMapping)
	docMapping.AddFieldMappingsAt("Number", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Type", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Authors", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("MovedBy", bleve.NewTextFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// Close closes the index.
func (i *Index) Close() error {
	return i.index.Close()
}

// IndexDocument adds or updates one document in the index.
func (i *Index) IndexDocument(doc *IndexedDocument) error {
	return i.index.Index(doc.ID, doc)
}

// Delete removes a document from the index.
func (i *Index) Delete(id int64) error {
	return i.index.Delete(strconv.FormatInt(id, 10))
}

// Search runs a query-string search with highlighting.
func (i *Index) Search(queryStr string, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = 20
	}
	query := bleve.NewQueryStringQuery(queryStr)
	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Fields = []string{"Title", "Number", "Type"}

	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := []*Result{}
	for _, hit := range res.Hits {
		r := &Result{Score: hit.Score, Fragments: hit.Fragments}
		if id, err := strconv.ParseInt(hit.ID, 10, 64); err == nil {
			r.ID = id
		}
		if title, ok := hit.Fields["Title"].(string); ok {
			r.Title = title
		}
		if number, ok := hit.Fields["Number"].(string); ok {
			r.Number = number
		}
		if typ, ok := hit.Fields["Type"].(string); ok {
			r.Type = typ
		}
		results = append(results, r)
	}
	return results, nil
}

// DocCount reports the number of indexed documents.
func (i *Index) DocCount() (uint64, error) {
	return i.index.DocCount()
}

// Package roster seeds the persons table from a JSON council roster file.
package roster

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/betterlb/openlgu/pkg/db"
)

// Entry is one council member in the roster file.
type Entry struct {
	FirstName  string   `json:"first_name"`
	MiddleName string   `json:"middle_name"`
	LastName   string   `json:"last_name"`
	Suffix     string   `json:"suffix"`
	Aliases    []string `json:"aliases"`
}

// Load reads a roster file. Both a bare array and a {"persons": [...]}
// wrapper are accepted.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var wrapper struct {
		Persons []Entry `json:"persons"`
	}
	dec := json.NewDecoder(f)
	if err := dec.Decode(&wrapper); err == nil && len(wrapper.Persons) > 0 {
		return wrapper.Persons, nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	var entries []Entry
	dec = json.NewDecoder(f)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("parse roster as object or array: %w", err)
	}
	return entries, nil
}

// Importer upserts roster entries into the person store.
type Importer struct {
	conn *sql.DB
	// Logger receives per-entry failures. nil means no logging.
	Logger *log.Logger
}

func NewImporter(conn *sql.DB) *Importer {
	return &Importer{conn: conn}
}

// Import upserts every entry, keyed by exact first and last name. Entries
// without both names are skipped. Returns the number of rows written.
func (im *Importer) Import(entries []Entry) (int, error) {
	imported := 0
	for _, e := range entries {
		first := strings.TrimSpace(e.FirstName)
		last := strings.TrimSpace(e.LastName)
		if first == "" || last == "" {
			if im.Logger != nil {
				im.Logger.Printf("skipping roster entry without first and last name: %+v", e)
			}
			continue
		}
		_, err := db.UpsertPerson(im.conn, &db.Person{
			FirstName:  first,
			MiddleName: strings.TrimSpace(e.MiddleName),
			LastName:   last,
			Suffix:     strings.TrimSpace(e.Suffix),
			Aliases:    strings.Join(e.Aliases, ","),
		})
		if err != nil {
			return imported, fmt.Errorf("upsert %s %s: %w", first, last, err)
		}
		imported++
	}
	return imported, nil
}

// ImportFile loads and imports a roster file in one step.
func (im *Importer) ImportFile(path string) (int, error) {
	entries, err := Load(path)
	if err != nil {
		return 0, err
	}
	return im.Import(entries)
}

package match

import (
	"github.com/betterlb/openlgu/pkg/db"
)

// SQLStore adapts the persons table to the matcher's Store interface.
type SQLStore struct {
	DB db.DBExecutor
}

func NewSQLStore(exec db.DBExecutor) *SQLStore {
	return &SQLStore{DB: exec}
}

func (s *SQLStore) ByExactName(first, last string) (*db.Person, error) {
	return db.FindPersonByExactName(s.DB, first, last)
}

func (s *SQLStore) ByNamePrefix(first, last string) (*db.Person, error) {
	return db.FindPersonByNamePrefix(s.DB, first, last)
}

func (s *SQLStore) ByFullNameSubstring(full string) (*db.Person, error) {
	return db.FindPersonByFullNameSubstring(s.DB, full)
}

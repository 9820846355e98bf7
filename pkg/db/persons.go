package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const personColumns = `id, first_name, IFNULL(middle_name, ''), last_name, IFNULL(suffix, ''), IFNULL(aliases, '')`

func scanPerson(row *sql.Row) (*Person, error) {
	var p Person
	err := row.Scan(&p.ID, &p.FirstName, &p.MiddleName, &p.LastName, &p.Suffix, &p.Aliases)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindPersonByExactName matches first and last name case-insensitively.
func FindPersonByExactName(db DBExecutor, first, last string) (*Person, error) {
	return scanPerson(db.QueryRow(
		`SELECT `+personColumns+` FROM persons
		 WHERE LOWER(first_name) = LOWER(?) AND LOWER(last_name) = LOWER(?) LIMIT 1`,
		first, last))
}

// FindPersonByNamePrefix matches either a first-name or a last-name prefix.
func FindPersonByNamePrefix(db DBExecutor, first, last string) (*Person, error) {
	return scanPerson(db.QueryRow(
		`SELECT `+personColumns+` FROM persons
		 WHERE first_name LIKE ? OR last_name LIKE ? LIMIT 1`,
		likePrefix(first), likePrefix(last)))
}

// FindPersonByFullNameSubstring matches the cleaned full name as a substring
// of "first_name last_name".
func FindPersonByFullNameSubstring(db DBExecutor, full string) (*Person, error) {
	return scanPerson(db.QueryRow(
		`SELECT `+personColumns+` FROM persons
		 WHERE (first_name || ' ' || last_name) LIKE ? LIMIT 1`,
		likeSubstring(full)))
}

// SearchPersons is the admin-facing person lookup. Queries under two
// characters return an empty list rather than an error.
func SearchPersons(db DBExecutor, q string, limit int) ([]Person, error) {
	q = strings.TrimSpace(q)
	if len(q) < 2 {
		return []Person{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	pattern := likeSubstring(q)
	rows, err := db.Query(
		`SELECT `+personColumns+` FROM persons
		 WHERE first_name LIKE ? OR last_name LIKE ?
		    OR (first_name || ' ' || last_name) LIKE ?
		    OR IFNULL(aliases, '') LIKE ?
		 ORDER BY last_name, first_name LIMIT ?`,
		pattern, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search persons: %w", err)
	}
	defer rows.Close()

	persons := []Person{}
	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.ID, &p.FirstName, &p.MiddleName, &p.LastName, &p.Suffix, &p.Aliases); err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

// UpsertPerson inserts a person or refreshes the mutable fields of an
// existing one, keyed by exact first+last name. Returns the person id.
func UpsertPerson(db DBExecutor, p *Person) (int64, error) {
	existing, err := FindPersonByExactName(db, p.FirstName, p.LastName)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		_, err := db.Exec(
			`UPDATE persons SET middle_name = ?, suffix = ?, aliases = ? WHERE id = ?`,
			p.MiddleName, p.Suffix, p.Aliases, existing.ID)
		return existing.ID, err
	}
	res, err := db.Exec(
		`INSERT INTO persons (first_name, middle_name, last_name, suffix, aliases) VALUES (?, ?, ?, ?, ?)`,
		p.FirstName, p.MiddleName, p.LastName, p.Suffix, p.Aliases)
	if err != nil {
		return 0, fmt.Errorf("insert person %s %s: %w", p.FirstName, p.LastName, err)
	}
	return res.LastInsertId()
}

func likePrefix(s string) string    { return escapeLike(s) + "%" }
func likeSubstring(s string) string { return "%" + escapeLike(s) + "%" }

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "%", "")
	return strings.ReplaceAll(s, "_", "")
}

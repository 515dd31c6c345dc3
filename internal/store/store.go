// Package store is the persistence layer. All SQL lives here, written with
// `?` placeholders and rebound per driver, so the same queries run on
// PostgreSQL (pgx) and sqlite.
package store

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a row lookup matches nothing.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// q rebinds a ?-style query for the active driver.
func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

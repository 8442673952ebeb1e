// Package store keeps lots, pricing policies and quote snapshots in SQLite.
package store

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

const timeLayout = "2006-01-02T15:04:05Z"

// Store wraps a migrated database handle.
type Store struct {
	db *sql.DB
}

// New returns a Store backed by db. The schema must already be migrated.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

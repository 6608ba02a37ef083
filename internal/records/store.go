// Package records persists per-file conversion outcomes across runs.
package records

import (
	"strings"
)

// Status represents the last known outcome for a file. A file with no record
// is pending and has never been attempted.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// FileRecord is the persisted outcome of the most recent retry session for
// one source file, keyed by its path relative to the input root.
type FileRecord struct {
	Filename string
	Status   Status
	Attempts int
	Error    string
}

// Store defines the interface for record persistence. Implementations are not
// required to be safe for concurrent writers; the runner is strictly
// sequential.
type Store interface {
	// LoadAll returns every record keyed by filename. An absent backing
	// file yields an empty map.
	LoadAll() (map[string]FileRecord, error)

	// Upsert replaces the record for record.Filename, or appends it when no
	// record exists. An existing record keeps its position in the store's
	// row order; its fields take the new values.
	Upsert(record FileRecord) error

	Close() error
}

// Open selects a store implementation from the records path: paths ending in
// .db get the sqlite backend, everything else the CSV ledger.
func Open(path string) (Store, error) {
	if strings.HasSuffix(strings.ToLower(path), ".db") {
		store, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return NewCSVStore(path), nil
}

package records

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on an embedded sqlite database. It is the
// hardened alternative to the CSV ledger: single-row upserts are atomic, so a
// crash mid-write cannot truncate the history.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a sqlite-backed record store.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=60000", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS files (
		filename TEXT NOT NULL PRIMARY KEY,
		status TEXT NOT NULL,
		attempts INTEGER DEFAULT 0,
		error TEXT,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_files_status ON files(status);
	`

	_, err := s.db.Exec(query)
	return err
}

// LoadAll returns every record keyed by filename.
func (s *SQLiteStore) LoadAll() (map[string]FileRecord, error) {
	query := `SELECT filename, status, attempts, error FROM files`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]FileRecord)
	for rows.Next() {
		var record FileRecord
		var lastError sql.NullString

		if err := rows.Scan(&record.Filename, &record.Status, &record.Attempts, &lastError); err != nil {
			return nil, err
		}
		if lastError.Valid {
			record.Error = lastError.String
		}
		out[record.Filename] = record
	}

	return out, rows.Err()
}

// Upsert saves or updates a record in a single statement.
func (s *SQLiteStore) Upsert(record FileRecord) error {
	query := `
	INSERT INTO files (filename, status, attempts, error, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(filename) DO UPDATE SET
		status = excluded.status,
		attempts = excluded.attempts,
		error = excluded.error,
		updated_at = excluded.updated_at
	`

	_, err := s.db.Exec(query,
		record.Filename,
		record.Status,
		record.Attempts,
		record.Error,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
)

var csvHeader = []string{"filename", "status", "attempts", "error"}

// CSVStore keeps records in a flat CSV file with a fixed four-column header,
// one row per tracked filename. Every upsert rewrites the whole file: a row
// keeps its first-seen position and takes last-write values. The rewrite is
// not crash-atomic; an interrupt mid-write can truncate the ledger.
type CSVStore struct {
	path string
}

// NewCSVStore creates a CSV-backed store at path. The file is created on the
// first upsert.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// LoadAll parses the backing file into a map keyed by filename.
func (s *CSVStore) LoadAll() (map[string]FileRecord, error) {
	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}

	out := make(map[string]FileRecord, len(rows))
	for _, r := range rows {
		out[r.Filename] = r
	}
	return out, nil
}

// Upsert performs a full read-modify-rewrite of the ledger.
func (s *CSVStore) Upsert(record FileRecord) error {
	rows, err := s.readRows()
	if err != nil {
		return err
	}

	found := false
	for i, r := range rows {
		if r.Filename == record.Filename {
			rows[i] = record
			found = true
			break
		}
	}
	if !found {
		rows = append(rows, record)
	}

	return s.writeRows(rows)
}

// Close is a no-op; the CSV store holds no open handles between operations.
func (s *CSVStore) Close() error {
	return nil
}

// readRows returns the ledger rows in file order. An absent file is an empty
// ledger.
func (s *CSVStore) readRows() ([]FileRecord, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse records file: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	// First row is the header
	rows := make([]FileRecord, 0, len(raw)-1)
	for _, fields := range raw[1:] {
		if len(fields) < len(csvHeader) {
			continue
		}
		attempts, _ := strconv.Atoi(fields[2])
		rows = append(rows, FileRecord{
			Filename: fields[0],
			Status:   Status(fields[1]),
			Attempts: attempts,
			Error:    fields[3],
		})
	}
	return rows, nil
}

func (s *CSVStore) writeRows(rows []FileRecord) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to write records file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		f.Close()
		return err
	}
	for _, r := range rows {
		fields := []string{r.Filename, string(r.Status), strconv.Itoa(r.Attempts), r.Error}
		if err := writer.Write(fields); err != nil {
			f.Close()
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

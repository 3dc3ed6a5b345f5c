package transcript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"murmur/internal/domain"
	"murmur/internal/logging"
)

// Store persists transcript records, one JSON file per record named by its
// id.
type Store struct {
	dir string
}

// NewStore creates a store writing records under dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes a record to <dir>/<id>.json. Saving is idempotent by id: if
// the record already exists on disk the existing path is returned and the
// file is left untouched.
func (s *Store) Save(record domain.TranscriptRecord) (string, error) {
	if strings.TrimSpace(record.ID) == "" {
		return "", domain.NewValidationError("id", "record id is empty")
	}

	path := s.pathFor(record.ID)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", domain.NewPersistenceError("mkdir", s.dir, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", domain.NewPersistenceError("encode", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", domain.NewPersistenceError("write", path, err)
	}

	return path, nil
}

// GetAll reads every record in the save directory, sorted by timestamp
// descending. Unparsable files are skipped and logged rather than failing
// the whole read.
func (s *Store) GetAll() ([]domain.TranscriptRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, domain.NewPersistenceError("read", s.dir, err)
	}

	records := make([]domain.TranscriptRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logging.Warning(logging.CategoryStore, "skipping unreadable record %s: %v", path, err)
			continue
		}
		var record domain.TranscriptRecord
		if err := json.Unmarshal(data, &record); err != nil {
			logging.Warning(logging.CategoryStore, "skipping unparsable record %s: %v", path, err)
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

// GetRecent returns the n most recent records.
func (s *Store) GetRecent(n int) ([]domain.TranscriptRecord, error) {
	if n <= 0 {
		n = 10
	}
	records, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	if len(records) > n {
		records = records[:n]
	}
	return records, nil
}

// GetByID returns the record with the given id, or a NotFoundError.
func (s *Store) GetByID(id string) (domain.TranscriptRecord, error) {
	data, err := os.ReadFile(s.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.TranscriptRecord{}, domain.NewNotFoundError("transcript", id)
		}
		return domain.TranscriptRecord{}, domain.NewPersistenceError("read", s.pathFor(id), err)
	}

	var record domain.TranscriptRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.TranscriptRecord{}, domain.NewPersistenceError("decode", s.pathFor(id), err)
	}
	return record, nil
}

// Delete removes the record with the given id. A miss is reported as a
// NotFoundError, not a failure.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.pathFor(id))
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		return domain.NewNotFoundError("transcript", id)
	}
	return domain.NewPersistenceError("delete", s.pathFor(id), err)
}

func (s *Store) pathFor(id string) string {
	return filepath.Join(s.dir, id+".json")
}

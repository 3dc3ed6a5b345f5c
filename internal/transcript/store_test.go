package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"murmur/internal/domain"
)

func record(id string, timestamp time.Time) domain.TranscriptRecord {
	return domain.TranscriptRecord{
		ID:            id,
		RawText:       "hello world",
		ProcessedText: "hello world",
		Timestamp:     timestamp,
		Language:      "en",
		WordCount:     2,
		Source:        domain.SourceRecording,
	}
}

func TestSaveIsIdempotentByID(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)

	first := record("rec_20240101120000_001", time.Now())
	path1, err := store.Save(first)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Re-save with the same id but different content; the original file
	// must win.
	second := first
	second.RawText = "different"
	path2, err := store.Save(second)
	if err != nil {
		t.Fatalf("re-save failed: %v", err)
	}
	if path1 != path2 {
		t.Fatalf("expected same path, got %q and %q", path1, path2)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file, got %d", len(entries))
	}

	got, err := store.GetByID(first.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.RawText != "hello world" {
		t.Fatalf("original record was overwritten: %+v", got)
	}
}

func TestSaveRejectsEmptyID(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	_, err := store.Save(domain.TranscriptRecord{})

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestGetAllSortsByTimestampDescending(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"rec_a", "rec_b", "rec_c"} {
		if _, err := store.Save(record(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	records, err := store.GetAll()
	if err != nil {
		t.Fatalf("getAll failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].ID != "rec_c" || records[2].ID != "rec_a" {
		t.Fatalf("unexpected order: %s, %s, %s", records[0].ID, records[1].ID, records[2].ID)
	}
}

func TestGetAllSkipsUnparsableFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)

	if _, err := store.Save(record("rec_ok", time.Now())); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "rec_bad.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	records, err := store.GetAll()
	if err != nil {
		t.Fatalf("getAll failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "rec_ok" {
		t.Fatalf("expected only the parsable record, got %+v", records)
	}
}

func TestGetAllMissingDirIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewStore(filepath.Join(t.TempDir(), "never-created"))
	records, err := store.GetAll()
	if err != nil {
		t.Fatalf("getAll failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestGetRecentLimits(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		id := string(rune('a'+i)) + "_rec"
		if _, err := store.Save(record(id, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	records, err := store.GetRecent(2)
	if err != nil {
		t.Fatalf("getRecent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "e_rec" {
		t.Fatalf("expected newest first, got %s", records[0].ID)
	}
}

func TestDeleteMissReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	err := store.Delete("rec_missing")

	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	if _, err := store.Save(record("rec_gone", time.Now())); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Delete("rec_gone"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var notFound *domain.NotFoundError
	if _, err := store.GetByID("rec_gone"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError after delete, got %v", err)
	}
}

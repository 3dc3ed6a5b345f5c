package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"murmur/internal/domain"
)

func TestInitWithNoBackendsYieldsDefaults(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	store := NewStore(dataDir)
	defer store.Close()

	if err := store.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	got := store.Get()
	want := Defaults(dataDir)
	if got != want {
		t.Fatalf("expected defaults, got %+v", got)
	}
	if got.Language != "auto" {
		t.Fatalf("unexpected default language: %q", got.Language)
	}
}

func TestSetPersistsToPrimaryAndSurvivesReload(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	store := NewStore(dataDir)
	if err := store.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	key := "sk-test-123"
	lang := "fr"
	if err := store.Set(domain.SettingsPatch{APIKey: &key, Language: &lang}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reloaded := NewStore(dataDir)
	defer reloaded.Close()
	if err := reloaded.Init(); err != nil {
		t.Fatalf("reload init failed: %v", err)
	}

	got := reloaded.Get()
	if got.APIKey != "sk-test-123" || got.Language != "fr" {
		t.Fatalf("persisted values lost: %+v", got)
	}
	if got.Hotkey != Defaults(dataDir).Hotkey {
		t.Fatalf("untouched fields should keep defaults: %+v", got)
	}
}

func TestInitFallsBackWhenPrimaryUnavailable(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()

	// A directory at the database path makes the primary backend unusable.
	if err := os.MkdirAll(filepath.Join(dataDir, dbFileName), 0o755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	fallback := Defaults(dataDir)
	fallback.APIKey = "from-fallback"
	fallback.Language = "de"
	data, err := json.Marshal(fallback)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, fallbackFileName), data, 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	store := NewStore(dataDir)
	defer store.Close()
	if err := store.Init(); err != nil {
		t.Fatalf("init should not fail when fallback is readable: %v", err)
	}

	got := store.Get()
	if got.APIKey != "from-fallback" || got.Language != "de" {
		t.Fatalf("expected fallback values, got %+v", got)
	}
}

func TestSetWritesFallbackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dataDir, dbFileName), 0o755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	store := NewStore(dataDir)
	defer store.Close()
	if err := store.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	key := "sk-fallback"
	if err := store.Set(domain.SettingsPatch{APIKey: &key}); err != nil {
		t.Fatalf("set should succeed via fallback: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dataDir, fallbackFileName))
	if err != nil {
		t.Fatalf("fallback file missing: %v", err)
	}
	var persisted domain.Settings
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("fallback file unparsable: %v", err)
	}
	if persisted.APIKey != "sk-fallback" {
		t.Fatalf("update was dropped: %+v", persisted)
	}
}

func TestGetAfterCorruptFallbackStillReturnsDefaults(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dataDir, dbFileName), 0o755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, fallbackFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	store := NewStore(dataDir)
	defer store.Close()
	if err := store.Init(); err == nil {
		t.Fatalf("expected init error with corrupt fallback")
	}

	got := store.Get()
	if got != Defaults(dataDir) {
		t.Fatalf("reads must still return defaults, got %+v", got)
	}
}

func TestPatchMergesPartially(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	store := NewStore(dataDir)
	defer store.Close()
	if err := store.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	notify := false
	if err := store.Set(domain.SettingsPatch{NotifyOnComplete: &notify}); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got := store.Get()
	if got.NotifyOnComplete {
		t.Fatalf("patched field not applied")
	}
	if !got.NotifyOnError {
		t.Fatalf("unpatched field changed: %+v", got)
	}
}

package settings

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"murmur/internal/domain"
	"murmur/internal/logging"
)

const (
	dbFileName       = "settings.db"
	fallbackFileName = "settings.json"
)

// DefaultDataDir resolves the user data directory: MURMUR_DATA_DIR if set,
// otherwise ~/.murmur.
func DefaultDataDir() string {
	if dir := strings.TrimSpace(os.Getenv("MURMUR_DATA_DIR")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".murmur"
	}
	return filepath.Join(home, ".murmur")
}

// Defaults returns the compiled-in settings for the given data directory.
func Defaults(dataDir string) domain.Settings {
	return domain.Settings{
		APIKey:                    "",
		Language:                  "auto",
		Hotkey:                    "ctrl+shift+space",
		TranscriptionSavePath:     filepath.Join(dataDir, "transcripts"),
		AudioSavePath:             filepath.Join(dataDir, "audio"),
		TranscriptionSystemPrompt: "",
		NotifyOnComplete:          true,
		NotifyOnError:             true,
	}
}

// Store holds configuration with a primary sqlite backend and a flat-file
// fallback. Reads never fail: absence of both backends yields defaults.
// The two backends are not kept in lockstep; the last successful writer
// wins.
type Store struct {
	dataDir      string
	dbPath       string
	fallbackPath string

	mu      sync.RWMutex
	current domain.Settings
	db      *sql.DB
}

// NewStore creates a store rooted at dataDir. Call Init before first use.
func NewStore(dataDir string) *Store {
	return &Store{
		dataDir:      dataDir,
		dbPath:       filepath.Join(dataDir, dbFileName),
		fallbackPath: filepath.Join(dataDir, fallbackFileName),
		current:      Defaults(dataDir),
	}
}

// Init loads persisted settings on the startup critical path. The primary
// backend is attempted first; on any failure the flat fallback file is
// read instead. Whatever is found is merged over defaults, so the store is
// usable even when Init reports an error.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Defaults(s.dataDir)

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		logging.Warning(logging.CategorySettings, "cannot create data dir %s: %v", s.dataDir, err)
	}

	primaryErr := s.openPrimary()
	if primaryErr == nil {
		values, err := s.loadPrimary()
		if err == nil {
			applyValues(&s.current, values)
			return nil
		}
		primaryErr = err
	}

	logging.Warning(logging.CategorySettings, "primary settings backend unavailable, using fallback: %v", primaryErr)
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}

	if err := s.loadFallback(); err != nil {
		return domain.NewPersistenceError("load", s.fallbackPath, err)
	}
	return nil
}

// Get returns a complete settings snapshot. It never fails.
func (s *Store) Get() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set applies a partial update. In-memory state changes immediately; the
// primary backend is attempted first and the fallback file written when
// the primary write fails. An update is only reported as an error when
// both backends reject it.
func (s *Store) Set(patch domain.SettingsPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	applyPatch(&s.current, patch)

	if err := s.savePrimary(); err != nil {
		logging.Warning(logging.CategorySettings, "primary settings write failed, writing fallback: %v", err)
		if fallbackErr := s.saveFallback(); fallbackErr != nil {
			return domain.NewPersistenceError("write", s.fallbackPath, fallbackErr)
		}
	}
	return nil
}

// Close releases the primary backend.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) openPrimary() error {
	db, err := sql.Open("sqlite", "file:"+s.dbPath)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *Store) loadPrimary() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}
	return values, rows.Err()
}

func (s *Store) savePrimary() error {
	if s.db == nil {
		if err := s.openPrimary(); err != nil {
			return err
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for key, value := range toValues(s.current) {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) loadFallback() error {
	data, err := os.ReadFile(s.fallbackPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	loaded := s.current
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}
	s.current = loaded
	return nil
}

func (s *Store) saveFallback() error {
	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.fallbackPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.fallbackPath, data, 0o644)
}

func toValues(settings domain.Settings) map[string]string {
	return map[string]string{
		"apiKey":                    settings.APIKey,
		"language":                  settings.Language,
		"hotkey":                    settings.Hotkey,
		"transcriptionSavePath":     settings.TranscriptionSavePath,
		"audioSavePath":             settings.AudioSavePath,
		"transcriptionSystemPrompt": settings.TranscriptionSystemPrompt,
		"notifyOnComplete":          strconv.FormatBool(settings.NotifyOnComplete),
		"notifyOnError":             strconv.FormatBool(settings.NotifyOnError),
	}
}

func applyValues(settings *domain.Settings, values map[string]string) {
	if v, ok := values["apiKey"]; ok {
		settings.APIKey = v
	}
	if v, ok := values["language"]; ok {
		settings.Language = v
	}
	if v, ok := values["hotkey"]; ok {
		settings.Hotkey = v
	}
	if v, ok := values["transcriptionSavePath"]; ok && v != "" {
		settings.TranscriptionSavePath = v
	}
	if v, ok := values["audioSavePath"]; ok && v != "" {
		settings.AudioSavePath = v
	}
	if v, ok := values["transcriptionSystemPrompt"]; ok {
		settings.TranscriptionSystemPrompt = v
	}
	if v, ok := values["notifyOnComplete"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			settings.NotifyOnComplete = parsed
		}
	}
	if v, ok := values["notifyOnError"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			settings.NotifyOnError = parsed
		}
	}
}

func applyPatch(settings *domain.Settings, patch domain.SettingsPatch) {
	if patch.APIKey != nil {
		settings.APIKey = *patch.APIKey
	}
	if patch.Language != nil {
		settings.Language = *patch.Language
	}
	if patch.Hotkey != nil {
		settings.Hotkey = *patch.Hotkey
	}
	if patch.TranscriptionSavePath != nil {
		settings.TranscriptionSavePath = *patch.TranscriptionSavePath
	}
	if patch.AudioSavePath != nil {
		settings.AudioSavePath = *patch.AudioSavePath
	}
	if patch.TranscriptionSystemPrompt != nil {
		settings.TranscriptionSystemPrompt = *patch.TranscriptionSystemPrompt
	}
	if patch.NotifyOnComplete != nil {
		settings.NotifyOnComplete = *patch.NotifyOnComplete
	}
	if patch.NotifyOnError != nil {
		settings.NotifyOnError = *patch.NotifyOnError
	}
}

package audiofile

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"murmur/internal/domain"
	"murmur/internal/logging"
)

const (
	idPrefix       = "rec"
	audioExtension = ".wav"
)

// FileStats describes a validated audio file.
type FileStats struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Manager owns the temporary capture file and the permanent id-keyed audio
// copies. The temp path is reused for every capture; permanent copies are
// created once per transcript and never overwritten.
type Manager struct {
	tempDir  string
	audioDir string

	mu      sync.Mutex
	counter int
}

// NewManager creates a manager writing captures under tempDir and
// permanent copies under audioDir.
func NewManager(tempDir, audioDir string) *Manager {
	return &Manager{
		tempDir:  tempDir,
		audioDir: audioDir,
		counter:  rand.Intn(1000),
	}
}

// TempPath returns the well-known capture path for this process.
func (m *Manager) TempPath() string {
	return filepath.Join(m.tempDir, fmt.Sprintf("capture-%d%s", os.Getpid(), audioExtension))
}

// SaveBuffer writes a captured audio buffer to the temp path, creating
// parent directories as needed. Empty buffers are rejected, and the
// post-write size is verified against the input length.
func (m *Manager) SaveBuffer(buffer []byte) (string, error) {
	if len(buffer) == 0 {
		return "", domain.NewValidationError("buffer", "audio buffer is empty")
	}

	path := m.TempPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", domain.NewPersistenceError("mkdir", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, buffer, 0o644); err != nil {
		return "", domain.NewPersistenceError("write", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", domain.NewPersistenceError("stat", path, err)
	}
	if info.Size() != int64(len(buffer)) {
		return "", domain.NewPersistenceError("write", path,
			fmt.Errorf("short write: wrote %d of %d bytes", info.Size(), len(buffer)))
	}

	return path, nil
}

// GenerateID mints a time-ordered identifier in the form
// rec_<yyyymmddhhmmss>_<nnn>. The 3-digit suffix advances monotonically per
// process, so any 1,000 ids minted within the same timestamp second are
// distinct.
func (m *Manager) GenerateID() string {
	m.mu.Lock()
	m.counter++
	suffix := m.counter % 1000
	m.mu.Unlock()

	return fmt.Sprintf("%s_%s_%03d", idPrefix, time.Now().Format("20060102150405"), suffix)
}

// Promote copies the temp capture to the permanent id-keyed path. The temp
// file is left in place for the next capture.
func (m *Manager) Promote(tempPath, id string) (string, error) {
	data, err := os.ReadFile(tempPath)
	if err != nil {
		return "", domain.NewPersistenceError("read", tempPath, err)
	}

	if err := os.MkdirAll(m.audioDir, 0o755); err != nil {
		return "", domain.NewPersistenceError("mkdir", m.audioDir, err)
	}

	permanent := filepath.Join(m.audioDir, id+audioExtension)
	if err := os.WriteFile(permanent, data, 0o644); err != nil {
		return "", domain.NewPersistenceError("write", permanent, err)
	}

	return permanent, nil
}

// Validate fails if the file is missing or zero bytes.
func (m *Manager) Validate(path string) (FileStats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileStats{}, domain.NewValidationError("audioFile", fmt.Sprintf("file missing: %s", path))
	}
	if info.Size() == 0 {
		return FileStats{}, domain.NewValidationError("audioFile", fmt.Sprintf("file is empty: %s", path))
	}
	return FileStats{Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// CleanupOrphans removes stale capture artifacts from the temp directory,
// keeping only the most recently modified one. Failures are logged and
// never block the caller.
func (m *Manager) CleanupOrphans() {
	entries, err := os.ReadDir(m.tempDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warning(logging.CategoryAudio, "orphan scan failed: %v", err)
		}
		return
	}

	type candidate struct {
		path    string
		modTime time.Time
	}

	var stale []candidate
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != audioExtension {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stale = append(stale, candidate{
			path:    filepath.Join(m.tempDir, entry.Name()),
			modTime: info.ModTime(),
		})
	}
	if len(stale) <= 1 {
		return
	}

	sort.Slice(stale, func(i, j int) bool {
		return stale[i].modTime.After(stale[j].modTime)
	})

	for _, orphan := range stale[1:] {
		if err := os.Remove(orphan.path); err != nil {
			logging.Warning(logging.CategoryAudio, "failed to remove orphan %s: %v", orphan.path, err)
			continue
		}
		logging.Debug(logging.CategoryAudio, "removed orphan capture %s", orphan.path)
	}
}

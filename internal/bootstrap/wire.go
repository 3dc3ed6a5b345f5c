package bootstrap

import (
	"os"
	"path/filepath"
	"strings"

	"murmur/internal/audiofile"
	"murmur/internal/logging"
	"murmur/internal/ports"
	"murmur/internal/postprocess"
	"murmur/internal/providers/openai"
	"murmur/internal/settings"
	"murmur/internal/transcribe"
	"murmur/internal/transcript"
	"murmur/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller  *usecase.RecordingController
	Settings    *settings.Store
	Transcripts *transcript.Store
}

// Build wires all backend dependencies for the current runtime.
func Build(events ports.EventSink, paster ports.Paster) (Services, error) {
	logging.Initialize()

	settingsStore := settings.NewStore(settings.DefaultDataDir())
	if err := settingsStore.Init(); err != nil {
		// Reads still work on defaults; persistence problems surface on
		// the first write.
		logging.Warning(logging.CategorySettings, "settings load degraded: %v", err)
	}
	cfg := settingsStore.Get()

	files := audiofile.NewManager(filepath.Join(os.TempDir(), "murmur"), cfg.AudioSavePath)
	files.CleanupOrphans()

	provider := openai.NewClient(openai.Config{
		BaseURL: strings.TrimSpace(os.Getenv("MURMUR_API_BASE")),
	})

	transcripts := transcript.NewStore(cfg.TranscriptionSavePath)

	controller := usecase.NewRecordingController(
		files,
		transcribe.NewOrchestrator(provider, files, transcribe.Config{}),
		postprocess.NewProcessor(provider),
		transcripts,
		settingsStore,
		paster,
		events,
	)

	return Services{
		Controller:  controller,
		Settings:    settingsStore,
		Transcripts: transcripts,
	}, nil
}

package transcribe

import (
	"context"
	"strings"
	"time"

	"murmur/internal/audiofile"
	"murmur/internal/domain"
	"murmur/internal/logging"
	"murmur/internal/ports"
)

const (
	defaultModelEnglish      = "base.en"
	defaultModelMultilingual = "base"
)

// Config controls model selection.
type Config struct {
	ModelEnglish      string
	ModelMultilingual string
}

// Request describes one transcription run.
type Request struct {
	AudioPath string
	Language  string
	APIKey    string
	StartedAt time.Time
}

// Result carries the transcribed text and computed metadata.
type Result struct {
	Text            string
	Language        string
	Model           string
	DurationSeconds float64
}

// Orchestrator drives a single request/response transcription: language
// normalization, model selection, one service attempt, metadata.
type Orchestrator struct {
	speech ports.SpeechService
	files  *audiofile.Manager
	cfg    Config
}

func NewOrchestrator(speech ports.SpeechService, files *audiofile.Manager, cfg Config) *Orchestrator {
	if cfg.ModelEnglish == "" {
		cfg.ModelEnglish = defaultModelEnglish
	}
	if cfg.ModelMultilingual == "" {
		cfg.ModelMultilingual = defaultModelMultilingual
	}
	return &Orchestrator{speech: speech, files: files, cfg: cfg}
}

// NormalizeLanguage maps empty or "auto" to "en"; explicit codes pass
// through unchanged.
func NormalizeLanguage(language string) string {
	language = strings.TrimSpace(strings.ToLower(language))
	if language == "" || language == "auto" {
		return "en"
	}
	return language
}

// SelectModel is a deterministic language-to-model mapping: English gets
// the fast English-only model, everything else the multilingual one.
func (c Config) SelectModel(language string) string {
	if language == "en" {
		return c.ModelEnglish
	}
	return c.ModelMultilingual
}

// Transcribe runs one transcription attempt. There is no retry: a
// transient failure surfaces immediately.
func (o *Orchestrator) Transcribe(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return Result{}, domain.NewValidationError("apiKey", "missing API key")
	}

	stats, err := o.files.Validate(req.AudioPath)
	if err != nil {
		return Result{}, err
	}

	language := NormalizeLanguage(req.Language)
	model := o.cfg.SelectModel(language)
	logging.Info(logging.CategoryPipeline, "transcribing %s (model=%s language=%s)", req.AudioPath, model, language)

	speechResult, err := o.speech.Transcribe(ctx, ports.SpeechRequest{
		FilePath: req.AudioPath,
		Model:    model,
		Language: language,
		APIKey:   req.APIKey,
	})
	if err != nil {
		return Result{}, domain.NewExternalServiceError("transcription", err)
	}

	if detected := strings.TrimSpace(speechResult.Language); detected != "" {
		language = detected
	}

	return Result{
		Text:            speechResult.Text,
		Language:        language,
		Model:           model,
		DurationSeconds: estimateDuration(stats, req.StartedAt),
	}, nil
}

// estimateDuration approximates capture length from the audio file's
// modification time and the capture start. Advisory only; it is not the
// decoded audio length.
func estimateDuration(stats audiofile.FileStats, startedAt time.Time) float64 {
	if startedAt.IsZero() {
		return 0
	}
	seconds := stats.ModTime.Sub(startedAt).Seconds()
	if seconds < 0 {
		return 0
	}
	return seconds
}

package ports

import (
	"context"

	"murmur/internal/domain"
)

// SpeechRequest describes one request/response transcription call.
type SpeechRequest struct {
	FilePath string
	Model    string
	Language string
	APIKey   string
}

// SpeechResult carries the transcribed text and, when the service reports
// one, the language it detected.
type SpeechResult struct {
	Text     string
	Language string
}

// SpeechService transcribes a single audio file.
type SpeechService interface {
	Transcribe(ctx context.Context, req SpeechRequest) (SpeechResult, error)
}

// CleanupRequest describes one text-cleanup call.
type CleanupRequest struct {
	Text   string
	Prompt string
	APIKey string
}

// CleanupService reformats raw transcript text.
type CleanupService interface {
	Clean(ctx context.Context, req CleanupRequest) (string, error)
}

// Paster delivers final text into the focused application.
type Paster interface {
	Paste(ctx context.Context, text string) error
}

// EventSink emits backend state and events to the UI shell.
type EventSink interface {
	StateChanged(state domain.RecordingState, reason domain.StateReason)
	CaptureStart()
	CaptureStop()
	TranscriptReady(record domain.TranscriptRecord)
	PipelineError(code domain.ErrorCode, detail string)
	Notify(title string, message string)
}

package domain

import "time"

// RecordingState models the capture-to-transcript lifecycle.
type RecordingState string

const (
	StateIdle       RecordingState = "idle"
	StateCapturing  RecordingState = "capturing"
	StateProcessing RecordingState = "processing"
	StateError      RecordingState = "error"
)

// StateReason provides a structured reason for state transitions.
type StateReason string

const (
	ReasonStartup             StateReason = "startup"
	ReasonCaptureStarted      StateReason = "capture_started"
	ReasonTranscribing        StateReason = "transcribing"
	ReasonTranscriptSaved     StateReason = "transcript_saved"
	ReasonToggleBusy          StateReason = "toggle_busy"
	ReasonAudioRejected       StateReason = "audio_rejected"
	ReasonNoTranscript        StateReason = "no_transcript"
	ReasonTranscriptionFailed StateReason = "transcription_failed"
	ReasonPersistenceFailed   StateReason = "persistence_failed"
	ReasonPipelineFinished    StateReason = "pipeline_finished"
)

// ErrorCode identifies non-fatal backend errors surfaced to the UI.
type ErrorCode string

const (
	ErrorCodeStartup       ErrorCode = "startup"
	ErrorCodeAudio         ErrorCode = "audio"
	ErrorCodeTranscription ErrorCode = "transcription"
	ErrorCodeCleanup       ErrorCode = "cleanup"
	ErrorCodePersistence   ErrorCode = "persistence"
	ErrorCodePaste         ErrorCode = "paste"
)

// TranscriptSource identifies how the audio behind a record was obtained.
type TranscriptSource string

const (
	SourceRecording TranscriptSource = "recording"
	SourceUpload    TranscriptSource = "upload"
)

// TranscriptRecord is the persisted result of one transcription.
// Immutable once written; re-saving an existing ID is a no-op.
type TranscriptRecord struct {
	ID              string           `json:"id"`
	RawText         string           `json:"rawText"`
	ProcessedText   string           `json:"processedText"`
	Timestamp       time.Time        `json:"timestamp"`
	DurationSeconds float64          `json:"durationSeconds"`
	Language        string           `json:"language"`
	WordCount       int              `json:"wordCount"`
	Source          TranscriptSource `json:"source"`
	Confidence      float64          `json:"confidence"`
	AudioFilePath   string           `json:"audioFilePath"`
	Title           string           `json:"title"`
	PastedAtCursor  bool             `json:"pastedAtCursor"`
}

// Settings holds user configuration. A Settings value handed out by the
// store is always complete: persisted values merged over defaults.
type Settings struct {
	APIKey                    string `json:"apiKey"`
	Language                  string `json:"language"`
	Hotkey                    string `json:"hotkey"`
	TranscriptionSavePath     string `json:"transcriptionSavePath"`
	AudioSavePath             string `json:"audioSavePath"`
	TranscriptionSystemPrompt string `json:"transcriptionSystemPrompt"`
	NotifyOnComplete          bool   `json:"notifyOnComplete"`
	NotifyOnError             bool   `json:"notifyOnError"`
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	APIKey                    *string `json:"apiKey,omitempty"`
	Language                  *string `json:"language,omitempty"`
	Hotkey                    *string `json:"hotkey,omitempty"`
	TranscriptionSavePath     *string `json:"transcriptionSavePath,omitempty"`
	AudioSavePath             *string `json:"audioSavePath,omitempty"`
	TranscriptionSystemPrompt *string `json:"transcriptionSystemPrompt,omitempty"`
	NotifyOnComplete          *bool   `json:"notifyOnComplete,omitempty"`
	NotifyOnError             *bool   `json:"notifyOnError,omitempty"`
}

// Status summarizes the current recording state for the UI shell.
type Status struct {
	State   RecordingState `json:"state"`
	Busy    bool           `json:"busy"`
	Message string         `json:"message,omitempty"`
}

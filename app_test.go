package main

import (
	"errors"
	"testing"

	"murmur/internal/domain"
)

func TestStateReasonMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.StateReason]string{
		domain.ReasonStartup:             "Ready",
		domain.ReasonCaptureStarted:      "Recording...",
		domain.ReasonTranscribing:        "Recording stopped. Transcribing...",
		domain.ReasonTranscriptSaved:     "Transcript saved",
		domain.ReasonToggleBusy:          "Still processing the previous recording",
		domain.ReasonAudioRejected:       "Capture produced no usable audio",
		domain.ReasonNoTranscript:        "No speech recognized",
		domain.ReasonTranscriptionFailed: "Transcription failed",
		domain.ReasonPersistenceFailed:   "Could not save the transcript",
		domain.ReasonPipelineFinished:    "Ready",
	}

	for reason, want := range cases {
		reason := reason
		want := want
		t.Run(string(reason), func(t *testing.T) {
			t.Parallel()
			if got := stateReasonMessage(reason); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := stateReasonMessage("unknown"); got != "" {
		t.Fatalf("expected empty unknown reason message, got %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.ErrorCode]string{
		domain.ErrorCodeStartup:       "Startup failed",
		domain.ErrorCodeAudio:         "Audio capture issue",
		domain.ErrorCodeTranscription: "Transcription error",
		domain.ErrorCodeCleanup:       "Text cleanup error",
		domain.ErrorCodePersistence:   "Storage error",
		domain.ErrorCodePaste:         "Paste failed",
	}
	for code, want := range cases {
		code := code
		want := want
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()
			if got := errorMessage(code, "ignored"); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := errorMessage("unknown", "detail"); got != "detail" {
		t.Fatalf("expected detail fallback, got %q", got)
	}
	if got := errorMessage("unknown", ""); got != "Unknown error" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
}

func TestRequireReady(t *testing.T) {
	t.Parallel()

	app := &App{}
	if err := app.requireReady(); err == nil {
		t.Fatalf("expected uninitialized error")
	}

	bootErr := errors.New("boot")
	app.bootErr = bootErr
	if err := app.requireReady(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
}

func TestGetStatusWhenNotInitialized(t *testing.T) {
	t.Parallel()

	app := &App{}
	status := app.GetStatus()
	if status.State != domain.StateIdle || status.Busy {
		t.Fatalf("unexpected status: %+v", status)
	}

	app.bootErr = errors.New("boot")
	status = app.GetStatus()
	if status.State != domain.StateError || status.Message != "boot" {
		t.Fatalf("unexpected boot status: %+v", status)
	}
}

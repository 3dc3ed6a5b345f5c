package main

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"murmur/internal/bootstrap"
	"murmur/internal/domain"
	"murmur/internal/paste"
	"murmur/internal/settings"
	"murmur/internal/transcript"
	"murmur/internal/usecase"
)

const (
	eventState      = "murmur:state"
	eventCapture    = "murmur:capture"
	eventTranscript = "murmur:transcript"
	eventError      = "murmur:error"
	eventNotify     = "murmur:notify"
)

// App is the Wails application root: it binds the recording controller to
// the UI shell and relays backend events to the frontend.
type App struct {
	ctx context.Context

	controller  *usecase.RecordingController
	settings    *settings.Store
	transcripts *transcript.Store
	bootErr     error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, paste.NewClipboardPaster())
	if err != nil {
		a.bootErr = err
		a.PipelineError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.controller = services.Controller
	a.settings = services.Settings
	a.transcripts = services.Transcripts
	a.StateChanged(domain.StateIdle, domain.ReasonStartup)
}

// Toggle handles the dictation hotkey: idle starts a capture, capturing
// stops it, anything else is reported back as busy.
func (a *App) Toggle() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	return a.controller.Toggle(a.ctx), nil
}

// PushAudio receives the base64-encoded capture buffer from the UI shell
// and runs the transcription pipeline.
func (a *App) PushAudio(encoded string) (domain.TranscriptRecord, error) {
	if err := a.requireReady(); err != nil {
		return domain.TranscriptRecord{}, err
	}
	buffer, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return domain.TranscriptRecord{}, domain.NewValidationError("buffer", "audio payload is not valid base64")
	}
	return a.controller.OnBufferReceived(a.ctx, buffer)
}

// TranscribeFile runs an existing audio file through the pipeline.
func (a *App) TranscribeFile(path string) (domain.TranscriptRecord, error) {
	if err := a.requireReady(); err != nil {
		return domain.TranscriptRecord{}, err
	}
	return a.controller.TranscribeFile(a.ctx, path)
}

// GetStatus returns the current recording status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.StateError, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.StateIdle}
	}
	return a.controller.Status()
}

// GetRecentTranscripts returns the n most recent transcript records.
func (a *App) GetRecentTranscripts(n int) ([]domain.TranscriptRecord, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.transcripts.GetRecent(n)
}

// GetTranscript returns one transcript record by id.
func (a *App) GetTranscript(id string) (domain.TranscriptRecord, error) {
	if err := a.requireReady(); err != nil {
		return domain.TranscriptRecord{}, err
	}
	return a.transcripts.GetByID(id)
}

// DeleteTranscript removes one transcript record by id.
func (a *App) DeleteTranscript(id string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.transcripts.Delete(id)
}

// GetSettings returns the complete current settings.
func (a *App) GetSettings() (domain.Settings, error) {
	if err := a.requireReady(); err != nil {
		return domain.Settings{}, err
	}
	return a.settings.Get(), nil
}

// UpdateSettings applies a partial settings update.
func (a *App) UpdateSettings(patch domain.SettingsPatch) (domain.Settings, error) {
	if err := a.requireReady(); err != nil {
		return domain.Settings{}, err
	}
	if err := a.settings.Set(patch); err != nil {
		return domain.Settings{}, err
	}
	return a.settings.Get(), nil
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}
	if a.settings == nil {
		return map[string]string{}
	}

	cfg := a.settings.Get()
	return map[string]string{
		"language":       cfg.Language,
		"hotkey":         cfg.Hotkey,
		"transcriptsDir": cfg.TranscriptionSavePath,
		"audioDir":       cfg.AudioSavePath,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// StateChanged emits recording lifecycle updates to the frontend.
func (a *App) StateChanged(state domain.RecordingState, reason domain.StateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventState, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": stateReasonMessage(reason),
	})
}

// CaptureStart asks the UI shell to begin microphone capture.
func (a *App) CaptureStart() {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventCapture, map[string]string{"action": "start"})
}

// CaptureStop asks the UI shell to stop capture and deliver the buffer.
func (a *App) CaptureStop() {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventCapture, map[string]string{"action": "stop"})
}

// TranscriptReady emits a finished transcript record to the frontend.
func (a *App) TranscriptReady(record domain.TranscriptRecord) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventTranscript, record)
}

// PipelineError emits backend errors to the UI.
func (a *App) PipelineError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

// Notify emits a user notification request to the UI shell.
func (a *App) Notify(title string, message string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventNotify, map[string]string{
		"title":   title,
		"message": message,
	})
}

func stateReasonMessage(reason domain.StateReason) string {
	switch reason {
	case domain.ReasonStartup:
		return "Ready"
	case domain.ReasonCaptureStarted:
		return "Recording..."
	case domain.ReasonTranscribing:
		return "Recording stopped. Transcribing..."
	case domain.ReasonTranscriptSaved:
		return "Transcript saved"
	case domain.ReasonToggleBusy:
		return "Still processing the previous recording"
	case domain.ReasonAudioRejected:
		return "Capture produced no usable audio"
	case domain.ReasonNoTranscript:
		return "No speech recognized"
	case domain.ReasonTranscriptionFailed:
		return "Transcription failed"
	case domain.ReasonPersistenceFailed:
		return "Could not save the transcript"
	case domain.ReasonPipelineFinished:
		return "Ready"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeAudio:
		return "Audio capture issue"
	case domain.ErrorCodeTranscription:
		return "Transcription error"
	case domain.ErrorCodeCleanup:
		return "Text cleanup error"
	case domain.ErrorCodePersistence:
		return "Storage error"
	case domain.ErrorCodePaste:
		return "Paste failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

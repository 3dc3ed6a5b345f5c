package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"murmur/internal/audiofile"
	"murmur/internal/domain"
	"murmur/internal/logging"
	"murmur/internal/ports"
	"murmur/internal/postprocess"
	"murmur/internal/settings"
	"murmur/internal/transcribe"
	"murmur/internal/transcript"
)

var (
	// ErrBusy is returned when a pipeline run is already in flight.
	ErrBusy = errors.New("a pipeline run is already in flight")
	// ErrNotCapturing is returned when a buffer arrives with no capture
	// in progress.
	ErrNotCapturing = errors.New("no capture in progress")
)

const titleWordLimit = 8

// RecordingController owns the recording state machine and drives the
// capture-to-transcript pipeline. All session state lives here; at most
// one pipeline run is in flight at a time.
type RecordingController struct {
	files        *audiofile.Manager
	orchestrator *transcribe.Orchestrator
	processor    *postprocess.Processor
	settings     *settings.Store
	finalizer    transcriptFinalizer
	events       ports.EventSink

	mu        sync.Mutex
	state     domain.RecordingState
	startedAt time.Time
	inFlight  bool
}

func NewRecordingController(
	files *audiofile.Manager,
	orchestrator *transcribe.Orchestrator,
	processor *postprocess.Processor,
	transcripts *transcript.Store,
	settingsStore *settings.Store,
	paster ports.Paster,
	events ports.EventSink,
) *RecordingController {
	return &RecordingController{
		files:        files,
		orchestrator: orchestrator,
		processor:    processor,
		settings:     settingsStore,
		finalizer:    newTranscriptFinalizer(paster, transcripts, events),
		events:       events,
		state:        domain.StateIdle,
	}
}

// Toggle advances the state machine on a hotkey press. Idle starts a
// capture, Capturing stops it and waits for the buffer. A toggle received
// while a run is still processing is a no-op reported as busy, never a
// queued or restarted run.
func (c *RecordingController) Toggle(ctx context.Context) domain.Status {
	c.mu.Lock()
	switch c.state {
	case domain.StateIdle:
		c.state = domain.StateCapturing
		c.startedAt = time.Now()
		c.mu.Unlock()

		c.events.CaptureStart()
		c.events.StateChanged(domain.StateCapturing, domain.ReasonCaptureStarted)
		return domain.Status{State: domain.StateCapturing}

	case domain.StateCapturing:
		c.state = domain.StateProcessing
		c.mu.Unlock()

		c.events.CaptureStop()
		c.events.StateChanged(domain.StateProcessing, domain.ReasonTranscribing)
		return domain.Status{State: domain.StateProcessing}

	default:
		state := c.state
		c.mu.Unlock()

		logging.Debug(logging.CategoryPipeline, "toggle ignored in state %s", state)
		c.events.StateChanged(state, domain.ReasonToggleBusy)
		return domain.Status{State: state, Busy: true, Message: "transcription in progress"}
	}
}

// OnBufferReceived accepts the captured audio buffer from the UI shell and
// runs the full pipeline. On completion, success or failure, the state
// machine returns to Idle.
func (c *RecordingController) OnBufferReceived(ctx context.Context, buffer []byte) (domain.TranscriptRecord, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return domain.TranscriptRecord{}, ErrBusy
	}
	switch c.state {
	case domain.StateProcessing:
	case domain.StateCapturing:
		// The shell may deliver the buffer before the stop toggle lands.
		c.state = domain.StateProcessing
	default:
		c.mu.Unlock()
		return domain.TranscriptRecord{}, ErrNotCapturing
	}
	c.inFlight = true
	startedAt := c.startedAt
	c.mu.Unlock()

	record, err := c.runPipeline(ctx, buffer, startedAt)
	c.finishRun(err)
	return record, err
}

// TranscribeFile runs an existing audio file through the same pipeline
// without a capture session. The resulting record has source "upload".
func (c *RecordingController) TranscribeFile(ctx context.Context, path string) (domain.TranscriptRecord, error) {
	c.mu.Lock()
	if c.inFlight || c.state != domain.StateIdle {
		c.mu.Unlock()
		return domain.TranscriptRecord{}, ErrBusy
	}
	c.state = domain.StateProcessing
	c.inFlight = true
	c.mu.Unlock()

	c.events.StateChanged(domain.StateProcessing, domain.ReasonTranscribing)

	record, err := c.process(ctx, path, domain.SourceUpload, time.Time{})
	c.finishRun(err)
	return record, err
}

// State returns the current recording state. Pure read.
func (c *RecordingController) State() domain.RecordingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns the current recording status for the UI shell.
func (c *RecordingController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Status{State: c.state, Busy: c.inFlight}
}

func (c *RecordingController) runPipeline(ctx context.Context, buffer []byte, startedAt time.Time) (domain.TranscriptRecord, error) {
	tempPath, err := c.files.SaveBuffer(buffer)
	if err != nil {
		c.reportFailure(domain.ErrorCodeAudio, domain.ReasonAudioRejected, err)
		return domain.TranscriptRecord{}, err
	}

	id := c.files.GenerateID()
	permanent, err := c.files.Promote(tempPath, id)
	if err != nil {
		c.reportFailure(domain.ErrorCodePersistence, domain.ReasonPersistenceFailed, err)
		return domain.TranscriptRecord{}, err
	}

	return c.processPromoted(ctx, id, permanent, domain.SourceRecording, startedAt)
}

func (c *RecordingController) process(ctx context.Context, path string, source domain.TranscriptSource, startedAt time.Time) (domain.TranscriptRecord, error) {
	id := c.files.GenerateID()
	permanent, err := c.files.Promote(path, id)
	if err != nil {
		c.reportFailure(domain.ErrorCodePersistence, domain.ReasonPersistenceFailed, err)
		return domain.TranscriptRecord{}, err
	}
	return c.processPromoted(ctx, id, permanent, source, startedAt)
}

func (c *RecordingController) processPromoted(ctx context.Context, id, audioPath string, source domain.TranscriptSource, startedAt time.Time) (domain.TranscriptRecord, error) {
	cfg := c.settings.Get()

	result, err := c.orchestrator.Transcribe(ctx, transcribe.Request{
		AudioPath: audioPath,
		Language:  cfg.Language,
		APIKey:    cfg.APIKey,
		StartedAt: startedAt,
	})
	if err != nil {
		c.reportFailure(domain.ErrorCodeTranscription, domain.ReasonTranscriptionFailed, err)
		return domain.TranscriptRecord{}, err
	}
	if strings.TrimSpace(result.Text) == "" {
		err := domain.NewValidationError("transcript", "no speech recognized")
		c.reportFailure(domain.ErrorCodeTranscription, domain.ReasonNoTranscript, err)
		return domain.TranscriptRecord{}, err
	}

	processed := c.processor.Clean(ctx, result.Text, cfg.APIKey, cfg.TranscriptionSystemPrompt)

	record := domain.TranscriptRecord{
		ID:              id,
		RawText:         result.Text,
		ProcessedText:   processed,
		Timestamp:       time.Now(),
		DurationSeconds: result.DurationSeconds,
		Language:        result.Language,
		WordCount:       len(strings.Fields(processed)),
		Source:          source,
		AudioFilePath:   audioPath,
		Title:           deriveTitle(processed),
	}

	record, err = c.finalizer.Finalize(ctx, record)
	if err != nil {
		c.reportFailure(domain.ErrorCodePersistence, domain.ReasonPersistenceFailed, err)
		return domain.TranscriptRecord{}, err
	}

	c.events.TranscriptReady(record)
	if cfg.NotifyOnComplete {
		c.events.Notify("Transcription complete", record.Title)
	}
	return record, nil
}

func (c *RecordingController) reportFailure(code domain.ErrorCode, reason domain.StateReason, err error) {
	logging.Error(logging.CategoryPipeline, "pipeline failed (%s): %v", reason, err)

	c.mu.Lock()
	c.state = domain.StateError
	c.mu.Unlock()

	c.events.PipelineError(code, err.Error())
	c.events.StateChanged(domain.StateError, reason)
	if c.settings.Get().NotifyOnError {
		c.events.Notify("Transcription failed", err.Error())
	}
}

// finishRun resets the state machine to Idle after a pipeline run,
// success or failure. The controller is never left stuck in Processing.
func (c *RecordingController) finishRun(runErr error) {
	c.mu.Lock()
	c.state = domain.StateIdle
	c.startedAt = time.Time{}
	c.inFlight = false
	c.mu.Unlock()

	reason := domain.ReasonTranscriptSaved
	if runErr != nil {
		reason = domain.ReasonPipelineFinished
	}
	c.events.StateChanged(domain.StateIdle, reason)
}

func deriveTitle(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if len(words) <= titleWordLimit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:titleWordLimit], " ") + "..."
}

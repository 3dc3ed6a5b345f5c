package usecase

import (
	"context"

	"murmur/internal/domain"
	"murmur/internal/logging"
	"murmur/internal/ports"
	"murmur/internal/transcript"
)

type transcriptFinalizer struct {
	paster ports.Paster
	store  *transcript.Store
	events ports.EventSink
}

func newTranscriptFinalizer(paster ports.Paster, store *transcript.Store, events ports.EventSink) transcriptFinalizer {
	return transcriptFinalizer{paster: paster, store: store, events: events}
}

// Finalize delivers the finished text to the paste collaborator and
// persists the record. A paste failure is non-fatal and only recorded in
// PastedAtCursor; a persistence failure fails the run.
func (f transcriptFinalizer) Finalize(ctx context.Context, record domain.TranscriptRecord) (domain.TranscriptRecord, error) {
	if err := f.paster.Paste(ctx, record.ProcessedText); err != nil {
		record.PastedAtCursor = false
		logging.Warning(logging.CategoryPipeline, "paste failed: %v", err)
		f.events.PipelineError(domain.ErrorCodePaste, "transcript ready but paste failed")
	} else {
		record.PastedAtCursor = true
	}

	if _, err := f.store.Save(record); err != nil {
		return record, err
	}
	return record, nil
}

package postprocess

import (
	"context"
	"strings"

	"murmur/internal/logging"
	"murmur/internal/ports"
)

// DefaultPrompt is used when no custom prompt is configured.
const DefaultPrompt = "Reformat the following transcription into clean markdown. " +
	"Do not add commentary. Do not add headers. Preserve the speaker's wording."

// Processor runs the optional text-cleanup pass. It never fails the
// pipeline: any cleanup-service error is logged and the raw text is
// returned unchanged.
type Processor struct {
	cleanup ports.CleanupService
}

func NewProcessor(cleanup ports.CleanupService) *Processor {
	return &Processor{cleanup: cleanup}
}

// Clean reformats rawText through the cleanup service using customPrompt
// when present, DefaultPrompt otherwise. On any error, or an empty
// response, the raw text comes back untouched.
func (p *Processor) Clean(ctx context.Context, rawText, apiKey, customPrompt string) string {
	if strings.TrimSpace(rawText) == "" {
		return rawText
	}
	if strings.TrimSpace(apiKey) == "" {
		logging.Debug(logging.CategoryPipeline, "no API key for cleanup, keeping raw text")
		return rawText
	}

	prompt := strings.TrimSpace(customPrompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}

	cleaned, err := p.cleanup.Clean(ctx, ports.CleanupRequest{
		Text:   rawText,
		Prompt: prompt,
		APIKey: apiKey,
	})
	if err != nil {
		logging.Warning(logging.CategoryPipeline, "text cleanup failed, keeping raw text: %v", err)
		return rawText
	}
	if strings.TrimSpace(cleaned) == "" {
		logging.Warning(logging.CategoryPipeline, "text cleanup returned empty output, keeping raw text")
		return rawText
	}
	return cleaned
}

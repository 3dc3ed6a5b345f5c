package openai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"murmur/internal/ports"
)

const defaultCleanupModel = "gpt-4o-mini"

// Config controls the OpenAI-compatible endpoints. BaseURL may point at a
// self-hosted whisper-compatible server.
type Config struct {
	BaseURL      string
	CleanupModel string
}

// Client implements both ports.SpeechService and ports.CleanupService on
// top of an OpenAI-compatible API. The API key travels with each request
// because it is user configuration that can change at runtime.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	if cfg.CleanupModel == "" {
		cfg.CleanupModel = defaultCleanupModel
	}
	return &Client{cfg: cfg}
}

func (c *Client) api(apiKey string) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if c.cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(c.cfg.BaseURL, "/")
	}
	return openai.NewClientWithConfig(clientCfg)
}

// Transcribe uploads one audio file and returns the transcribed text.
func (c *Client) Transcribe(ctx context.Context, req ports.SpeechRequest) (ports.SpeechResult, error) {
	response, err := c.api(req.APIKey).CreateTranscription(ctx, openai.AudioRequest{
		Model:    req.Model,
		FilePath: req.FilePath,
		Language: req.Language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return ports.SpeechResult{}, err
	}
	return ports.SpeechResult{
		Text:     strings.TrimSpace(response.Text),
		Language: response.Language,
	}, nil
}

// Clean reformats transcript text through a chat completion.
func (c *Client) Clean(ctx context.Context, req ports.CleanupRequest) (string, error) {
	response, err := c.api(req.APIKey).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.CleanupModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.Prompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
	})
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", errors.New("cleanup service returned no choices")
	}
	return response.Choices[0].Message.Content, nil
}

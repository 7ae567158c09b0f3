package generators

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"wayfarer/internal/config"
	"wayfarer/internal/interfaces"
	"wayfarer/internal/prompts"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 400
	maxRetries       = 3
	retryDelay       = 1 * time.Second
)

// DialogClient generates dialog text through an OpenAI-compatible chat
// completion endpoint. Transient failures are retried with a linear backoff;
// the caller's context bounds the whole attempt.
type DialogClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	templates   *prompts.TemplateEngine
}

// NewDialogClient builds a client from the generator configuration.
func NewDialogClient(cfg config.GeneratorConfig) (*DialogClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("generator: api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	templates, err := prompts.NewTemplateEngine()
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	return &DialogClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(cfg.Temperature),
		templates:   templates,
	}, nil
}

// GenerateDialog implements interfaces.DialogGenerator.
func (c *DialogClient) GenerateDialog(ctx context.Context, req *interfaces.DialogRequest) (*interfaces.DialogResult, error) {
	system, user, err := c.templates.BuildDialogPrompt(&prompts.DialogPromptData{
		SceneName:        req.SceneName,
		SceneDescription: req.SceneDescription,
		SpeakerName:      req.SpeakerName,
		Prompt:           req.Prompt,
		Flags:            req.Flags,
		Memories:         req.Memories,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}

		text, err := c.complete(ctx, system, user)
		if err == nil {
			return &interfaces.DialogResult{Text: text}, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isRetryableError(err) {
			break
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *DialogClient) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("blank completion text")
	}
	return text, nil
}

// isRetryableError checks if an error is worth another attempt.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "503")
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/set-night/stanbot/internal/config"
	"github.com/set-night/stanbot/internal/domain"
)

// AnthropicService generates completions through the Messages API.
type AnthropicService struct {
	client      anthropic.Client
	model       anthropic.Model
	temperature float64
}

// NewAnthropicService builds a client with SDK retries disabled; a failed
// call surfaces to the caller on the first attempt.
func NewAnthropicService(apiKey, baseURL, model string, temperature float64) *AnthropicService {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(config.RequestTimeout),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicService{
		client:      anthropic.NewClient(opts...),
		model:       anthropic.Model(model),
		temperature: temperature,
	}
}

func (s *AnthropicService) Generate(ctx context.Context, payload domain.PromptPayload) (domain.Completion, error) {
	messages := make([]anthropic.MessageParam, 0, len(payload.History)+1)
	for _, t := range payload.History {
		if t.Role == domain.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Text)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(payload.Utterance)))

	params := anthropic.MessageNewParams{
		Model:       s.model,
		MaxTokens:   int64(config.MaxCompletionTokens),
		Messages:    messages,
		Temperature: anthropic.Float(s.temperature),
	}
	if payload.Instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: payload.Instructions}}
	}

	msg, err := s.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			switch apiErr.StatusCode {
			case http.StatusTooManyRequests:
				return domain.Completion{}, fmt.Errorf("anthropic: %w (429)", domain.ErrRateLimited)
			case http.StatusServiceUnavailable, 529:
				return domain.Completion{}, fmt.Errorf("anthropic: %w (%d)", domain.ErrServiceUnavailable, apiErr.StatusCode)
			}
		}
		return domain.Completion{}, fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return domain.Completion{}, domain.ErrEmptyCompletion
	}

	return domain.Completion{
		Text:         text,
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}, nil
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/set-night/stanbot/internal/config"
	"github.com/set-night/stanbot/internal/domain"
	"github.com/shopspring/decimal"
)

type OpenRouterService struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

func NewOpenRouterService(apiKey, baseURL, model string, temperature float64) *OpenRouterService {
	return &OpenRouterService{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: config.RequestTimeout},
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int             `json:"prompt_tokens"`
		CompletionTokens int             `json:"completion_tokens"`
		TotalCost        decimal.Decimal `json:"total_cost"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *OpenRouterService) Generate(ctx context.Context, payload domain.PromptPayload) (domain.Completion, error) {
	prompt := payload.Messages()
	messages := make([]ChatMessage, len(prompt))
	for i, m := range prompt {
		messages[i] = ChatMessage{Role: string(m.Role), Content: m.Content}
	}

	resp, err := s.Chat(ctx, messages)
	if err != nil {
		return domain.Completion{}, err
	}
	if len(resp.Choices) == 0 {
		return domain.Completion{}, domain.ErrEmptyCompletion
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return domain.Completion{}, domain.ErrEmptyCompletion
	}

	return domain.Completion{
		Text:         text,
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
		Cost:         resp.Usage.TotalCost,
	}, nil
}

func (s *OpenRouterService) Chat(ctx context.Context, messages []ChatMessage) (*ChatResponse, error) {
	temperature := s.temperature
	chatReq := ChatRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: &temperature,
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("openrouter: %w (429)", domain.ErrRateLimited)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, fmt.Errorf("openrouter: %w (503)", domain.ErrServiceUnavailable)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("openrouter status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("openrouter error: %s", chatResp.Error.Message)
	}

	return &chatResp, nil
}

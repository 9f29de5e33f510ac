package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/set-night/stanbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type anthropicRequest struct {
	Model string `json:"model"`

	System []struct {
		Text string `json:"text"`
	} `json:"system"`

	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func TestAnthropicGenerate(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "Hello!"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 2}
		}`))
	}))
	defer srv.Close()

	svc := NewAnthropicService("sk-ant", srv.URL, "claude-test", 0.7)
	payload := AssemblePrompt("rules", []domain.MessageTurn{
		{Role: domain.RoleUser, Text: "Hi"},
		{Role: domain.RoleAssistant, Text: "Hey"},
	}, "How are you?")

	completion, err := svc.Generate(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", completion.Text)
	assert.EqualValues(t, 10, completion.InputTokens)
	assert.EqualValues(t, 2, completion.OutputTokens)
	assert.True(t, completion.Cost.IsZero())

	assert.Equal(t, "claude-test", got.Model)
	require.Len(t, got.System, 1)
	assert.Equal(t, "rules", got.System[0].Text)

	var roles, texts []string
	for _, m := range got.Messages {
		roles = append(roles, m.Role)
		require.Len(t, m.Content, 1)
		texts = append(texts, m.Content[0].Text)
	}
	assert.Equal(t, []string{"user", "assistant", "user"}, roles)
	assert.Equal(t, []string{"Hi", "Hey", "How are you?"}, texts)
}

func TestAnthropicGenerateRateLimited(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	svc := NewAnthropicService("sk-ant", srv.URL, "claude-test", 0.7)
	_, err := svc.Generate(context.Background(), AssemblePrompt("rules", nil, "Hi"))
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 1, calls)
}

func TestAnthropicGenerateEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test","content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`))
	}))
	defer srv.Close()

	svc := NewAnthropicService("sk-ant", srv.URL, "claude-test", 0.7)
	_, err := svc.Generate(context.Background(), AssemblePrompt("rules", nil, "Hi"))
	assert.ErrorIs(t, err, domain.ErrEmptyCompletion)
}

package service

import (
	"context"

	"github.com/set-night/stanbot/internal/domain"
)

// Gateway sends one assembled prompt to a text-generation provider and
// returns the completion with its usage. Implementations make a single
// attempt.
type Gateway interface {
	Generate(ctx context.Context, payload domain.PromptPayload) (domain.Completion, error)
}

var (
	_ Gateway = (*OpenRouterService)(nil)
	_ Gateway = (*AnthropicService)(nil)
)

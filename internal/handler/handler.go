package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/set-night/stanbot/internal/domain"
	"github.com/set-night/stanbot/internal/telegram"
)

// Chat is the part of the chat service the Telegram handlers need.
type Chat interface {
	HandleTurn(ctx context.Context, displayName, conversationSlot, utterance string) ([]domain.MessageTurn, error)
	History(ctx context.Context, displayName, conversationSlot string) ([]domain.MessageTurn, error)
	Count(ctx context.Context, displayName, conversationSlot string) (int64, error)
}

// Handler holds all dependencies needed by command and text handlers.
type Handler struct {
	bot    *bot.Bot
	sender telegram.Sender
	chat   Chat
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot  *bot.Bot
	Chat Chat
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:    deps.Bot,
		sender: deps.Bot,
		chat:   deps.Chat,
	}
}

package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/stanbot/internal/middleware"
	"github.com/set-night/stanbot/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.start(ctx, update.Message)
}

func (h *Handler) start(ctx context.Context, msg *models.Message) {
	identity := middleware.GetIdentity(ctx)
	if identity == "" {
		return
	}

	name := "friend"
	if msg.From != nil && msg.From.FirstName != "" {
		name = msg.From.FirstName
	}

	text := fmt.Sprintf("Hey %s! I'm StanBot, your chat buddy. Tell me anything!\n\n"+
		"/history shows what we talked about recently.", name)

	n, err := h.chat.Count(ctx, identity, "")
	if err != nil {
		slog.Error("count turns", "error", err, "identity", identity)
	} else if n > 0 {
		text += fmt.Sprintf("\n\nI remember %d messages from our chats.", n)
	}

	telegram.SendText(ctx, h.sender, msg.Chat.ID, text)
}

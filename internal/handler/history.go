package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/stanbot/internal/config"
	"github.com/set-night/stanbot/internal/domain"
	"github.com/set-night/stanbot/internal/middleware"
	"github.com/set-night/stanbot/internal/telegram"
)

func (h *Handler) handleHistory(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.history(ctx, update.Message)
}

func (h *Handler) history(ctx context.Context, msg *models.Message) {
	identity := middleware.GetIdentity(ctx)
	if identity == "" {
		return
	}
	chatID := msg.Chat.ID

	turns, err := h.chat.History(ctx, identity, "")
	if err != nil {
		slog.Error("load history", "error", err, "identity", identity)
		telegram.SendText(ctx, h.sender, chatID, "❌ Couldn't load our chat history right now.")
		return
	}
	if len(turns) == 0 {
		telegram.SendText(ctx, h.sender, chatID, "We haven't talked yet. Say hi!")
		return
	}

	telegram.SendText(ctx, h.sender, chatID, formatHistory(turns, config.HistoryPreviewTurns))
}

// formatHistory renders the last limit turns as plain text.
func formatHistory(turns []domain.MessageTurn, limit int) string {
	start := 0
	if limit > 0 && len(turns) > limit {
		start = len(turns) - limit
	}

	var sb strings.Builder
	if start > 0 {
		fmt.Fprintf(&sb, "… %d earlier messages\n\n", start)
	}
	for i, t := range turns[start:] {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		who := "You"
		if t.Role == domain.RoleAssistant {
			who = "StanBot"
		}
		fmt.Fprintf(&sb, "%s: %s", who, t.Text)
	}

	out := sb.String()
	if runes := []rune(out); len(runes) > telegram.MaxMessageLen {
		out = "…" + string(runes[len(runes)-telegram.MaxMessageLen+1:])
	}
	return out
}

package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot/models"
	"github.com/set-night/stanbot/internal/config"
	"github.com/set-night/stanbot/internal/domain"
	"github.com/set-night/stanbot/internal/middleware"
	"github.com/set-night/stanbot/internal/service"
	"github.com/set-night/stanbot/internal/telegram"
)

// HandleText runs one chat turn for a plain text message.
func (h *Handler) HandleText(ctx context.Context, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	identity := middleware.GetIdentity(ctx)
	if identity == "" {
		return
	}
	chatID := msg.Chat.ID

	stopTyping := telegram.StartTyping(ctx, h.sender, chatID)
	defer stopTyping()

	reqCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	transcript, err := h.chat.HandleTurn(reqCtx, identity, "", msg.Text)
	if err != nil {
		h.replyError(ctx, chatID, msg.ID, err)
		return
	}

	reply := transcript[len(transcript)-1].Text
	if err := telegram.SendLongMessage(ctx, h.sender, chatID, reply, &msg.ID); err != nil {
		slog.Error("send reply", "error", err, "chat_id", chatID)
	}
}

func (h *Handler) replyError(ctx context.Context, chatID int64, replyTo int, err error) {
	var werr *service.StoreWriteError
	if errors.As(err, &werr) {
		// The reply exists, so deliver it along with the warning.
		if sendErr := telegram.SendLongMessage(ctx, h.sender, chatID, werr.Reply, &replyTo); sendErr != nil {
			slog.Error("send unsaved reply", "error", sendErr, "chat_id", chatID)
		}
		telegram.SendText(ctx, h.sender, chatID, "⚠️ I couldn't save this exchange, so I may forget it later.")
		return
	}
	telegram.SendText(ctx, h.sender, chatID, errorText(err))
}

func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		return "Say something and I'll reply!"
	case errors.Is(err, domain.ErrRateLimited):
		return "⏳ Too many requests right now. Try again in a bit."
	case errors.Is(err, domain.ErrSessionBusy):
		return "⏳ I'm still answering your previous message. Try again in a moment."
	case errors.Is(err, context.DeadlineExceeded):
		return "⏳ That took too long. Please try again."
	case errors.Is(err, domain.ErrStoreRead):
		return "❌ I can't reach my memory right now. Please try again."
	default:
		return "❌ Something went wrong while replying. Please try again."
	}
}

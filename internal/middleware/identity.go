package middleware

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type ctxKey string

const IdentityKey ctxKey = "identity"

// GetIdentity extracts the chat identity from context.
func GetIdentity(ctx context.Context) string {
	id, ok := ctx.Value(IdentityKey).(string)
	if !ok {
		return ""
	}
	return id
}

// IdentityFor returns the display name used for a Telegram user. The numeric
// id keeps it stable across username changes.
func IdentityFor(u *models.User) string {
	if u == nil {
		return ""
	}
	return fmt.Sprintf("tg-%d", u.ID)
}

// IdentityLoader returns middleware that stores the sender identity in context.
func IdentityLoader() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if update.Message != nil && update.Message.From != nil {
				ctx = context.WithValue(ctx, IdentityKey, IdentityFor(update.Message.From))
			}
			next(ctx, b, update)
		}
	}
}

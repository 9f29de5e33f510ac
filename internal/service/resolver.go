package service

import (
	"strings"

	"github.com/set-night/stanbot/internal/config"
	"github.com/set-night/stanbot/internal/domain"
)

// ResolveSession maps a display name and conversation slot to a session key.
// Blank values fall back to the default identity and slot.
func ResolveSession(displayName, conversationSlot string) domain.SessionKey {
	userID := strings.TrimSpace(displayName)
	if userID == "" {
		userID = config.DefaultUserID
	}
	conversationID := strings.TrimSpace(conversationSlot)
	if conversationID == "" {
		conversationID = config.DefaultConversationID
	}
	return domain.SessionKey{UserID: userID, ConversationID: conversationID}
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Storable reports whether a turn with this role may be appended to a
// transcript. System instructions are never stored.
func (r Role) Storable() bool {
	return r == RoleUser || r == RoleAssistant
}

// SessionKey identifies one (user, conversation) transcript. The two parts
// are stored in separate columns and never joined into one string.
type SessionKey struct {
	UserID         string
	ConversationID string
}

type MessageTurn struct {
	ID        uuid.UUID
	Role      Role
	Text      string
	CreatedAt time.Time
}

// PromptMessage is one role-tagged entry of an assembled prompt.
type PromptMessage struct {
	Role    Role
	Content string
}

// PromptPayload is built fresh for every turn and never persisted.
type PromptPayload struct {
	Instructions string
	History      []MessageTurn
	Utterance    string
}

// Messages flattens the payload into the order sent to the model:
// instructions, then history, then the new utterance.
func (p PromptPayload) Messages() []PromptMessage {
	msgs := make([]PromptMessage, 0, len(p.History)+2)
	msgs = append(msgs, PromptMessage{Role: RoleSystem, Content: p.Instructions})
	for _, t := range p.History {
		msgs = append(msgs, PromptMessage{Role: t.Role, Content: t.Text})
	}
	msgs = append(msgs, PromptMessage{Role: RoleUser, Content: p.Utterance})
	return msgs
}

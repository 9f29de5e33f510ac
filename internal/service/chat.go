package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/stanbot/internal/config"
	"github.com/set-night/stanbot/internal/domain"
)

// StoreWriteError reports a turn whose completion was generated but not
// fully recorded. Pending holds the turns that still need to be written.
type StoreWriteError struct {
	Key     domain.SessionKey
	Reply   string
	Pending []domain.MessageTurn
	Err     error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("%v: %v", domain.ErrStoreWrite, e.Err)
}

func (e *StoreWriteError) Unwrap() []error {
	return []error{domain.ErrStoreWrite, e.Err}
}

type ChatOptions struct {
	Instructions string
	Window       WindowPolicy
}

// ChatService runs one conversational turn end to end.
type ChatService struct {
	store        TranscriptStore
	gateway      Gateway
	instructions string
	window       WindowPolicy
	locks        *keyedMutex
	now          func() time.Time
}

func NewChatService(store TranscriptStore, gateway Gateway, opts ChatOptions) *ChatService {
	window := opts.Window
	if window == nil {
		window = FullTranscript{}
	}
	return &ChatService{
		store:        store,
		gateway:      gateway,
		instructions: opts.Instructions,
		window:       window,
		locks:        newKeyedMutex(),
		now:          time.Now,
	}
}

// HandleTurn resolves the session, replays its transcript to the gateway and
// records the exchange. Nothing is written unless generation succeeds. The
// writes outlive ctx so a generated reply is not lost to a caller that gave
// up. The returned transcript includes both new turns.
func (s *ChatService) HandleTurn(ctx context.Context, displayName, conversationSlot, utterance string) ([]domain.MessageTurn, error) {
	if strings.TrimSpace(utterance) == "" {
		return nil, domain.ErrEmptyMessage
	}

	key := ResolveSession(displayName, conversationSlot)
	unlock, err := s.locks.Lock(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionBusy, err)
	}
	defer unlock()

	transcript, err := s.store.Load(ctx, key)
	if err != nil {
		slog.Error("load transcript", "error", err, "user_id", key.UserID, "conversation_id", key.ConversationID)
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}

	payload := AssemblePrompt(s.instructions, s.window.Window(transcript), utterance)

	start := time.Now()
	completion, err := s.gateway.Generate(ctx, payload)
	if err != nil {
		slog.Error("generate reply", "error", err, "user_id", key.UserID, "conversation_id", key.ConversationID)
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	now := s.now()
	pending := []domain.MessageTurn{
		{ID: uuid.New(), Role: domain.RoleUser, Text: utterance, CreatedAt: now},
		{ID: uuid.New(), Role: domain.RoleAssistant, Text: completion.Text, CreatedAt: now},
	}

	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.CommitTimeout)
	defer cancel()
	if err := s.commit(commitCtx, key, completion.Text, pending); err != nil {
		return nil, err
	}

	slog.Info("turn completed",
		"user_id", key.UserID,
		"conversation_id", key.ConversationID,
		"history_turns", len(payload.History),
		"input_tokens", completion.InputTokens,
		"output_tokens", completion.OutputTokens,
		"cost", completion.Cost.String(),
		"duration", time.Since(start),
	)

	out := make([]domain.MessageTurn, 0, len(transcript)+len(pending))
	out = append(out, transcript...)
	return append(out, pending...), nil
}

// History returns the stored transcript without generating anything.
func (s *ChatService) History(ctx context.Context, displayName, conversationSlot string) ([]domain.MessageTurn, error) {
	key := ResolveSession(displayName, conversationSlot)
	transcript, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}
	return transcript, nil
}

func (s *ChatService) Count(ctx context.Context, displayName, conversationSlot string) (int64, error) {
	key := ResolveSession(displayName, conversationSlot)
	n, err := s.store.Count(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}
	return n, nil
}

// RetryWrite attempts to record the turns left unsaved by a failed commit.
func (s *ChatService) RetryWrite(ctx context.Context, werr *StoreWriteError) error {
	unlock, err := s.locks.Lock(ctx, werr.Key)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSessionBusy, err)
	}
	defer unlock()
	return s.commit(ctx, werr.Key, werr.Reply, werr.Pending)
}

// commit appends turns in order and stops at the first failure.
func (s *ChatService) commit(ctx context.Context, key domain.SessionKey, reply string, turns []domain.MessageTurn) error {
	for i, turn := range turns {
		if err := s.store.Append(ctx, key, turn); err != nil {
			slog.Error("append turn",
				"error", err,
				"user_id", key.UserID,
				"conversation_id", key.ConversationID,
				"role", turn.Role,
				"unsaved", len(turns)-i,
			)
			return &StoreWriteError{
				Key:     key,
				Reply:   reply,
				Pending: append([]domain.MessageTurn(nil), turns[i:]...),
				Err:     err,
			}
		}
	}
	return nil
}

package service

import (
	"context"
	"fmt"

	"github.com/set-night/stanbot/internal/domain"
	"github.com/set-night/stanbot/internal/repository/sqlc"
)

// TranscriptStore is a durable append-only log of turns, partitioned by key.
type TranscriptStore interface {
	// Load returns every turn appended under key in insertion order. An
	// unknown key yields an empty transcript, not an error.
	Load(ctx context.Context, key domain.SessionKey) ([]domain.MessageTurn, error)
	// Append persists one turn at the end of the transcript for key.
	Append(ctx context.Context, key domain.SessionKey, turn domain.MessageTurn) error
	Count(ctx context.Context, key domain.SessionKey) (int64, error)
}

type PostgresTranscriptStore struct {
	queries *sqlc.Queries
}

func NewPostgresTranscriptStore(queries *sqlc.Queries) *PostgresTranscriptStore {
	return &PostgresTranscriptStore{queries: queries}
}

func (s *PostgresTranscriptStore) Load(ctx context.Context, key domain.SessionKey) ([]domain.MessageTurn, error) {
	rows, err := s.queries.ListChatTurns(ctx, sqlc.ListChatTurnsParams{
		UserID:         key.UserID,
		ConversationID: key.ConversationID,
	})
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	turns := make([]domain.MessageTurn, len(rows))
	for i, r := range rows {
		turns[i] = domain.MessageTurn{
			ID:        r.TurnID,
			Role:      domain.Role(r.Role),
			Text:      r.Text,
			CreatedAt: pgTimestamptzToTime(r.CreatedAt),
		}
	}
	return turns, nil
}

func (s *PostgresTranscriptStore) Append(ctx context.Context, key domain.SessionKey, turn domain.MessageTurn) error {
	if err := validateTurn(turn); err != nil {
		return err
	}
	_, err := s.queries.AddChatTurn(ctx, sqlc.AddChatTurnParams{
		TurnID:         turn.ID,
		UserID:         key.UserID,
		ConversationID: key.ConversationID,
		Role:           string(turn.Role),
		Text:           turn.Text,
		CreatedAt:      timeToPgTimestamptz(turn.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("add turn: %w", err)
	}
	return nil
}

func (s *PostgresTranscriptStore) Count(ctx context.Context, key domain.SessionKey) (int64, error) {
	n, err := s.queries.CountChatTurns(ctx, sqlc.CountChatTurnsParams{
		UserID:         key.UserID,
		ConversationID: key.ConversationID,
	})
	if err != nil {
		return 0, fmt.Errorf("count turns: %w", err)
	}
	return n, nil
}

func validateTurn(turn domain.MessageTurn) error {
	if !turn.Role.Storable() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRole, turn.Role)
	}
	return nil
}

var (
	_ TranscriptStore = (*PostgresTranscriptStore)(nil)
	_ TranscriptStore = (*SQLiteTranscriptStore)(nil)
)

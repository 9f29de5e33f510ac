package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/stanbot/internal/domain"
)

// SQLiteTranscriptStore keeps transcripts in a local SQLite file.
type SQLiteTranscriptStore struct {
	db *sql.DB
}

func NewSQLiteTranscriptStore(db *sql.DB) *SQLiteTranscriptStore {
	return &SQLiteTranscriptStore{db: db}
}

func (s *SQLiteTranscriptStore) Load(ctx context.Context, key domain.SessionKey) ([]domain.MessageTurn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_id, role, text, created_at FROM chat_turns
		 WHERE user_id = ? AND conversation_id = ?
		 ORDER BY id ASC`,
		key.UserID, key.ConversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	turns := []domain.MessageTurn{}
	for rows.Next() {
		var (
			turnID    string
			role      string
			text      string
			createdAt int64
		)
		if err := rows.Scan(&turnID, &role, &text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		id, err := uuid.Parse(turnID)
		if err != nil {
			return nil, fmt.Errorf("parse turn id %q: %w", turnID, err)
		}
		turns = append(turns, domain.MessageTurn{
			ID:        id,
			Role:      domain.Role(role),
			Text:      text,
			CreatedAt: time.UnixMilli(createdAt).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return turns, nil
}

func (s *SQLiteTranscriptStore) Append(ctx context.Context, key domain.SessionKey, turn domain.MessageTurn) error {
	if err := validateTurn(turn); err != nil {
		return err
	}
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_turns (turn_id, user_id, conversation_id, role, text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		turn.ID.String(), key.UserID, key.ConversationID, string(turn.Role), turn.Text, createdAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("add turn: %w", err)
	}
	return nil
}

func (s *SQLiteTranscriptStore) Count(ctx context.Context, key domain.SessionKey) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_turns WHERE user_id = ? AND conversation_id = ?`,
		key.UserID, key.ConversationID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count turns: %w", err)
	}
	return n, nil
}

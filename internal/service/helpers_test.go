package service

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"
	"testing"

	stanbot "github.com/set-night/stanbot"
	"github.com/set-night/stanbot/internal/domain"
	"github.com/set-night/stanbot/internal/repository"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := repository.OpenSQLite(ctx, path)
	require.NoError(t, err)

	migrations, err := fs.Sub(stanbot.MigrationsFS, "migrations/sqlite")
	require.NoError(t, err)
	require.NoError(t, repository.RunMigrations(repository.SQLiteMigrationURL(path), migrations))

	return db
}

func newTestSQLiteStore(t *testing.T) *SQLiteTranscriptStore {
	t.Helper()
	db := openTestSQLite(t, filepath.Join(t.TempDir(), "chat.db"))
	t.Cleanup(func() { db.Close() })
	return NewSQLiteTranscriptStore(db)
}

// memStore is an in-memory TranscriptStore with injectable failures.
type memStore struct {
	mu        sync.Mutex
	turns     map[domain.SessionKey][]domain.MessageTurn
	loadErr   error
	appendErr error
	failAfter int // appends that succeed before appendErr applies, -1 disables
	appends   int
}

func newMemStore() *memStore {
	return &memStore{turns: make(map[domain.SessionKey][]domain.MessageTurn), failAfter: -1}
}

func (m *memStore) Load(_ context.Context, key domain.SessionKey) ([]domain.MessageTurn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]domain.MessageTurn{}, m.turns[key]...), nil
}

func (m *memStore) Append(_ context.Context, key domain.SessionKey, turn domain.MessageTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := validateTurn(turn); err != nil {
		return err
	}
	if m.appendErr != nil && m.failAfter >= 0 && m.appends >= m.failAfter {
		return m.appendErr
	}
	m.appends++
	m.turns[key] = append(m.turns[key], turn)
	return nil
}

func (m *memStore) Count(_ context.Context, key domain.SessionKey) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.turns[key])), nil
}

// stubGateway returns scripted replies and records every payload it sees.
type stubGateway struct {
	mu       sync.Mutex
	replies  []string
	err      error
	payloads []domain.PromptPayload
	hook     func(domain.PromptPayload)
}

func (g *stubGateway) Generate(_ context.Context, payload domain.PromptPayload) (domain.Completion, error) {
	if g.hook != nil {
		g.hook(payload)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payloads = append(g.payloads, payload)
	if g.err != nil {
		return domain.Completion{}, g.err
	}
	if len(g.replies) == 0 {
		return domain.Completion{}, errors.New("stub gateway: no reply scripted")
	}
	reply := g.replies[0]
	g.replies = g.replies[1:]
	return domain.Completion{Text: reply}, nil
}

func (g *stubGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.payloads)
}

func turnTexts(turns []domain.MessageTurn) [][2]string {
	out := make([][2]string, len(turns))
	for i, t := range turns {
		out[i] = [2]string{string(t.Role), t.Text}
	}
	return out
}

package service

import (
	"context"
	"io/fs"
	"os"
	"testing"

	"github.com/google/uuid"
	stanbot "github.com/set-night/stanbot"
	"github.com/set-night/stanbot/internal/domain"
	"github.com/set-night/stanbot/internal/repository"
	"github.com/set-night/stanbot/internal/repository/sqlc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real PostgreSQL when TEST_DATABASE_URL is set.
func TestPostgresStore(t *testing.T) {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := repository.NewPool(ctx, databaseURL)
	require.NoError(t, err)
	defer pool.Close()

	migrations, err := fs.Sub(stanbot.MigrationsFS, "migrations/postgres")
	require.NoError(t, err)
	require.NoError(t, repository.RunMigrations(databaseURL, migrations))

	store := NewPostgresTranscriptStore(sqlc.New(pool))
	// Unique user per run keeps reruns against the same database independent.
	key := domain.SessionKey{UserID: "test-" + uuid.NewString(), ConversationID: "1"}
	other := domain.SessionKey{UserID: key.UserID, ConversationID: "2"}

	empty, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, store.Append(ctx, key, newTurn(domain.RoleUser, "Hi")))
	require.NoError(t, store.Append(ctx, key, newTurn(domain.RoleAssistant, "Hello!")))
	assert.ErrorIs(t, store.Append(ctx, key, newTurn(domain.RoleSystem, "nope")), domain.ErrInvalidRole)

	turns, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"user", "Hi"}, {"assistant", "Hello!"}}, turnTexts(turns))

	n, err := store.Count(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	otherTurns, err := store.Load(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, otherTurns)
}

package sqlstore

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/database"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/models"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/repositories"
)

// setupTestSession migrates a fresh SQLite file and opens a session on it
func setupTestSession(t *testing.T) *database.Session {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	connector, err := database.NewConnector(&database.ConnectionConfig{
		Driver: "sqlite3",
		Name:   filepath.Join(t.TempDir(), "users.db"),
		Logger: logger,
	}, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, database.NewMigrationManager(connector, logger).RunMigrations(ctx))

	session, err := connector.Open(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return session
}

func newTestRepository(t *testing.T) (repositories.UserRepository, *database.Session) {
	session := setupTestSession(t)
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return NewUserRepository(session, nil, logger), session
}

func TestUserRepository_ListEmpty(t *testing.T) {
	repo, _ := newTestRepository(t)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, users)
	assert.Len(t, users, 0)

	body, err := json.Marshal(users)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
}

func TestUserRepository_CreateAndList(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, "Ada", "Lovelace", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = repo.Create(ctx, "Alan", "Turing", "alan@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	body, err := json.Marshal(users[0])
	require.NoError(t, err)
	assert.Equal(t, `{"userId":1,"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`, string(body))

	assert.Equal(t, models.Column{Name: "email", Value: "alan@example.com"}, users[1][3])
}

func TestUserRepository_ListReportsExtraColumns(t *testing.T) {
	repo, session := newTestRepository(t)
	ctx := context.Background()

	_, err := session.DB.Exec(`ALTER TABLE users ADD COLUMN nickname TEXT`)
	require.NoError(t, err)

	_, err = repo.Create(ctx, "Grace", "Hopper", "grace@example.com")
	require.NoError(t, err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	body, err := json.Marshal(users[0])
	require.NoError(t, err)
	assert.Equal(t, `{"userId":1,"firstName":"Grace","lastName":"Hopper","email":"grace@example.com","nickname":null}`, string(body))
}

func TestUserRepository_CreateNullViolatesConstraint(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "Ada", nil, "ada@example.com")
	require.Error(t, err)
	assert.True(t, repositories.IsConstraint(err))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 0)
}

func TestUserRepository_MissingTable(t *testing.T) {
	repo, session := newTestRepository(t)

	_, err := session.DB.Exec(`DROP TABLE users`)
	require.NoError(t, err)

	_, err = repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table")
}

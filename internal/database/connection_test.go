package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/observability"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/repositories"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

// newTestConnector returns a connector for a SQLite file in a temporary directory
func newTestConnector(t *testing.T, metrics *observability.Metrics) *SQLConnector {
	t.Helper()

	connector, err := NewConnector(&ConnectionConfig{
		Driver: "sqlite3",
		Name:   filepath.Join(t.TempDir(), "users.db"),
		Logger: testLogger(),
	}, metrics)
	require.NoError(t, err)
	return connector
}

func TestNewConnector_UnsupportedDriver(t *testing.T) {
	_, err := NewConnector(&ConnectionConfig{Driver: "db2"}, nil)
	assert.Error(t, err)
}

func TestSQLConnector_Open(t *testing.T) {
	connector := newTestConnector(t, nil)

	session, err := connector.Open(context.Background())
	require.NoError(t, err)

	var one int
	require.NoError(t, session.DB.Get(&one, "SELECT 1"))
	assert.Equal(t, 1, one)
	assert.Equal(t, 1, session.DB.Stats().MaxOpenConnections)

	require.NoError(t, session.Close())
	assert.Nil(t, session.DB)
	assert.NoError(t, session.Close(), "closing twice should be harmless")
}

func TestSQLConnector_OpenEachCallIsNewSession(t *testing.T) {
	connector := newTestConnector(t, nil)
	ctx := context.Background()

	first, err := connector.Open(ctx)
	require.NoError(t, err)
	defer first.Close()

	second, err := connector.Open(ctx)
	require.NoError(t, err)
	defer second.Close()

	assert.NotSame(t, first.DB, second.DB)
}

func TestSQLConnector_OpenFailure(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	connector, err := NewConnector(&ConnectionConfig{
		Driver: "sqlite3",
		Name:   filepath.Join(t.TempDir(), "missing", "dir", "users.db"),
		Logger: testLogger(),
	}, metrics)
	require.NoError(t, err)

	session, err := connector.Open(context.Background())
	assert.Nil(t, session)
	require.Error(t, err)
	assert.True(t, repositories.IsConnection(err))

	total := testutil.CollectAndCount(metrics.DbErrorsTotal)
	assert.Equal(t, 1, total)
}

func TestSession_Builder(t *testing.T) {
	session := NewSession(nil, PostgresDialect{}, nil)

	query, _, err := session.Builder().Select("*").From("users").Where("1 = ?", 1).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE 1 = $1", query)

	var nilSession *Session
	assert.NoError(t, nilSession.Close())
}

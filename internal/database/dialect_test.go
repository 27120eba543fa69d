package database

import (
	"net/url"
	"strings"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"sqlserver", DialectSQLServer},
		{"MSSQL", DialectSQLServer},
		{"azuresql", DialectSQLServer},
		{"postgres", DialectPostgres},
		{"pgx", DialectPostgres},
		{" sqlite ", DialectSQLite},
		{"sqlite3", DialectSQLite},
	}

	for _, tt := range tests {
		dialect, err := DialectFor(tt.driver)
		require.NoError(t, err, tt.driver)
		assert.Equal(t, tt.want, dialect.Name(), tt.driver)
	}

	_, err := DialectFor("oracle")
	assert.EqualError(t, err, "unsupported database driver: oracle")
}

func TestSQLServerDialect_DSN(t *testing.T) {
	cfg := &ConnectionConfig{
		Server:                 "users.database.windows.net",
		Port:                   1433,
		Name:                   "usersdb",
		Username:               "app",
		Password:               "p@ss;word",
		Encrypt:                true,
		TrustServerCertificate: true,
	}

	dsn := SQLServerDialect{}.DSN(cfg)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "users.database.windows.net:1433", u.Host)
	assert.Equal(t, "app", u.User.Username())
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss;word", password)

	query := u.Query()
	assert.Equal(t, "usersdb", query.Get("database"))
	assert.Equal(t, "true", query.Get("encrypt"))
	assert.Equal(t, "true", query.Get("TrustServerCertificate"))
	assert.Equal(t, "30", query.Get("connection timeout"))
	assert.Equal(t, "users-api", query.Get("app name"))
}

func TestSQLServerDialect_DSNWithoutPort(t *testing.T) {
	cfg := &ConnectionConfig{Server: "localhost", Name: "db", ConnectTimeout: 5 * time.Second}

	u, err := url.Parse(SQLServerDialect{}.DSN(cfg))
	require.NoError(t, err)
	assert.Equal(t, "localhost", u.Host)
	assert.Equal(t, "disable", u.Query().Get("encrypt"))
	assert.Equal(t, "5", u.Query().Get("connection timeout"))
}

func TestPostgresDialect_DSN(t *testing.T) {
	base := ConnectionConfig{Server: "db", Port: 5432, Name: "users", Username: "u", Password: "p"}

	tests := []struct {
		name    string
		encrypt bool
		trust   bool
		want    string
	}{
		{"plain", false, false, "disable"},
		{"relaxed", true, true, "require"},
		{"strict", true, false, "verify-full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Encrypt = tt.encrypt
			cfg.TrustServerCertificate = tt.trust

			u, err := url.Parse(PostgresDialect{}.DSN(&cfg))
			require.NoError(t, err)
			assert.Equal(t, "/users", u.Path)
			assert.Equal(t, tt.want, u.Query().Get("sslmode"))
			assert.Equal(t, "30", u.Query().Get("connect_timeout"))
		})
	}
}

func TestSQLiteDialect_DSN(t *testing.T) {
	dsn := SQLiteDialect{}.DSN(&ConnectionConfig{Name: "/tmp/users.db", ConnectTimeout: 2 * time.Second})
	assert.Equal(t, "/tmp/users.db?_foreign_keys=on&_busy_timeout=2000", dsn)
}

func TestDialect_InsertReturning(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{
			SQLServerDialect{},
			"SET NOCOUNT ON; INSERT INTO [users] ([firstName],[lastName],[email]) VALUES (@p1,@p2,@p3) ; SELECT CAST(SCOPE_IDENTITY() AS BIGINT) AS [userId]",
		},
		{
			PostgresDialect{},
			`INSERT INTO "users" ("firstName","lastName","email") VALUES ($1,$2,$3) RETURNING "userId"`,
		},
		{
			SQLiteDialect{},
			`INSERT INTO "users" ("firstName","lastName","email") VALUES (?,?,?) RETURNING "userId"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			d := tt.dialect
			insert := sq.StatementBuilder.PlaceholderFormat(d.PlaceholderFormat()).
				Insert(d.QuoteIdent("users")).
				Columns(d.QuoteIdent("firstName"), d.QuoteIdent("lastName"), d.QuoteIdent("email")).
				Values("Ada", "Lovelace", "ada@example.com")

			query, args, err := d.InsertReturning(insert, "userId").ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.want, query)
			assert.Equal(t, []interface{}{"Ada", "Lovelace", "ada@example.com"}, args)
		})
	}
}

func TestDialect_QuoteIdent(t *testing.T) {
	assert.Equal(t, "[odd]]name]", SQLServerDialect{}.QuoteIdent("odd]name"))
	assert.Equal(t, `"odd""name"`, PostgresDialect{}.QuoteIdent(`odd"name`))
	assert.True(t, strings.HasPrefix(SQLiteDialect{}.QuoteIdent("users"), `"`))
}

package database

import (
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	sqlservermigrate "github.com/golang-migrate/migrate/v4/database/sqlserver"

	// database/sql drivers
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

// Supported dialect names
const (
	DialectSQLServer = "sqlserver"
	DialectPostgres  = "postgres"
	DialectSQLite    = "sqlite3"
)

// Dialect abstracts the differences between the supported databases:
// driver registration name, DSN layout, placeholder style, identifier
// quoting, and how an insert hands back its generated identity.
type Dialect interface {
	// Name is the dialect name; also the migrations subdirectory
	Name() string

	// DriverName is the database/sql driver the dialect opens connections with
	DriverName() string

	// DSN builds the connection string from the connection configuration
	DSN(cfg *ConnectionConfig) string

	// PlaceholderFormat is handed to squirrel when building statements
	PlaceholderFormat() sq.PlaceholderFormat

	// QuoteIdent quotes a table or column name
	QuoteIdent(name string) string

	// InsertReturning extends an insert so that executing it returns a
	// single row holding idColumn, in one round trip
	InsertReturning(b sq.InsertBuilder, idColumn string) sq.InsertBuilder

	// MigrationDriver wraps an open *sql.DB for golang-migrate
	MigrationDriver(db *sql.DB) (migratedb.Driver, error)
}

// DialectFor resolves a configured driver name to its dialect
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlserver", "mssql", "azuresql":
		return SQLServerDialect{}, nil
	case "postgres", "postgresql", "pgx":
		return PostgresDialect{}, nil
	case "sqlite", "sqlite3":
		return SQLiteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// SQLServerDialect targets SQL Server and Azure SQL Database
type SQLServerDialect struct{}

func (SQLServerDialect) Name() string       { return DialectSQLServer }
func (SQLServerDialect) DriverName() string { return "sqlserver" }

// DSN builds a sqlserver:// URL. Encryption is on unless disabled, and the
// server certificate is trusted without validation when configured to.
func (SQLServerDialect) DSN(cfg *ConnectionConfig) string {
	query := url.Values{}
	query.Add("database", cfg.Name)
	if cfg.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "disable")
	}
	query.Add("TrustServerCertificate", strconv.FormatBool(cfg.TrustServerCertificate))
	query.Add("connection timeout", strconv.Itoa(timeoutSeconds(cfg)))
	query.Add("app name", cfg.appName())

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     hostPort(cfg.Server, cfg.Port),
		RawQuery: query.Encode(),
	}
	return u.String()
}

func (SQLServerDialect) PlaceholderFormat() sq.PlaceholderFormat { return sq.AtP }

func (SQLServerDialect) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// InsertReturning suppresses the row count message so the identity select is
// the first result set of the batch.
func (d SQLServerDialect) InsertReturning(b sq.InsertBuilder, idColumn string) sq.InsertBuilder {
	return b.
		Prefix("SET NOCOUNT ON;").
		Suffix(fmt.Sprintf("; SELECT CAST(SCOPE_IDENTITY() AS BIGINT) AS %s", d.QuoteIdent(idColumn)))
}

func (SQLServerDialect) MigrationDriver(db *sql.DB) (migratedb.Driver, error) {
	return sqlservermigrate.WithInstance(db, &sqlservermigrate.Config{})
}

// PostgresDialect targets PostgreSQL through pgx's database/sql adapter
type PostgresDialect struct{}

func (PostgresDialect) Name() string       { return DialectPostgres }
func (PostgresDialect) DriverName() string { return "pgx" }

func (PostgresDialect) DSN(cfg *ConnectionConfig) string {
	query := url.Values{}
	switch {
	case !cfg.Encrypt:
		query.Add("sslmode", "disable")
	case cfg.TrustServerCertificate:
		query.Add("sslmode", "require")
	default:
		query.Add("sslmode", "verify-full")
	}
	query.Add("connect_timeout", strconv.Itoa(timeoutSeconds(cfg)))
	query.Add("application_name", cfg.appName())

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     hostPort(cfg.Server, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func (PostgresDialect) PlaceholderFormat() sq.PlaceholderFormat { return sq.Dollar }

func (PostgresDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d PostgresDialect) InsertReturning(b sq.InsertBuilder, idColumn string) sq.InsertBuilder {
	return b.Suffix("RETURNING " + d.QuoteIdent(idColumn))
}

func (PostgresDialect) MigrationDriver(db *sql.DB) (migratedb.Driver, error) {
	return pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
}

// SQLiteDialect targets a local SQLite file; Name in the connection
// configuration is the file path.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string       { return DialectSQLite }
func (SQLiteDialect) DriverName() string { return "sqlite3" }

func (SQLiteDialect) DSN(cfg *ConnectionConfig) string {
	options := []string{
		"_foreign_keys=on",
		fmt.Sprintf("_busy_timeout=%d", timeoutSeconds(cfg)*1000),
	}
	return fmt.Sprintf("%s?%s", cfg.Name, strings.Join(options, "&"))
}

func (SQLiteDialect) PlaceholderFormat() sq.PlaceholderFormat { return sq.Question }

func (SQLiteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d SQLiteDialect) InsertReturning(b sq.InsertBuilder, idColumn string) sq.InsertBuilder {
	return b.Suffix("RETURNING " + d.QuoteIdent(idColumn))
}

func (SQLiteDialect) MigrationDriver(db *sql.DB) (migratedb.Driver, error) {
	return sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
}

func hostPort(server string, port int) string {
	if port <= 0 {
		return server
	}
	return net.JoinHostPort(server, strconv.Itoa(port))
}

func timeoutSeconds(cfg *ConnectionConfig) int {
	secs := int(cfg.ConnectTimeout.Seconds())
	if secs <= 0 {
		return int(DefaultConnectTimeout.Seconds())
	}
	return secs
}

package database

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/observability"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/repositories"
)

// DefaultConnectTimeout bounds connection establishment
const DefaultConnectTimeout = 30 * time.Second

// ConnectionConfig holds database connection configuration
type ConnectionConfig struct {
	Driver                 string
	Server                 string
	Port                   int
	Name                   string
	Username               string
	Password               string
	ConnectTimeout         time.Duration
	Encrypt                bool
	TrustServerCertificate bool
	AppName                string
	Logger                 *logrus.Logger
}

func (c *ConnectionConfig) appName() string {
	if c.AppName == "" {
		return "users-api"
	}
	return c.AppName
}

// Connector opens database sessions. Every call returns a new, exclusively
// owned session that the caller must Close.
type Connector interface {
	Open(ctx context.Context) (*Session, error)
}

// Session is a single database connection scoped to one invocation
type Session struct {
	DB      *sqlx.DB
	Dialect Dialect

	logger *logrus.Logger
}

// NewSession wraps an already open connection. It is used by tests and by
// callers that manage the *sqlx.DB themselves.
func NewSession(db *sqlx.DB, dialect Dialect, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	return &Session{DB: db, Dialect: dialect, logger: logger}
}

// Builder returns a squirrel statement builder using the session's placeholders
func (s *Session) Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(s.Dialect.PlaceholderFormat())
}

// Close releases the connection. It is safe to call more than once.
func (s *Session) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}

	err := s.DB.Close()
	s.DB = nil
	if err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	s.logger.Debug("Connection to DB closed")
	return nil
}

// SQLConnector opens sessions through database/sql using a dialect's driver
type SQLConnector struct {
	config  *ConnectionConfig
	dialect Dialect
	metrics *observability.Metrics
	logger  *logrus.Logger
}

// NewConnector creates a connector for the configured driver
func NewConnector(config *ConnectionConfig, metrics *observability.Metrics) (*SQLConnector, error) {
	dialect, err := DialectFor(config.Driver)
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &SQLConnector{
		config:  config,
		dialect: dialect,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Dialect returns the connector's dialect
func (c *SQLConnector) Dialect() Dialect {
	return c.dialect
}

// Open establishes and verifies a new connection. Only establishment is
// bounded by the connect timeout; statements run on the caller's context.
func (c *SQLConnector) Open(ctx context.Context) (*Session, error) {
	timeout := c.config.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	c.logger.WithFields(logrus.Fields{
		"driver":   c.dialect.DriverName(),
		"server":   c.config.Server,
		"database": c.config.Name,
	}).Debug("Attempting DB connection")

	var db *sqlx.DB
	err := c.metrics.ObserveDB("connect", func() error {
		connectCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var err error
		db, err = sqlx.ConnectContext(connectCtx, c.dialect.DriverName(), c.dialect.DSN(c.config))
		return err
	})
	if err != nil {
		return nil, repositories.ConnectionError(err)
	}

	// one session, one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	c.logger.Debug("Connection to DB successful")
	return NewSession(db, c.dialect, c.logger), nil
}

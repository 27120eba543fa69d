package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/database"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/observability"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/repositories"
)

// BaseRepository provides the query plumbing shared by the SQL repositories
type BaseRepository struct {
	session *database.Session
	table   string
	metrics *observability.Metrics
	logger  *logrus.Logger
}

// NewBaseRepository creates a new base repository over an open session
func NewBaseRepository(session *database.Session, table string, metrics *observability.Metrics, logger *logrus.Logger) *BaseRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return &BaseRepository{
		session: session,
		table:   table,
		metrics: metrics,
		logger:  logger,
	}
}

// quote quotes an identifier for the session's dialect
func (r *BaseRepository) quote(name string) string {
	return r.session.Dialect.QuoteIdent(name)
}

// logQuery logs a query with its execution time
func (r *BaseRepository) logQuery(operation string, query string, args []interface{}, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     r.table,
		"query":     query,
		"args":      len(args),
		"duration":  duration,
	}

	if err != nil {
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("Query failed")
	} else {
		r.logger.WithFields(fields).Debug("Query executed")
	}
}

// executeQuery runs a query and returns its rows
func (r *BaseRepository) executeQuery(ctx context.Context, operation, query string, args ...interface{}) (*sqlx.Rows, error) {
	var rows *sqlx.Rows

	start := time.Now()
	err := r.metrics.ObserveDB(operation, func() error {
		var err error
		rows, err = r.session.DB.QueryxContext(ctx, query, args...)
		return err
	})
	r.logQuery(operation, query, args, time.Since(start), err)

	if err != nil {
		return nil, r.wrapError(operation, err)
	}
	return rows, nil
}

// executeScalar runs a query expected to return one row and scans it into dest
func (r *BaseRepository) executeScalar(ctx context.Context, operation, query string, dest interface{}, args ...interface{}) error {
	start := time.Now()
	err := r.metrics.ObserveDB(operation, func() error {
		return r.session.DB.QueryRowxContext(ctx, query, args...).Scan(dest)
	})
	r.logQuery(operation, query, args, time.Since(start), err)

	if err != nil {
		if err == sql.ErrNoRows {
			return repositories.NewRepositoryError(operation, r.table, "", repositories.ErrNotFound)
		}
		return r.wrapError(operation, err)
	}
	return nil
}

// wrapError classifies a driver error into a repository error
func (r *BaseRepository) wrapError(operation string, err error) error {
	switch observability.ClassifyDBError(err) {
	case "not_null_violation", "constraint":
		return repositories.ConstraintError(r.table, operation, err)
	default:
		return repositories.NewRepositoryError(operation, r.table, "", err)
	}
}

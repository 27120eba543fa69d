package sqlstore

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/database"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/models"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/observability"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/repositories"
)

// UserRepository implements repositories.UserRepository over a session
type UserRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(session *database.Session, metrics *observability.Metrics, logger *logrus.Logger) repositories.UserRepository {
	return &UserRepository{
		BaseRepository: NewBaseRepository(session, database.UsersTable, metrics, logger),
	}
}

// List returns all rows of the users table. Columns are whatever the table
// has, in table order; an empty table yields an empty, non-nil slice.
func (r *UserRepository) List(ctx context.Context) ([]models.UserRecord, error) {
	query, args, err := r.session.Builder().
		Select("*").
		From(r.quote(r.table)).
		ToSql()
	if err != nil {
		return nil, repositories.NewRepositoryError("list", r.table, "", err)
	}

	rows, err := r.executeQuery(ctx, "list", query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, repositories.NewRepositoryError("list", r.table, "", err)
	}

	users := make([]models.UserRecord, 0)
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, repositories.NewRepositoryError("list", r.table, "", err)
		}

		record, err := models.NewUserRecord(columns, values)
		if err != nil {
			return nil, repositories.NewRepositoryError("list", r.table, "", err)
		}
		users = append(users, record)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list", r.table, "", err)
	}

	return users, nil
}

// Create inserts a user and returns the identity the database generated for
// it, in a single round trip
func (r *UserRepository) Create(ctx context.Context, firstName, lastName, email interface{}) (int64, error) {
	insert := r.session.Builder().
		Insert(r.quote(r.table)).
		Columns(r.quote(models.FieldFirstName), r.quote(models.FieldLastName), r.quote(models.FieldEmail)).
		Values(firstName, lastName, email)

	query, args, err := r.session.Dialect.InsertReturning(insert, models.FieldUserID).ToSql()
	if err != nil {
		return 0, repositories.NewRepositoryError("create", r.table, "", err)
	}

	var id int64
	if err := r.executeScalar(ctx, "create", query, &id, args...); err != nil {
		return 0, err
	}

	r.logger.WithField("user_id", id).Debug("User created")
	return id, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
	"github.com/yigit/resultsportal/internal/pkg/dberrors"
	"github.com/yigit/resultsportal/internal/pkg/helpers"
	"github.com/yigit/resultsportal/internal/pkg/logger"
)

const usersEmailConstraint = "users_email_lower_key"

var userColumns = []string{
	"id", "name", "email", "password", "role", "admission_year", "program",
	"is_active", "last_login_at", "password_changed_at", "created_at", "updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// scanUser scans one users row in userColumns order
func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u       models.User
		year    sql.NullInt32
		program sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &year, &program,
		&u.IsActive, &u.LastLoginAt, &u.PasswordChangedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.AdmissionYear = helpers.IntPtr(year)
	u.Program = helpers.StringPtr(program)
	return &u, nil
}

// Create inserts a user and fills in its generated fields
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)

	query, args, err := r.sb.Insert("users").
		Columns("name", "email", "password", "role", "admission_year", "program", "is_active").
		Values(user.Name, user.Email, user.Password, user.Role,
			helpers.GetNullInt32(user.AdmissionYear), helpers.GetNullString(user.Program), user.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, usersEmailConstraint) {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error creating user")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	query, args, err := r.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email, ignoring case
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(email) = LOWER(?)", strings.TrimSpace(email)))
}

// EmailExists checks whether another user already uses email
func (r *UserRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	where := squirrel.And{squirrel.Expr("LOWER(email) = LOWER(?)", strings.TrimSpace(email))}
	if excludeID > 0 {
		where = append(where, squirrel.NotEq{"id": excludeID})
	}

	sub, args, err := r.sb.Select("1").From("users").Where(where).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build email exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

// UpdateProfile stores the editable profile fields of user
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)

	query, args, err := r.sb.Update("users").
		Set("name", user.Name).
		Set("email", user.Email).
		Set("admission_year", helpers.GetNullInt32(user.AdmissionYear)).
		Set("program", helpers.GetNullString(user.Program)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": user.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update profile query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&user.UpdatedAt); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.ErrUserNotFound
		case dberrors.IsDuplicateConstraintError(err, usersEmailConstraint):
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Int64("userID", user.ID).Msg("Error updating user profile")
		return fmt.Errorf("error updating user profile: %w", err)
	}
	return nil
}

// UpdatePassword stores a new hash and the instant it changed
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hash string, changedAt time.Time) error {
	return r.exec(ctx, "update password", r.sb.Update("users").
		Set("password", hash).
		Set("password_changed_at", changedAt).
		Set("updated_at", changedAt).
		Where(squirrel.Eq{"id": userID}))
}

// UpdateLastLogin updates the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return r.exec(ctx, "update last login", r.sb.Update("users").
		Set("last_login_at", at).
		Where(squirrel.Eq{"id": userID}))
}

// Delete removes a user. Sessions go with it through the foreign key.
func (r *UserRepository) Delete(ctx context.Context, userID int64) error {
	return r.exec(ctx, "delete user", r.sb.Delete("users").Where(squirrel.Eq{"id": userID}))
}

func (r *UserRepository) exec(ctx context.Context, op string, b squirrel.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error executing user query")
		return fmt.Errorf("error on %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// List returns users ordered by id. A zero limit returns every user.
func (r *UserRepository) List(ctx context.Context, offset, limit uint64) ([]*models.User, error) {
	q := r.sb.Select(userColumns...).From("users").OrderBy("id ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// Count returns the number of users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	query, args, err := r.sb.Select("COUNT(*)").From("users").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count users query: %w", err)
	}

	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return n, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
	"github.com/yigit/resultsportal/internal/pkg/dberrors"
	"github.com/yigit/resultsportal/internal/pkg/logger"
)

var sessionColumns = []string{"id", "user_id", "token_hash", "device", "issued_at", "last_used_at", "expires_at"}

// SessionRepository handles signed-in device rows
type SessionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanSession(row pgx.Row) (*models.Session, error) {
	var s models.Session
	if err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.Device, &s.IssuedAt, &s.LastUsedAt, &s.ExpiresAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create stores a new session. Sessions are never merged per device.
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	query, args, err := r.sb.Insert("sessions").
		Columns(sessionColumns...).
		Values(s.ID, s.UserID, s.TokenHash, s.Device, s.IssuedAt, s.LastUsedAt, s.ExpiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create session query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "sessions_token_hash_key") {
			// identical signed token, only possible with a broken clock and jti source
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Int64("userID", s.UserID).Msg("Error creating session")
		return fmt.Errorf("error creating session: %w", err)
	}
	return nil
}

// GetByTokenHash retrieves the session a token digest belongs to
func (r *SessionRepository) GetByTokenHash(ctx context.Context, hash string) (*models.Session, error) {
	query, args, err := r.sb.Select(sessionColumns...).
		From("sessions").
		Where(squirrel.Eq{"token_hash": hash}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	s, err := scanSession(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("error retrieving session: %w", err)
	}
	return s, nil
}

// Touch refreshes last_used_at
func (r *SessionRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.exec(ctx, "touch session", r.sb.Update("sessions").
		Set("last_used_at", at).
		Where(squirrel.Eq{"id": id.String()}), true)
}

// Delete removes one session by id
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, "delete session", r.sb.Delete("sessions").Where(squirrel.Eq{"id": id.String()}), true)
}

// DeleteForUser removes a session only when it belongs to userID
func (r *SessionRepository) DeleteForUser(ctx context.Context, userID int64, id uuid.UUID) error {
	return r.exec(ctx, "delete user session", r.sb.Delete("sessions").
		Where(squirrel.Eq{"id": id.String(), "user_id": userID}), true)
}

// DeleteAllForUser removes every session of userID
func (r *SessionRepository) DeleteAllForUser(ctx context.Context, userID int64) error {
	return r.exec(ctx, "delete all sessions", r.sb.Delete("sessions").
		Where(squirrel.Eq{"user_id": userID}), false)
}

// ListForUser returns the sessions of userID, most recently used first
func (r *SessionRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Session, error) {
	query, args, err := r.sb.Select(sessionColumns...).
		From("sessions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("last_used_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list sessions query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) exec(ctx context.Context, op string, b squirrel.Sqlizer, mustAffect bool) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error executing session query")
		return fmt.Errorf("error on %s: %w", op, err)
	}
	if mustAffect && tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

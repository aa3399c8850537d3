package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/app/models/dto"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
	"github.com/yigit/resultsportal/internal/pkg/auth"
	"github.com/yigit/resultsportal/internal/pkg/helpers"
	"github.com/yigit/resultsportal/internal/pkg/validation"
)

const maxDeviceLength = 512

// AuthConfig holds the session policy
type AuthConfig struct {
	SessionTTL             time.Duration
	AllowAdminRegistration bool
	Clock                  helpers.Clock
}

// AuthResult is a freshly issued session
type AuthResult struct {
	User    *models.User
	Token   string
	Session *models.Session
}

// AuthService handles registration, login and session validation
type AuthService struct {
	users      UserStore
	sessions   SessionStore
	jwtService *auth.JWTService
	config     AuthConfig
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserStore,
	sessions SessionStore,
	jwtService *auth.JWTService,
	config AuthConfig,
	logger zerolog.Logger,
) *AuthService {
	if config.Clock == nil {
		config.Clock = helpers.SystemClock
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		jwtService: jwtService,
		config:     config,
		logger:     logger,
	}
}

// Register validates the per-role registration, stores the user and signs it in
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest, device string) (*AuthResult, error) {
	reg := req.Variant()
	if err := validation.Struct(reg); err != nil {
		return nil, err
	}

	base := reg.Base()
	if base.Role == models.RoleAdmin && !s.config.AllowAdminRegistration {
		return nil, apperrors.NewForbiddenError("Admin accounts cannot be self-registered")
	}

	exists, err := s.users.EmailExists(ctx, base.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(base.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Password: hash, IsActive: true}
	reg.ApplyTo(user)

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User registered")

	return s.issueSession(ctx, user, device)
}

// Login checks credentials and opens a new session for device.
// Repeated logins from the same device accumulate sessions.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest, device string) (*AuthResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Warn().Int64("userID", user.ID).Msg("Login with wrong password")
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid credentials")
	}
	if !user.IsActive {
		return nil, apperrors.NewCustomError(apperrors.ErrAccountDisabled, "Account is disabled")
	}

	result, err := s.issueSession(ctx, user, device)
	if err != nil {
		return nil, err
	}

	now := result.Session.IssuedAt
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	} else {
		user.LastLoginAt = &now
	}
	return result, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User, device string) (*AuthResult, error) {
	token, claims, err := s.jwtService.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	now := s.config.Clock()
	session := &models.Session{
		ID:         uuid.New(),
		UserID:     user.ID,
		TokenHash:  auth.HashToken(token),
		Device:     deviceLabel(device),
		IssuedAt:   now,
		LastUsedAt: now,
		ExpiresAt:  claims.ExpiresAt.Time,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &AuthResult{User: user, Token: token, Session: session}, nil
}

func deviceLabel(device string) string {
	device = strings.TrimSpace(device)
	if device == "" {
		return models.UnknownDevice
	}
	if len(device) > maxDeviceLength {
		n := maxDeviceLength
		for n > 0 && !utf8.RuneStart(device[n]) {
			n--
		}
		device = device[:n]
	}
	return strings.ToValidUTF8(device, "")
}

// ValidateSession resolves a presented token to its user and session.
// A session is valid while it is stored, used within the TTL and newer than
// the last password change. Success slides the TTL window forward.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*models.User, *models.Session, error) {
	if token == "" {
		return nil, nil, apperrors.NewUnauthorizedError("Not authorized, no token")
	}

	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			_ = s.Logout(ctx, token)
			return nil, nil, apperrors.NewCustomError(apperrors.ErrTokenExpired, "Not authorized, token expired")
		}
		return nil, nil, apperrors.NewCustomError(apperrors.ErrTokenInvalid, "Not authorized, token failed")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, nil, apperrors.NewUnauthorizedError("Not authorized, user not found")
		}
		return nil, nil, err
	}

	session, err := s.sessions.GetByTokenHash(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, nil, apperrors.NewCustomError(apperrors.ErrTokenRevoked, "Not authorized, session revoked")
		}
		return nil, nil, err
	}
	if session.UserID != user.ID {
		return nil, nil, apperrors.NewCustomError(apperrors.ErrTokenRevoked, "Not authorized, session revoked")
	}

	now := s.config.Clock()
	if session.IdleExpired(now, s.config.SessionTTL) {
		s.dropSession(ctx, session, "idle")
		return nil, nil, apperrors.NewCustomError(apperrors.ErrTokenExpired, "Session expired, please log in again")
	}
	if session.IssuedBefore(user.PasswordChangedAt) {
		s.dropSession(ctx, session, "password changed")
		return nil, nil, apperrors.NewCustomError(apperrors.ErrTokenRevoked, "Password changed, please log in again")
	}
	if !user.IsActive {
		return nil, nil, apperrors.NewUnauthorizedError("Not authorized, account disabled")
	}

	// a failed refresh only shortens the sliding window
	if err := s.sessions.Touch(ctx, session.ID, now); err != nil {
		s.logger.Warn().Err(err).Str("sessionID", session.ID.String()).Msg("Failed to refresh session")
	} else {
		session.LastUsedAt = now
	}
	return user, session, nil
}

func (s *AuthService) dropSession(ctx context.Context, session *models.Session, reason string) {
	if err := s.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		s.logger.Warn().Err(err).Str("sessionID", session.ID.String()).Msg("Failed to prune session")
		return
	}
	s.logger.Debug().Str("sessionID", session.ID.String()).Str("reason", reason).Msg("Session pruned")
}

// Logout revokes the session of token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	session, err := s.sessions.GetByTokenHash(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil
		}
		return err
	}
	if err := s.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return err
	}
	return nil
}

// LogoutAll revokes every session of the user
func (s *AuthService) LogoutAll(ctx context.Context, userID int64) error {
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", userID).Msg("All sessions revoked")
	return nil
}

// ChangePassword replaces the password. Every session issued before now
// stops validating, the caller's included.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req dto.ChangePasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash, s.config.Clock()); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", userID).Msg("Password changed")
	return nil
}

// ListDevices returns every session of the user except current
func (s *AuthService) ListDevices(ctx context.Context, userID int64, current uuid.UUID) ([]*models.Session, error) {
	sessions, err := s.sessions.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	others := make([]*models.Session, 0, len(sessions))
	for _, sess := range sessions {
		if sess.ID != current {
			others = append(others, sess)
		}
	}
	return others, nil
}

// RemoveDevice revokes one of the user's other sessions
func (s *AuthService) RemoveDevice(ctx context.Context, userID int64, current uuid.UUID, deviceID string) error {
	id, err := uuid.Parse(strings.TrimSpace(deviceID))
	if err != nil {
		return apperrors.ErrSessionNotFound
	}
	if id == current {
		return apperrors.ErrCurrentSession
	}
	return s.sessions.DeleteForUser(ctx, userID, id)
}

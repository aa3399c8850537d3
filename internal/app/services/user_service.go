package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/app/models/dto"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
	"github.com/yigit/resultsportal/internal/pkg/helpers"
	"github.com/yigit/resultsportal/internal/pkg/validation"
)

// UserService handles profile and account administration
type UserService struct {
	users    UserStore
	sessions SessionStore
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(users UserStore, sessions SessionStore, logger zerolog.Logger) *UserService {
	return &UserService{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// GetProfile returns the user with id
func (s *UserService) GetProfile(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile applies the provided fields. Admission year and program only
// apply to students.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, req dto.UpdateProfileRequest) (*models.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			exists, err := s.users.EmailExists(ctx, email, user.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if exists {
				return nil, apperrors.NewConflictError("Email already in use")
			}
			user.Email = email
		}
	}
	if user.Role == models.RoleStudent {
		if req.AdmissionYear != nil {
			user.AdmissionYear = req.AdmissionYear
		}
		if req.Program != nil {
			program := strings.TrimSpace(*req.Program)
			user.Program = &program
		}
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns all users, or one page of them when paginate is set
func (s *UserService) ListUsers(ctx context.Context, page, size int, paginate bool) ([]*models.User, *dto.PaginationInfo, error) {
	if !paginate {
		users, err := s.users.List(ctx, 0, 0)
		return users, nil, err
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, nil, err
	}
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	users, err := s.users.List(ctx, offset, limit)
	if err != nil {
		return nil, nil, err
	}
	info := helpers.NewPaginationInfo(total, page, size)
	return users, &info, nil
}

// DeleteUser removes an account and every session it holds
func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return apperrors.NewValidationError("Cannot delete your own account")
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}
	if err := s.sessions.DeleteAllForUser(ctx, targetID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		return err
	}
	s.logger.Info().Int64("actorID", actorID).Int64("userID", targetID).Msg("User deleted")
	return nil
}

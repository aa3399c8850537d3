package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
	"github.com/yigit/resultsportal/internal/pkg/auth"
)

// AdminStore is the part of the user repository seeding needs
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*appModels.User, error)
	Create(ctx context.Context, user *appModels.User) error
}

// AdminAccount is the configured bootstrap administrator
type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

// CreateDefaultAdmin creates the configured admin account if no user holds
// its email yet. An empty email or password disables seeding.
func CreateDefaultAdmin(ctx context.Context, users AdminStore, account AdminAccount, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	if email == "" || account.Password == "" {
		lgr.Debug().Msg("No seed admin configured, skipping")
		return nil
	}

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != appModels.RoleAdmin {
			lgr.Warn().Str("email", email).Str("role", string(existing.Role)).Msg("Seed admin email belongs to a non-admin user")
		}
		return nil
	case !errors.Is(err, apperrors.ErrResourceNotFound):
		return fmt.Errorf("failed to look up seed admin: %w", err)
	}

	hash, err := auth.HashPassword(account.Password)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	name := strings.TrimSpace(account.Name)
	if name == "" {
		name = "Administrator"
	}
	admin := &appModels.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     appModels.RoleAdmin,
		IsActive: true,
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil
		}
		return fmt.Errorf("failed to create seed admin: %w", err)
	}

	lgr.Info().Int64("userID", admin.ID).Str("email", email).Msg("Default admin created")
	return nil
}

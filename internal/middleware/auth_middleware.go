package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
)

// Context keys set by Authenticate
const (
	ContextKeyUser      = "user"
	ContextKeyUserID    = "userID"
	ContextKeyRole      = "roleType"
	ContextKeySessionID = "sessionID"
)

// SessionValidator resolves a presented token to its user and session
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*models.User, *models.Session, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	validator  SessionValidator
	cookieName string
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator SessionValidator, cookieName string, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator:  validator,
		cookieName: cookieName,
		logger:     logger,
	}
}

// TokenFromRequest returns the token in the named cookie or, failing that,
// in the Authorization header. Empty when neither is present.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}
	if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// Authenticate rejects requests without a valid session with 401 and
// otherwise attaches the user and session to the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, session, err := m.validator.ValidateSession(c.Request.Context(), TokenFromRequest(c, m.cookieName))
		if err != nil {
			m.logger.Debug().Err(err).Str("path", c.FullPath()).Msg("Authentication failed")
			HandleAPIError(c, err)
			return
		}

		c.Set(ContextKeyUser, user)
		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyRole, user.Role)
		c.Set(ContextKeySessionID, session.ID)
		c.Next()
	}
}

// Authorize allows only the given roles. It must run after Authenticate.
func (m *AuthMiddleware) Authorize(roles ...models.RoleType) gin.HandlerFunc {
	allowed := make(map[models.RoleType]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			HandleAPIError(c, apperrors.NewUnauthorizedError("Not authorized"))
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			m.logger.Warn().Int64("userID", user.ID).Str("role", string(user.Role)).Str("path", c.FullPath()).Msg("Role not permitted")
			HandleAPIError(c, apperrors.NewForbiddenError("User role "+string(user.Role)+" is not authorized to access this route"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user attached by Authenticate
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextKeyUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// CurrentSessionID returns the id of the session the request authenticated with
func CurrentSessionID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextKeySessionID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

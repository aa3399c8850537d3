// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/resultsportal/internal/app/models"
	"github.com/yigit/resultsportal/internal/app/models/dto"
	"github.com/yigit/resultsportal/internal/app/services"
	"github.com/yigit/resultsportal/internal/middleware"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
)

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Domain string
	Secure bool
}

// AuthController handles registration, login and signed-in devices
type AuthController struct {
	authService *services.AuthService
	cookie      CookieConfig
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, cookie CookieConfig, logger zerolog.Logger) *AuthController {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &AuthController{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

func (c *AuthController) setSessionCookie(ctx *gin.Context, token string) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(c.cookie.Name, token, int(c.cookie.MaxAge.Seconds()), "/", c.cookie.Domain, c.cookie.Secure, true)
}

func (c *AuthController) clearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(c.cookie.Name, "", -1, "/", c.cookie.Domain, c.cookie.Secure, true)
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates an account and signs it in. Students must supply admissionYear and program.
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.StructuredResponse{data=dto.UserResponse} "User registered"
// @Failure 400 {object} dto.ErrorResponse "Validation failed or user already exists"
// @Failure 403 {object} dto.ErrorResponse "Admin self-registration disabled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.authService.Register(ctx.Request.Context(), req, ctx.Request.UserAgent())
	if err != nil {
		c.logger.Warn().Err(err).Msg("Registration failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, result.Token)
	ctx.JSON(http.StatusCreated, dto.NewStructuredResponse(dto.NewUserResponse(result.User), "User registered successfully"))
}

// Login handles user login
// @Summary User login
// @Description Checks credentials and sets the httpOnly session cookie
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.StructuredResponse{data=dto.UserResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account disabled"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.authService.Login(ctx.Request.Context(), req, ctx.Request.UserAgent())
	if err != nil {
		c.logger.Warn().Err(err).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", result.User.ID).Msg("User logged in")
	c.setSessionCookie(ctx, result.Token)
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.NewUserResponse(result.User), "Login successful"))
}

// Logout revokes the presented session and clears the cookie
// @Summary Log out
// @Tags users
// @Produce json
// @Success 200 {object} dto.SuccessResponse "Logged out successfully"
// @Router /users/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	token := middleware.TokenFromRequest(ctx, c.cookie.Name)
	if err := c.authService.Logout(ctx.Request.Context(), token); err != nil {
		// the cookie is cleared regardless
		c.logger.Error().Err(err).Msg("Failed to revoke session on logout")
	}

	c.clearSessionCookie(ctx)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Logged out successfully"))
}

// ChangePassword handles password change. Every existing session, the
// caller's included, stops working.
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.SuccessResponse "Password changed"
// @Failure 400 {object} dto.ErrorResponse "Current password is incorrect"
// @Failure 401 {object} dto.ErrorResponse "Not authorized"
// @Router /users/change-password [put]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewUnauthorizedError("Not authorized"))
		return
	}

	var req dto.ChangePasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ChangePassword(ctx.Request.Context(), user.ID, req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.clearSessionCookie(ctx)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Password changed successfully. Please log in again."))
}

// GetDevices lists the caller's other signed-in devices
// @Summary List signed-in devices
// @Tags users
// @Produce json
// @Security CookieAuth
// @Success 200 {object} dto.StructuredResponse{data=dto.DevicesResponse}
// @Failure 401 {object} dto.ErrorResponse "Not authorized"
// @Router /users/devices [get]
func (c *AuthController) GetDevices(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewUnauthorizedError("Not authorized"))
		return
	}

	sessions, err := c.authService.ListDevices(ctx.Request.Context(), user.ID, middleware.CurrentSessionID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(toDevicesResponse(sessions), ""))
}

func toDevicesResponse(sessions []*models.Session) dto.DevicesResponse {
	devices := make([]dto.DeviceResponse, 0, len(sessions))
	for _, s := range sessions {
		devices = append(devices, dto.DeviceResponse{
			ID:       s.ID.String(),
			Device:   s.Device,
			LastUsed: s.LastUsedAt.UTC().Format(time.RFC3339),
		})
	}
	return dto.DevicesResponse{Devices: devices}
}

// RemoveDevice signs out one of the caller's other devices
// @Summary Remove a signed-in device
// @Tags users
// @Produce json
// @Security CookieAuth
// @Param deviceId path string true "Device ID"
// @Success 200 {object} dto.SuccessResponse "Device removed"
// @Failure 400 {object} dto.ErrorResponse "Cannot remove current device"
// @Failure 404 {object} dto.ErrorResponse "Device not found"
// @Router /users/devices/{deviceId} [delete]
func (c *AuthController) RemoveDevice(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewUnauthorizedError("Not authorized"))
		return
	}

	err := c.authService.RemoveDevice(ctx.Request.Context(), user.ID, middleware.CurrentSessionID(ctx), ctx.Param("deviceId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Device removed successfully"))
}

// RemoveAllDevices signs the caller out everywhere, this device included
// @Summary Sign out everywhere
// @Tags users
// @Produce json
// @Security CookieAuth
// @Success 200 {object} dto.SuccessResponse "All devices signed out"
// @Router /users/devices [delete]
func (c *AuthController) RemoveAllDevices(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewUnauthorizedError("Not authorized"))
		return
	}

	if err := c.authService.LogoutAll(ctx.Request.Context(), user.ID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.clearSessionCookie(ctx)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Signed out from all devices"))
}

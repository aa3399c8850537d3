package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/resultsportal/internal/app/models/dto"
	"github.com/yigit/resultsportal/internal/app/services"
	"github.com/yigit/resultsportal/internal/middleware"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
	"github.com/yigit/resultsportal/internal/pkg/helpers"
)

// UserController handles profile and user administration endpoints
type UserController struct {
	userService *services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService *services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// GetProfile returns the caller's profile
// @Summary Get current user profile
// @Tags users
// @Produce json
// @Security CookieAuth
// @Success 200 {object} dto.StructuredResponse{data=dto.UserResponse}
// @Failure 401 {object} dto.ErrorResponse "Not authorized"
// @Router /users/profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewUnauthorizedError("Not authorized"))
		return
	}

	profile, err := c.userService.GetProfile(ctx.Request.Context(), user.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.NewUserResponse(profile), ""))
}

// UpdateProfile updates the caller's profile
// @Summary Update current user profile
// @Description Role cannot be changed. admissionYear and program apply to students only.
// @Tags users
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} dto.StructuredResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed or email already in use"
// @Failure 401 {object} dto.ErrorResponse "Not authorized"
// @Router /users/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewUnauthorizedError("Not authorized"))
		return
	}

	var req dto.UpdateProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	updated, err := c.userService.UpdateProfile(ctx.Request.Context(), user.ID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.NewUserResponse(updated), "Profile updated successfully"))
}

// ListUsers returns every user, or one page when ?page= is given
// @Summary List users
// @Tags users
// @Produce json
// @Security CookieAuth
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.StructuredResponse{data=dto.UserListResponse}
// @Failure 401 {object} dto.ErrorResponse "Not authorized"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	page, size, paginate := helpers.ParsePaginationParams(ctx)

	users, pagination, err := c.userService.ListUsers(ctx.Request.Context(), page, size, paginate)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.UserListResponse{
		Users:      dto.NewUserResponses(users),
		Pagination: pagination,
	}, ""))
}

// DeleteUser removes a user and revokes its sessions
// @Summary Delete a user
// @Tags users
// @Produce json
// @Security CookieAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.SuccessResponse "User deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID or own account"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	actor, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewUnauthorizedError("Not authorized"))
		return
	}

	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("Invalid user ID"))
		return
	}

	if err := c.userService.DeleteUser(ctx.Request.Context(), actor.ID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("actorID", actor.ID).Int64("userID", id).Msg("User deleted")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("User deleted successfully"))
}

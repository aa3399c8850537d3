package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/resultsportal/internal/app/models/dto"
	"github.com/yigit/resultsportal/internal/pkg/apperrors"
	"github.com/yigit/resultsportal/internal/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Checked in order, first match wins
var errorMappings = []errorMapping{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrConflict, http.StatusBadRequest, dto.ErrorCodeConflict, "Resource already exists"},
	{apperrors.ErrInvalidCredentials, http.StatusBadRequest, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Not authorized"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeForbidden, "Account is disabled"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrAnalysisUnavailable, http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "Analysis service unavailable"},
	{apperrors.ErrStorageUnavailable, http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "File storage unavailable"},
}

// HandleAPIError maps err onto a status code and the standard error body and
// aborts the request. Unknown errors become a generic 500.
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, apperrors.PublicMessage(err, m.message))
		if details := apperrors.DetailsOf(err); len(details) > 0 {
			detail = detail.WithDetails(details)
		}
		if m.status < http.StatusInternalServerError {
			detail = detail.WithSeverity(dto.ErrorSeverityWarning)
		} else {
			logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Upstream failure")
		}
		c.AbortWithStatusJSON(m.status, dto.NewErrorResponse(detail))
		return
	}

	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("requestID", c.GetString(ContextKeyRequestID)).
		Msg("Unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
}

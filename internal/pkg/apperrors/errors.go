package apperrors

import "errors"

// Resource errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
)

// Authentication errors
var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// Authorization errors
var (
	ErrPermissionDenied = errors.New("permission denied")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
)

// Upstream errors
var (
	ErrStorageUnavailable  = errors.New("object storage unavailable")
	ErrAnalysisUnavailable = errors.New("analysis service unavailable")
)

// Domain specific sentinels, all wrapping one of the taxonomy errors above
var (
	ErrUserNotFound       = NewCustomError(ErrResourceNotFound, "User not found")
	ErrEmailAlreadyExists = NewCustomError(ErrConflict, "User already exists")
	ErrSessionNotFound    = NewCustomError(ErrResourceNotFound, "Device not found")
	ErrFileNotFound       = NewCustomError(ErrResourceNotFound, "File not found")
	ErrAlreadyAnalyzed    = NewCustomError(ErrConflict, "File already uploaded and analyzed")
	ErrCurrentSession     = NewCustomError(ErrValidationFailed, "Cannot remove current device. Use logout instead.")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{Err: ErrResourceNotFound, Message: message}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewValidationError creates a validation error with a client facing message
func NewValidationError(message string) error {
	return &CustomError{Err: ErrValidationFailed, Message: message}
}

// NewUnauthorizedError creates an authentication error with a client facing message
func NewUnauthorizedError(message string) error {
	return &CustomError{Err: ErrUnauthorized, Message: message}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// CustomError represents application-specific errors with additional context.
// Message is safe to show to clients.
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
}

// WithDetails returns a copy of the error carrying details
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	cp := *e
	cp.Details = details
	return &cp
}

// PublicMessage extracts the client facing message of err, falling back to def
func PublicMessage(err error, def string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return def
}

// DetailsOf returns the details attached to the first CustomError in the chain
func DetailsOf(err error) map[string]interface{} {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Details
	}
	return nil
}

package dto

import "time"

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Logged out successfully"`
}

// NewSuccessResponse creates a message-only success response
func NewSuccessResponse(message string) SuccessResponse {
	return SuccessResponse{Success: true, Message: message}
}

// StructuredResponse provides a base structured API response with nested objects
type StructuredResponse struct {
	Success   bool         `json:"success" example:"true"`
	Message   string       `json:"message,omitempty" example:"Operation completed successfully"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewStructuredResponse creates a standard structured API response
func NewStructuredResponse(data interface{}, message string) StructuredResponse {
	return StructuredResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// PaginationInfo describes one page of a listing
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage" example:"1"`
	TotalPages  int   `json:"totalPages" example:"3"`
	PageSize    int   `json:"pageSize" example:"20"`
	TotalItems  int64 `json:"totalItems" example:"45"`
}

// PaginatedResponse represents a paginated list with metadata
type PaginatedResponse struct {
	Items      interface{}    `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

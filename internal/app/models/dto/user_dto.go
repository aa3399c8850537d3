package dto

import (
	"time"

	"github.com/yigit/resultsportal/internal/app/models"
)

// UserResponse is the public view of a user. It never carries the password hash.
type UserResponse struct {
	ID            int64      `json:"id" example:"1"`
	Name          string     `json:"name" example:"Asha Patel"`
	Email         string     `json:"email" example:"a@x.com"`
	Role          string     `json:"role" example:"student"`
	AdmissionYear *int       `json:"admissionYear,omitempty" example:"2021"`
	Program       *string    `json:"program,omitempty" example:"BCA"`
	IsActive      bool       `json:"isActive" example:"true"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// NewUserResponse converts a user model into its public view
func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          string(u.Role),
		AdmissionYear: u.AdmissionYear,
		Program:       u.Program,
		IsActive:      u.IsActive,
		LastLogin:     u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
	}
}

// NewUserResponses converts a slice of user models
func NewUserResponses(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// UpdateProfileRequest represents profile update data. Role is not editable.
type UpdateProfileRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,notblank,max=100"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	AdmissionYear *int    `json:"admissionYear,omitempty" validate:"omitempty,gte=1950,lte=2100"`
	Program       *string `json:"program,omitempty" validate:"omitempty,notblank,max=100"`
}

// UserListResponse represents a list of users with optional pagination
type UserListResponse struct {
	Users      []*UserResponse `json:"users"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

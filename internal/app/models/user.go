package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID                int64      `json:"id" db:"id" example:"1"`
	Name              string     `json:"name" db:"name" example:"Asha Patel"`
	Email             string     `json:"email" db:"email" example:"a@x.com"` // stored lower-cased
	Password          string     `json:"-" db:"password"`
	Role              RoleType   `json:"role" db:"role" example:"student"`
	AdmissionYear     *int       `json:"admissionYear,omitempty" db:"admission_year" example:"2021"`
	Program           *string    `json:"program,omitempty" db:"program" example:"BCA"`
	IsActive          bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt       *time.Time `json:"lastLogin,omitempty" db:"last_login_at"`
	PasswordChangedAt *time.Time `json:"-" db:"password_changed_at"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`
}

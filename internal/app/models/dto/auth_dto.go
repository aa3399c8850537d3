package dto

import (
	"strings"

	"github.com/yigit/resultsportal/internal/app/models"
)

// RegisterRequest is the wire form of a registration. It is narrowed to a
// per-role variant before validation, see Variant.
type RegisterRequest struct {
	Name          string          `json:"name" example:"Asha Patel"`
	Email         string          `json:"email" example:"a@x.com"`
	Password      string          `json:"password" example:"secret1"`
	Role          models.RoleType `json:"role" example:"student" enums:"admin,faculty,student"`
	AdmissionYear *int            `json:"admissionYear,omitempty" example:"2021"`
	Program       *string         `json:"program,omitempty" example:"BCA"`
}

// Registration is implemented by every per-role registration variant
type Registration interface {
	Base() BaseRegistration
	ApplyTo(u *models.User)
}

// BaseRegistration holds the fields every role must supply
type BaseRegistration struct {
	Name     string          `json:"name" validate:"required,notblank,max=100"`
	Email    string          `json:"email" validate:"required,email,max=255"`
	Password string          `json:"password" validate:"required,max=72"`
	Role     models.RoleType `json:"role" validate:"required,oneof=admin faculty student"`
}

// StudentRegistration additionally requires admission year and program
type StudentRegistration struct {
	BaseRegistration
	AdmissionYear int    `json:"admissionYear" validate:"required,gte=1950,lte=2100"`
	Program       string `json:"program" validate:"required,notblank,max=100"`
}

// StaffRegistration covers admin and faculty accounts
type StaffRegistration struct {
	BaseRegistration
}

func (b BaseRegistration) Base() BaseRegistration { return b }

func (b BaseRegistration) ApplyTo(u *models.User) {
	u.Name = strings.TrimSpace(b.Name)
	u.Email = strings.ToLower(strings.TrimSpace(b.Email))
	u.Role = b.Role
}

func (s StudentRegistration) ApplyTo(u *models.User) {
	s.BaseRegistration.ApplyTo(u)
	year := s.AdmissionYear
	program := strings.TrimSpace(s.Program)
	u.AdmissionYear = &year
	u.Program = &program
}

// Variant narrows the request to the registration shape of its role.
// Role-specific fields sent for other roles are dropped.
func (r RegisterRequest) Variant() Registration {
	base := BaseRegistration{
		Name:     r.Name,
		Email:    strings.TrimSpace(r.Email),
		Password: r.Password,
		Role:     models.RoleType(strings.ToLower(strings.TrimSpace(string(r.Role)))),
	}
	if base.Role != models.RoleStudent {
		return StaffRegistration{BaseRegistration: base}
	}

	s := StudentRegistration{BaseRegistration: base}
	if r.AdmissionYear != nil {
		s.AdmissionYear = *r.AdmissionYear
	}
	if r.Program != nil {
		s.Program = *r.Program
	}
	return s
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required" validate:"required,email" example:"a@x.com"`
	Password string `json:"password" binding:"required" validate:"required" example:"secret1"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required" validate:"required"`
	NewPassword     string `json:"newPassword" binding:"required" validate:"required,max=72"`
}

// DeviceResponse is one signed-in device other than the caller's
type DeviceResponse struct {
	ID       string `json:"id" example:"6f1c2f9e-0d2b-4e3c-9a51-1c1b2a3d4e5f"`
	Device   string `json:"device" example:"Mozilla/5.0 (X11; Linux x86_64)"`
	LastUsed string `json:"lastUsed" example:"2025-04-23T12:01:05Z"`
}

// DevicesResponse wraps the device listing
type DevicesResponse struct {
	Devices []DeviceResponse `json:"devices"`
}

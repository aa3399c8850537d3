package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin   RoleType = "admin"
	RoleFaculty RoleType = "faculty"
	RoleStudent RoleType = "student"
)

// Valid reports whether r is one of the known roles
func (r RoleType) Valid() bool {
	switch r {
	case RoleAdmin, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

// UnknownDevice labels sessions created without a User-Agent
const UnknownDevice = "unknown device"

package helpers

import "database/sql"

// GetNullString converts a string pointer to sql.NullString.
// Nil and blank values are stored as NULL.
func GetNullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// GetNullInt32 converts an int pointer to sql.NullInt32.
func GetNullInt32(i *int) sql.NullInt32 {
	if i == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*i), Valid: true}
}

// StringPtr returns nil for an invalid NullString
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// IntPtr returns nil for an invalid NullInt32
func IntPtr(ni sql.NullInt32) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int32)
	return &i
}

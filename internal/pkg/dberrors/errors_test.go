package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_key"})

	if !IsDuplicateConstraintError(err, "users_email_lower_key") {
		t.Fatal("expected match on constraint name")
	}
	if !IsDuplicateConstraintError(err, "") {
		t.Fatal("empty constraint name should match any unique violation")
	}
	if IsDuplicateConstraintError(err, "sessions_token_hash_key") {
		t.Fatal("different constraint must not match")
	}
	if IsDuplicateConstraintError(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation is not a duplicate")
	}
	if IsDuplicateConstraintError(errors.New("plain"), "") {
		t.Fatal("plain error is not a duplicate")
	}
}

func TestIsMongoDuplicateKey(t *testing.T) {
	if IsMongoDuplicateKey(nil) || IsMongoDuplicateKey(errors.New("E11000 but not a driver error")) {
		t.Fatal("non driver errors are not duplicate key errors")
	}
}

package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const pgUniqueViolation = "23505"

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint. An empty constraint name matches any unique violation.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraintName == "" || pgErr.ConstraintName == constraintName
}

// IsMongoDuplicateKey reports whether a MongoDB write failed on a unique index
func IsMongoDuplicateKey(err error) bool {
	return err != nil && mongo.IsDuplicateKeyError(err)
}

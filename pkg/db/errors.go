package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a Postgres unique violation on the
// named constraint (any constraint when name is empty).
func IsUniqueViolation(err error, constraint string) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == uniqueViolationCode && (constraint == "" || pgxErr.ConstraintName == constraint)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode && (constraint == "" || pqErr.Constraint == constraint)
	}
	return false
}

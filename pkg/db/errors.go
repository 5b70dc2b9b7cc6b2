package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// pgUniqueViolation is the SQLSTATE class for unique constraint failures.
const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique-constraint failure. When
// names are given, at least one must appear in the error; pass the Postgres
// constraint name plus the table.column form so sqlite-backed tests match too.
func IsUniqueViolation(err error, names ...string) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	unique := strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) && pgxErr.Code == pgUniqueViolation {
		unique = true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		unique = true
	}

	if !unique {
		return false
	}
	if len(names) == 0 {
		return true
	}
	for _, name := range names {
		if name != "" && strings.Contains(msg, name) {
			return true
		}
	}
	return false
}

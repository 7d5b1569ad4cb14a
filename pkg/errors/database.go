package errors

import (
	"errors"
	"strings"
)

// Sentinel errors for the constraint violations the SQLite conversation
// store (internal/store) can hit.
var (
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
	ErrForeignKeyViolation       = errors.New("foreign key violation")
)

// IsDatabaseUniqueViolation reports whether err came from a SQLite unique
// constraint violation, matching the modernc.org/sqlite driver's message
// text since that driver does not expose a typed error code.
func IsDatabaseUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUniqueConstraintViolation) {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "constraint failed: unique")
}

// IsDatabaseForeignKeyViolation reports whether err came from a SQLite
// foreign key constraint violation.
func IsDatabaseForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrForeignKeyViolation) {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "foreign key")
}

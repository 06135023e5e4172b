package common

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Failure kinds surfaced by the core services. Handlers translate these to
// HTTP status classes; everything unmatched is an internal error.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ValidationError reports a single invalid input field with enough detail
// to correct the request. It is always returned before any write occurs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a field-level validation failure.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError,
// returning it for detail extraction.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// NotFoundf wraps ErrNotFound with the missing resource name.
func NotFoundf(resource string) error {
	return fmt.Errorf("%s: %w", resource, ErrNotFound)
}

const pgForeignKeyViolation = "23503"

// MapPostgresError converts low-level pgx errors into the service taxonomy.
// A no-rows read and a foreign key violation mid-transaction both mean the
// referenced record does not exist, so both map to not-found.
func MapPostgresError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFoundf(resource)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return NotFoundf(resource)
	}
	return err
}

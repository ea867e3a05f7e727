package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUnknownAPIKey = errors.New("unknown apikey")

	// Raised by storage adapters when a write trips a table constraint.
	ErrUniqueViolation     = errors.New("unique constraint violated")
	ErrForeignKeyViolation = errors.New("foreign key constraint violated")
)

// SchemaError is returned when a submitted field-set does not match the exact
// shape a resource kind accepts: a required field is missing, a field is not
// allowed, or a field was sent more than once.
type SchemaError struct {
	Kind       Kind
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("malformed %s request: %s", e.Kind, strings.Join(e.Violations, "; "))
}

type ValueErrorKind string

const (
	TooLong    ValueErrorKind = "too_long"
	NotNumeric ValueErrorKind = "not_numeric"
	Blank      ValueErrorKind = "blank"
)

// ValueError reports the first field whose content breaks its declared rule.
type ValueError struct {
	Field string
	Kind  ValueErrorKind
	Limit int
}

func (e *ValueError) Error() string {
	switch e.Kind {
	case TooLong:
		return fmt.Sprintf("%s must be at most %d characters", e.Field, e.Limit)
	case NotNumeric:
		return fmt.Sprintf("%s must be an integer", e.Field)
	case Blank:
		return fmt.Sprintf("%s must not be empty", e.Field)
	default:
		return fmt.Sprintf("%s is invalid", e.Field)
	}
}

// Structural reports whether the defect keeps the request from being
// interpreted at all, as opposed to a value the caller can simply edit.
func (e *ValueError) Structural() bool {
	return e.Kind == NotNumeric
}

// ReferenceError is returned when a reference field does not name a row owned
// by the requesting tenant. Missing rows and rows owned by someone else are
// deliberately indistinguishable.
type ReferenceError struct {
	Field string
	ID    int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %d does not exist", e.Field, e.ID)
}

// DuplicateError is returned when a create collides with an existing row under
// a tenant-scoped uniqueness constraint.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q is already in use", e.Field, e.Value)
}

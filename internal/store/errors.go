package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a mutation targets a transaction that does not
// exist or belongs to another owner. The two cases are deliberately
// indistinguishable.
var ErrNotFound = errors.New("transaction not found")

// ValidationError reports which required fields were absent or empty on a
// create. It is raised before any persistence call is made.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PersistenceError wraps a store-layer failure (connectivity, permission,
// constraint). The operation is not retried automatically; callers surface it
// and leave local state unchanged so the user can retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err is a PersistenceError
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

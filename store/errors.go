package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Error taxonomy shared by every store component. Callers match with errors.Is.
var (
	// ErrNotFound covers both absent rows and rows owned by another account.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState means the lifecycle state forbids the operation.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict means a uniqueness rule would be broken.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput is returned for malformed requests, before anything is written.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorage wraps driver failures. Nothing from the failed call was committed.
	ErrStorage = errors.New("storage failure")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pqCode(err) == foreignKeyViolation
}

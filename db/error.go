package db

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrIO               = errors.New("db: i/o failure")
	ErrMalformedPage    = errors.New("db: malformed page")
	ErrSchemaMismatch   = errors.New("db: tuple schema does not match page schema")
	ErrPageFull         = errors.New("db: no empty slot")
	ErrPageMismatch     = errors.New("db: tuple is not stored on this page")
	ErrSlotAlreadyEmpty = errors.New("db: slot is already empty")

	ErrInvalidSchema   = errors.New("db: invalid schema")
	ErrTypeMismatch    = errors.New("db: field type mismatch")
	ErrNoSuchField     = errors.New("db: no such field")
	ErrUnknownTable    = errors.New("db: unknown table")
	ErrIncompleteTuple = errors.New("db: tuple has unset fields")
)

// IOError records a failed operation on the backing file of a heap file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("db: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports ErrIO as a match so callers can test the error kind without
// knowing the underlying cause.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

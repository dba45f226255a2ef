package storage

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a unique or primary key
	// constraint.
	ErrConflict = errors.New("conflict")

	// ErrMissingReference is returned when a write names a parent row that
	// does not exist.
	ErrMissingReference = errors.New("missing reference")
)

// classify maps SQLite constraint violations onto the storage sentinels using
// the extended result code. Any other error is returned unchanged.
func classify(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}

	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %s", ErrConflict, se.Error())
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return fmt.Errorf("%w: %s", ErrMissingReference, se.Error())
	default:
		return err
	}
}

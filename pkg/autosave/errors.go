package autosave

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable reports that the startup check failed. It is
	// permanent for the lifetime of the gateway.
	ErrStorageUnavailable = errors.New("autosave: storage unavailable")
	// ErrNotFound is returned by Storage.Get when the key holds no value.
	ErrNotFound = errors.New("autosave: key not found")
)

// IOError wraps a failed storage read, write or delete.
type IOError struct {
	Op  string
	Key string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("autosave: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// MigrationError reports a migrator failure while loading a payload written
// with another schema version.
type MigrationError struct {
	From int
	To   int
	Err  error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("autosave: migrate schema %d to %d: %v", e.From, e.To, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

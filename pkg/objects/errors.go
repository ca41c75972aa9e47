package objects

import "errors"

var (
	// ErrLocked is returned when removing or editing a locked entry.
	ErrLocked = errors.New("objects: entry is locked")
	// ErrNotFound is returned for unknown object ids.
	ErrNotFound = errors.New("objects: entry not found")
	// ErrUnknownField is returned when updating a field entries do not carry.
	ErrUnknownField = errors.New("objects: unknown field")
)

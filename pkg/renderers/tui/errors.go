package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoController is returned when the editor has no form to drive.
	ErrNoController = errors.New("tui: controller is nil")
)

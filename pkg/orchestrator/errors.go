package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownControl is returned when setting a control the registry does
	// not declare.
	ErrUnknownControl = errors.New("orchestrator: unknown control")
	// ErrControlDisabled is returned when setting a control the active style
	// disables.
	ErrControlDisabled = errors.New("orchestrator: control is disabled")
	// ErrClosed is returned by operations on a closed controller.
	ErrClosed = errors.New("orchestrator: controller is closed")
)

// SynthesisError wraps a failure to build the document or the prompt.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("orchestrator: synthesize: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

package interchange

import (
	"errors"
	"fmt"
)

var (
	ErrEmpty         = errors.New("file is empty")
	ErrInvalidJSON   = errors.New("invalid JSON format")
	ErrUnsupported   = errors.New("unsupported file structure")
	ErrMissingFields = errors.New("missing required fields: task or style")
	ErrMissingStyle  = errors.New("missing style main_style")
	ErrNoUsableData  = errors.New("imported file does not contain usable data")

	// ErrUnsupportedSchema is wrapped by MigrationError when the file carries
	// another schema version and no migrator is configured.
	ErrUnsupportedSchema = errors.New("unsupported schema version")
)

// ValidationError reports a file that cannot be imported as it is.
type ValidationError struct {
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "interchange: " + e.Err.Error()
	}
	return fmt.Sprintf("interchange: %s: %s", e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// MigrationError reports an imported payload the migrator could not bring to
// the current schema version.
type MigrationError struct {
	From int
	To   int
	Err  error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("interchange: migrate schema %d to %d: %v", e.From, e.To, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

func invalid(err error) error {
	return &ValidationError{Err: err}
}

// Message returns the user-facing sentence for an import error.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmpty):
		return "File is empty."
	case errors.Is(err, ErrInvalidJSON):
		return "Invalid JSON format."
	case errors.Is(err, ErrMissingFields):
		return "Invalid JSON: missing required fields (task or style)."
	case errors.Is(err, ErrMissingStyle):
		return "Invalid JSON: missing style main_style."
	case errors.Is(err, ErrUnsupported):
		return "Unsupported file structure."
	case errors.Is(err, ErrNoUsableData):
		return "Imported file does not contain usable data."
	case errors.Is(err, ErrUnsupportedSchema):
		return "Unsupported schema version."
	}
	var migration *MigrationError
	if errors.As(err, &migration) {
		return "Could not migrate imported data."
	}
	return "Import failed: " + err.Error()
}

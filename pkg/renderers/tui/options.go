package tui

import "io"

// Theme captures optional formatting hints the driver can apply when printing
// messages. Keep minimal to avoid coupling editor logic to ANSI specifics.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// Option configures the editor.
type Option func(*Editor)

// WithPromptDriver overrides the prompt driver used by the editor.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithOutput sets where the default driver prints informational messages.
// It has no effect when a driver is supplied.
func WithOutput(w io.Writer) Option {
	return func(e *Editor) {
		if w != nil {
			e.out = w
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(e *Editor) {
		e.theme = theme
	}
}

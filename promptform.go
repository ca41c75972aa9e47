// Package promptform builds image-generation prompts from a style-driven form.
// It re-exports the controller and adds entry points that wire a registry,
// a storage backend and the prompt formats together.
package promptform

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/orchestrator"
	"github.com/goliatone/go-promptform/pkg/storage"
)

// Controller aliases the form controller.
type Controller = orchestrator.Controller

// Preview aliases the derived JSON and prompt output.
type Preview = orchestrator.Preview

// Option aliases the controller options.
type Option = orchestrator.Option

// NewController builds a controller over reg. A nil registry uses the
// embedded catalog.
func NewController(ctx context.Context, reg *config.Registry, opts ...Option) (*Controller, error) {
	if reg == nil {
		reg = config.Default()
	}
	return orchestrator.New(ctx, reg, opts...)
}

// Session is a controller bound to the storage backend it autosaves into.
type Session struct {
	*orchestrator.Controller
	backend storage.Backend
}

// Open opens the backend named by dsn and restores the saved form from it.
func Open(ctx context.Context, reg *config.Registry, dsn string, opts ...Option) (*Session, error) {
	backend, err := storage.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	all := append([]Option{orchestrator.WithStorage(backend)}, opts...)
	c, err := NewController(ctx, reg, all...)
	if err != nil {
		return nil, errors.Join(err, backend.Close())
	}
	return &Session{Controller: c, backend: backend}, nil
}

// Close flushes pending saves, then closes the backend.
func (s *Session) Close(ctx context.Context) error {
	return errors.Join(s.Controller.Close(ctx), s.backend.Close())
}

// Synthesize imports data (an export file, autosave payload or bare
// document) into a throwaway form and renders it in format.
func Synthesize(ctx context.Context, reg *config.Registry, data []byte, format string, opts ...Option) ([]byte, error) {
	c, err := NewController(ctx, reg, opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close(ctx)

	if _, err := c.Import(data); err != nil {
		return nil, fmt.Errorf("promptform: synthesize: %w", err)
	}
	return c.Render(ctx, format)
}

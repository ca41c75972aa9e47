package render

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ErrUnknownFormat is returned for a format name nothing is registered under.
var ErrUnknownFormat = errors.New("render: unknown format")

// Registry maps prompt format names to renderers. Names are matched without
// regard to case or surrounding space.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]Renderer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]Renderer)}
}

func formatKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds renderer under its Name. A name may be registered once.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is nil")
	}
	key := formatKey(renderer.Name())
	if key == "" {
		return errors.New("render: renderer has no format name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.formats[key]; taken {
		return fmt.Errorf("render: format %q already registered", key)
	}
	r.formats[key] = renderer
	return nil
}

// Get returns the renderer for format. Unknown formats wrap ErrUnknownFormat
// and list the registered ones.
func (r *Registry) Get(format string) (Renderer, error) {
	r.mu.RLock()
	renderer, ok := r.formats[formatKey(format)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownFormat, format, strings.Join(r.List(), ", "))
	}
	return renderer, nil
}

// List returns the registered format names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Has reports whether format is registered.
func (r *Registry) Has(format string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.formats[formatKey(format)]
	return ok
}

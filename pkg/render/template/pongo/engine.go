package pongo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-promptform/pkg/render/template"
)

// DefaultExtension is appended to template names that carry none.
const DefaultExtension = ".tpl"

// TextFilter transforms the string form of a template value.
type TextFilter func(string) string

// Option configures the engine before construction.
type Option func(*Engine)

// WithFS adds templates from an fs.FS. Earlier sources win.
func WithFS(files fs.FS) Option {
	return func(e *Engine) {
		if files != nil {
			e.sources = append(e.sources, pongo2.NewFSLoader(files))
		}
	}
}

// WithDir adds templates from a directory on disk. Directories are consulted
// before any fs.FS, so a file there overrides the embedded template of the
// same name.
func WithDir(dir string) Option {
	return func(e *Engine) {
		if dir = strings.TrimSpace(dir); dir != "" {
			e.dirs = append(e.dirs, dir)
		}
	}
}

// WithFilter exposes fn to templates as a filter named name. pongo2 filters
// are process wide: the first registration of a name is the one templates see.
func WithFilter(name string, fn TextFilter) Option {
	return func(e *Engine) {
		if name = strings.TrimSpace(name); name != "" && fn != nil {
			e.filters[name] = fn
		}
	}
}

// Engine renders named pongo2 templates. Parsed templates are cached per
// path.
type Engine struct {
	dirs    []string
	sources []pongo2.TemplateLoader
	filters map[string]TextFilter

	set *pongo2.TemplateSet

	mu    sync.RWMutex
	cache map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an engine. At least one template source is required.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		filters: map[string]TextFilter{"trim": strings.TrimSpace},
		cache:   make(map[string]*pongo2.Template),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	// directories come before every fs.FS source
	var loaders []pongo2.TemplateLoader
	for _, dir := range e.dirs {
		loader, err := pongo2.NewLocalFileSystemLoader(dir)
		if err != nil {
			return nil, fmt.Errorf("pongo: template dir %q: %w", dir, err)
		}
		loaders = append(loaders, loader)
	}
	loaders = append(loaders, e.sources...)
	if len(loaders) == 0 {
		return nil, errors.New("pongo: no template source")
	}

	for name, fn := range e.filters {
		if err := registerFilter(name, fn); err != nil {
			return nil, fmt.Errorf("pongo: register filter %q: %w", name, err)
		}
	}
	e.set = pongo2.NewSet("promptform", loaders...)
	return e, nil
}

// RenderTemplate renders the named template with data. Struct values are
// addressed by their json names.
func (e *Engine) RenderTemplate(name string, data any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, DefaultExtension) {
		path += DefaultExtension
	}
	tmpl, err := e.load(path)
	if err != nil {
		return "", err
	}
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("pongo: %s: convert data: %w", path, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("pongo: execute %s: %w", path, err)
	}
	return buf.String(), nil
}

func (e *Engine) load(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("pongo: load %s: %w", path, err)
	}
	e.cache[path] = tmpl
	return tmpl, nil
}

var filterMu sync.Mutex

func registerFilter(name string, fn TextFilter) error {
	filterMu.Lock()
	defer filterMu.Unlock()
	if pongo2.FilterExists(name) {
		return nil
	}
	return pongo2.RegisterFilter(name, func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		return pongo2.AsValue(fn(in.String())), nil
	})
}

// toContext round-trips data through JSON so templates see the wire names
// of every nested struct.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	ctx := pongo2.Context{}
	if err := json.Unmarshal(encoded, &ctx); err != nil {
		return nil, fmt.Errorf("data is not an object: %w", err)
	}
	return ctx, nil
}

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-promptform/pkg/autosave"
	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/document"
	"github.com/goliatone/go-promptform/pkg/form"
	"github.com/goliatone/go-promptform/pkg/objects"
	"github.com/goliatone/go-promptform/pkg/render"
	"github.com/goliatone/go-promptform/pkg/style"
	"github.com/goliatone/go-promptform/pkg/visibility"
)

// Option customises the controller configuration.
type Option func(*Controller)

// WithStorage sets the autosave storage. Without one the gateway is disabled.
func WithStorage(storage autosave.Storage) Option {
	return func(c *Controller) {
		c.storage = storage
	}
}

// WithLogger attaches a logger shared with the reconciler and the gateway.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithScheduler injects the autosave debounce scheduler.
func WithScheduler(s autosave.Scheduler) Option {
	return func(c *Controller) {
		c.scheduler = s
	}
}

// WithClock overrides the time source for autosave and export timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithStatusHandler receives autosave status changes. Handlers may run on the
// debounce goroutine and must not call back into the controller.
func WithStatusHandler(fn autosave.StatusHandler) Option {
	return func(c *Controller) {
		c.onStatus = fn
	}
}

// WithErrorHandler receives autosave, synthesis and import errors. The same
// restriction as WithStatusHandler applies.
func WithErrorHandler(fn autosave.ErrorHandler) Option {
	return func(c *Controller) {
		c.onError = fn
	}
}

// WithAutosaveDelay overrides the debounce delay from the registry.
func WithAutosaveDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.delay = d
	}
}

// WithVersion sets the application version stamped on exports.
func WithVersion(version string) Option {
	return func(c *Controller) {
		c.version = version
	}
}

// WithRenderers replaces the prompt format registry used by Render.
func WithRenderers(registry *render.Registry) Option {
	return func(c *Controller) {
		c.renderers = registry
	}
}

// WithPreviewHandler is called with every recomputed preview, after the
// controller lock is released.
func WithPreviewHandler(fn func(Preview)) Option {
	return func(c *Controller) {
		c.onPreview = fn
	}
}

// Controller is the single owner of a form. It is safe for concurrent use;
// calls are serialized.
type Controller struct {
	registry  *config.Registry
	storage   autosave.Storage
	scheduler autosave.Scheduler
	renderers *render.Registry
	logger    *zap.Logger
	now       func() time.Time
	delay     time.Duration
	version   string
	onStatus  autosave.StatusHandler
	onError   autosave.ErrorHandler
	onPreview func(Preview)

	gateway *autosave.Gateway

	mu      sync.Mutex
	store   *form.Store
	layout  *visibility.Layout
	styles  *style.Reconciler
	objects *objects.Manager
	preview Preview
	// skipAutosave suppresses the save queued by the next refresh.
	skipAutosave bool
	closed       bool
}

// New builds a controller over reg, opens the autosave gateway and restores
// the stored state when there is one. Otherwise the first style is applied
// and the default preview computed. Neither path queues an autosave.
func New(ctx context.Context, reg *config.Registry, opts ...Option) (*Controller, error) {
	if reg == nil {
		return nil, errors.New("orchestrator: registry is required")
	}
	c := &Controller{
		registry: reg,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.renderers == nil {
		renderers, err := render.NewDefaultRegistry()
		if err != nil {
			return nil, fmt.Errorf("orchestrator: renderers: %w", err)
		}
		c.renderers = renderers
	}

	c.objects = objects.NewManager(reg.Objects)
	c.resetForm()
	c.styles.SelectStyle(reg.FirstStyle())

	gatewayOpts := []autosave.Option{
		autosave.WithLogger(c.logger),
		autosave.WithClock(c.now),
		autosave.WithStatusHandler(c.onStatus),
		autosave.WithErrorHandler(c.onError),
	}
	if c.scheduler != nil {
		gatewayOpts = append(gatewayOpts, autosave.WithScheduler(c.scheduler))
	}
	if c.delay > 0 {
		gatewayOpts = append(gatewayOpts, autosave.WithDelay(c.delay))
	}
	c.gateway = autosave.New(ctx, c.storage, reg.Storage, gatewayOpts...)

	if c.gateway.Available() {
		restored, err := c.gateway.Load(ctx)
		switch {
		case err != nil:
			c.logger.Warn("autosave restore failed", zap.Error(err))
			c.gateway.Report(err)
		case restored != nil:
			c.applySnapshot(restored.Data)
			c.gateway.MarkRestored(restored.Timestamp)
			c.logger.Debug("form restored", zap.String("timestamp", restored.Timestamp))
		}
	}

	c.skipAutosave = true
	preview := c.refresh()
	c.notify(preview)
	return c, nil
}

// resetForm replaces the store, layout and reconciler with fresh ones holding
// the base defaults and clears the object list.
func (c *Controller) resetForm() {
	c.store = form.New(c.registry)
	c.layout = visibility.NewLayout(c.registry)
	c.styles = style.New(c.registry, c.store, c.layout, style.WithLogger(c.logger))
	c.store.SetMany(c.registry.BaseDefaults())
	c.store.Subscribe(c.onStoreChange)
	c.objects.Clear()
}

// onStoreChange re-applies the main style whenever its value changes. The
// reconciler writes mainStyle silently, so this does not recurse.
func (c *Controller) onStoreChange(change form.Change) {
	if change.Kind != form.ChangeValue || change.Field != config.FieldMainStyle {
		return
	}
	text, _ := change.Value.(string)
	c.styles.SelectStyle(text)
}

// Registry returns the catalog the controller was built with.
func (c *Controller) Registry() *config.Registry {
	return c.registry
}

// Status returns the autosave status.
func (c *Controller) Status() autosave.Status {
	return c.gateway.Status()
}

// Flush writes a pending autosave now.
func (c *Controller) Flush(ctx context.Context) error {
	return c.gateway.Flush(ctx)
}

// Close flushes the pending autosave and stops the gateway. Mutations after
// Close return ErrClosed.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.gateway.Close(ctx)
}

// Render renders the current document in format.
func (c *Controller) Render(ctx context.Context, format string) ([]byte, error) {
	preview := c.Preview()
	if preview.Err != nil {
		return nil, preview.Err
	}
	return c.renderers.Render(ctx, format, preview.Document)
}

// Formats lists the registered prompt formats.
func (c *Controller) Formats() []string {
	return c.renderers.List()
}

// mutate runs fn under the lock, then refreshes the preview and notifies.
func (c *Controller) mutate(fn func() error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err := fn(); err != nil {
		c.mu.Unlock()
		return err
	}
	preview := c.refresh()
	c.mu.Unlock()

	c.notify(preview)
	return nil
}

func (c *Controller) notify(preview Preview) {
	if c.onPreview != nil {
		c.onPreview(preview)
	}
}

func (c *Controller) input() document.Input {
	return document.Input{
		Registry:       c.registry,
		Values:         c.store,
		Task:           c.store.Task(),
		Style:          c.styles.ActiveStyle(),
		SectionVisible: c.layout.SectionVisible,
		Objects:        c.objects.Entries(),
	}
}

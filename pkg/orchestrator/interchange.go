package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-promptform/pkg/autosave"
	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/interchange"
	"github.com/goliatone/go-promptform/pkg/snapshot"
)

// ApplySnapshot replaces the form state with snap. The form is first brought
// back to its catalog state so the result depends on snap alone. No autosave
// is queued for the applied state.
func (c *Controller) ApplySnapshot(snap snapshot.Snapshot) error {
	return c.mutate(func() error {
		c.applySnapshot(snap)
		return nil
	})
}

// applySnapshot selects the stored style, applies it with its defaults, then
// assigns every other control, the task and the objects. Lock held.
func (c *Controller) applySnapshot(snap snapshot.Snapshot) {
	c.resetForm()

	target, _ := snap.Controls[config.FieldMainStyle].(string)
	c.styles.SelectStyle(target)

	controls := make(map[string]any, len(snap.Controls))
	for id, value := range snap.Controls {
		if id != config.FieldMainStyle {
			controls[id] = value
		}
	}
	c.store.SetMany(controls)

	if snap.Task != "" {
		c.store.SelectTask(snap.Task)
	}
	c.objects.Restore(snap.Objects)
	c.skipAutosave = true
}

// Export bundles the current state as an export file.
func (c *Controller) Export() (interchange.ExportFile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.preview.Err != nil {
		return interchange.ExportFile{}, c.preview.Err
	}
	return interchange.Export(c.snapshot(), c.preview.Document, interchange.Meta{
		Version:       c.version,
		SchemaVersion: c.gateway.SchemaVersion(),
		Now:           c.now(),
	})
}

// Import applies an export file, an autosave payload or a bare document.
// On success the status becomes restored and the imported state is queued
// for autosave. Failures leave the form untouched and surface through the
// error handler.
func (c *Controller) Import(data []byte) (interchange.Payload, error) {
	snap, payload, err := interchange.Import(data, c.registry)
	if err != nil {
		c.logger.Warn("import failed", zap.Error(err))
		c.gateway.Report(err)
		return interchange.Payload{}, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return interchange.Payload{}, ErrClosed
	}
	c.applySnapshot(snap)
	preview := c.refresh()
	c.gateway.MarkRestored(autosave.FormatTimestamp(c.now()))
	if c.gateway.Available() && preview.Err == nil {
		c.gateway.QueueSave(c.snapshot())
	}
	c.mu.Unlock()

	c.notify(preview)
	c.logger.Debug("import applied", zap.String("kind", string(payload.Kind)))
	return payload, nil
}

// Reset clears storage and the object list, selects the first task and the
// first style, and restores base defaults with no preset. No autosave is
// queued for the reset state.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.gateway.Cancel()
	clearErr := c.gateway.Clear(ctx)

	c.resetForm()
	c.styles.SelectStyle(c.registry.FirstStyle())
	c.skipAutosave = true
	preview := c.refresh()
	c.mu.Unlock()

	c.notify(preview)
	if clearErr != nil {
		return fmt.Errorf("orchestrator: reset: %w", clearErr)
	}
	return nil
}

package orchestrator

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/form"
	"github.com/goliatone/go-promptform/pkg/objects"
	"github.com/goliatone/go-promptform/pkg/visibility"
)

// SetControl assigns a control value as a user edit would. Writing a new
// main style re-applies it with its defaults; selecting a preset applies it.
// Disabled controls are rejected.
func (c *Controller) SetControl(id string, value any) error {
	return c.mutate(func() error {
		return c.assign(id, value)
	})
}

// SetControls assigns several controls and refreshes once. The main style is
// assigned first, then the preset, then the rest in sorted key order, each
// checked as SetControl checks it. On error the form is left as it was.
func (c *Controller) SetControls(values map[string]any) error {
	return c.mutate(func() error {
		for id := range values {
			if !c.store.Has(id) {
				return fmt.Errorf("%w: %q", ErrUnknownControl, id)
			}
		}
		before := c.snapshot()
		for _, id := range controlOrder(values) {
			if err := c.assign(id, values[id]); err != nil {
				c.applySnapshot(before)
				c.skipAutosave = false
				return err
			}
		}
		return nil
	})
}

// assign applies one control value. mainStyle changes reach the reconciler
// through the store subscription. Lock held.
func (c *Controller) assign(id string, value any) error {
	if !c.store.Has(id) {
		return fmt.Errorf("%w: %q", ErrUnknownControl, id)
	}
	if c.layout.FieldDisabled(id) {
		return fmt.Errorf("%w: %q", ErrControlDisabled, id)
	}
	if id == config.FieldStylePreset {
		text, _ := value.(string)
		if _, ok := c.registry.Preset(text); ok {
			return c.styles.ApplyPreset(text)
		}
		c.store.Set(id, "")
		return nil
	}
	c.store.Set(id, value)
	return nil
}

func controlOrder(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		if key != config.FieldMainStyle && key != config.FieldStylePreset {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range []string{config.FieldStylePreset, config.FieldMainStyle} {
		if _, ok := values[key]; ok {
			keys = append([]string{key}, keys...)
		}
	}
	return keys
}

// Control returns the value of a control.
func (c *Controller) Control(id string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(id)
}

// Options returns the selectable values of a select control.
func (c *Controller) Options(id string) []form.Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Options(id)
}

// Layout returns a copy of the current section and field state.
func (c *Controller) Layout() visibility.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layout.State()
}

// Task returns the selected task.
func (c *Controller) Task() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Task()
}

// SelectTask selects a task, falling back to the first task.
func (c *Controller) SelectTask(task string) (string, error) {
	var selected string
	err := c.mutate(func() error {
		selected = c.store.SelectTask(task)
		return nil
	})
	return selected, err
}

// ActiveStyle returns the resolved active style key.
func (c *Controller) ActiveStyle() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.styles.ActiveStyle()
}

// ApplyStyle selects and applies styleKey with its defaults and returns the
// resolved key.
func (c *Controller) ApplyStyle(styleKey string) (string, error) {
	var resolved string
	err := c.mutate(func() error {
		resolved = c.styles.SelectStyle(styleKey)
		return nil
	})
	return resolved, err
}

// ApplyPreset applies a preset, switching style when needed.
func (c *Controller) ApplyPreset(key string) error {
	return c.mutate(func() error {
		return c.styles.ApplyPreset(key)
	})
}

// ResetPreset restores the base defaults and clears the preset.
func (c *Controller) ResetPreset() error {
	return c.mutate(func() error {
		c.styles.ResetPreset()
		return nil
	})
}

// Objects returns the object list.
func (c *Controller) Objects() []objects.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.objects.Entries()
}

// Object returns one entry.
func (c *Controller) Object(id string) (objects.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.objects.Get(id)
}

// AddObject appends an entry built from seed over the configured defaults.
func (c *Controller) AddObject(seed map[string]any) (objects.Entry, error) {
	var entry objects.Entry
	err := c.mutate(func() error {
		entry = c.objects.Add(seed)
		c.logger.Debug("object added", zap.String("id", entry.ObjectID))
		return nil
	})
	return entry, err
}

// DuplicateObject inserts a copy of id right after it.
func (c *Controller) DuplicateObject(id string) (objects.Entry, error) {
	var entry objects.Entry
	err := c.mutate(func() error {
		var err error
		entry, err = c.objects.Duplicate(id)
		return err
	})
	return entry, err
}

// RemoveObject deletes id. Locked entries return objects.ErrLocked.
func (c *Controller) RemoveObject(id string) error {
	return c.mutate(func() error {
		return c.objects.Remove(id)
	})
}

// UpdateObject assigns one field of id. Locked entries return
// objects.ErrLocked.
func (c *Controller) UpdateObject(id, field string, value any) error {
	return c.mutate(func() error {
		return c.objects.Update(id, field, value)
	})
}

// ToggleLock flips the lock of id and returns the new state.
func (c *Controller) ToggleLock(id string) (bool, error) {
	var locked bool
	err := c.mutate(func() error {
		var err error
		locked, err = c.objects.ToggleLock(id)
		return err
	})
	return locked, err
}

// ToggleCollapse flips the collapse flag of id and returns the new state.
func (c *Controller) ToggleCollapse(id string) (bool, error) {
	var collapsed bool
	err := c.mutate(func() error {
		var err error
		collapsed, err = c.objects.ToggleCollapse(id)
		return err
	})
	return collapsed, err
}

// LockLabel returns the configured name of a lock state.
func (c *Controller) LockLabel(locked bool) string {
	return c.objects.LockLabel(locked)
}

// CollapseLabel returns the configured name of a collapse state.
func (c *Controller) CollapseLabel(collapsed bool) string {
	return c.objects.CollapseLabel(collapsed)
}

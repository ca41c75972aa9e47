package style

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/goliatone/go-promptform/pkg/config"
)

// ErrPresetNotFound is returned when applying a preset key the registry does
// not declare.
var ErrPresetNotFound = errors.New("style: preset not found")

// ApplyPreset switches to the preset's style when needed, assigns its values
// and keeps it selected. Preset values take precedence over the style
// defaults re-applied by the switch.
func (r *Reconciler) ApplyPreset(key string) error {
	preset, ok := r.registry.Preset(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrPresetNotFound, key)
	}

	target := r.ActiveStyle()
	if preset.Style != "" {
		if _, known := r.registry.Style(preset.Style); known {
			target = preset.Style
		}
	}
	if r.store.String(config.FieldMainStyle) != target {
		r.setMainStyle(target)
	}

	r.assign(preset.Values)
	r.store.Set(config.FieldStylePreset, preset.Key)

	r.Apply(target)
	r.assign(preset.Values)
	if r.store.HasOption(config.FieldStylePreset, preset.Key) {
		r.store.Set(config.FieldStylePreset, preset.Key)
	}

	r.logger.Debug("preset applied", zap.String("preset", preset.Key), zap.String("style", target))
	return nil
}

// ResetPreset restores the base defaults, clears the preset selection and
// reconciles the active style without its defaults.
func (r *Reconciler) ResetPreset() {
	base := r.registry.BaseDefaults()
	keys := make([]string, 0, len(base))
	for key := range base {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		r.store.Set(key, base[key])
	}
	r.store.Set(config.FieldStylePreset, "")

	style := r.ActiveStyle()
	r.Refresh(style)
	r.logger.Debug("preset reset", zap.String("style", style))
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		out[value] = struct{}{}
	}
	return out
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

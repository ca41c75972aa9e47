package style

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/form"
	"github.com/goliatone/go-promptform/pkg/visibility"
)

// PresetPlaceholder labels the empty preset choice.
const PresetPlaceholder = "Select preset…"

// Option customises a Reconciler.
type Option func(*Reconciler)

// WithLogger attaches a logger for reconciliation traces.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Reconciler interprets style records from the registry against a form store
// and its layout. It holds no per-style code.
type Reconciler struct {
	registry *config.Registry
	store    *form.Store
	layout   *visibility.Layout
	logger   *zap.Logger
}

// New wires a reconciler to the store and layout it mutates.
func New(reg *config.Registry, store *form.Store, layout *visibility.Layout, opts ...Option) *Reconciler {
	r := &Reconciler{
		registry: reg,
		store:    store,
		layout:   layout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ActiveStyle returns the selected style, falling back to the first declared
// style when mainStyle holds an unknown key.
func (r *Reconciler) ActiveStyle() string {
	return r.registry.ResolveStyle(r.store.String(config.FieldMainStyle))
}

// SelectStyle stores the resolved style key in mainStyle and applies it.
// The mainStyle write is not announced to store subscribers.
func (r *Reconciler) SelectStyle(styleKey string) string {
	resolved := r.registry.ResolveStyle(styleKey)
	r.setMainStyle(resolved)
	r.Apply(resolved)
	return resolved
}

func (r *Reconciler) setMainStyle(styleKey string) {
	r.store.Silently(func() {
		r.store.Set(config.FieldMainStyle, styleKey)
	})
}

// Apply runs a full reconciliation for styleKey, including style defaults.
// Repeated calls with unchanged state produce the same result. Unknown keys
// reconcile against an empty definition.
func (r *Reconciler) Apply(styleKey string) {
	r.reconcile(styleKey, true)
}

// Refresh reconciles styleKey without re-applying style defaults.
func (r *Reconciler) Refresh(styleKey string) {
	r.reconcile(styleKey, false)
}

func (r *Reconciler) reconcile(styleKey string, withDefaults bool) {
	def, _ := r.registry.Style(styleKey)

	r.layout.Reset()
	r.activatePanel(styleKey, def)

	var deps config.Dependencies
	if def != nil {
		deps = def.Dependencies
	}
	r.applySections(deps)

	if withDefaults && def != nil {
		r.assign(def.Defaults)
	}

	for _, id := range deps.DisableFields {
		r.layout.SetDisabled(id, true)
	}
	for _, id := range deps.EnableFields {
		r.layout.SetDisabled(id, false)
	}
	for _, id := range deps.HideFields {
		r.layout.SetHidden(id, true)
	}
	r.assign(deps.Autoset)

	r.toggleCamera(def != nil && def.Category == config.PhotographyCategory)
	r.populatePresets(styleKey)

	r.logger.Debug("style reconciled",
		zap.String("style", styleKey),
		zap.Bool("known", def != nil),
		zap.Bool("defaults", withDefaults),
	)
}

func (r *Reconciler) activatePanel(styleKey string, def *config.Style) {
	active := make(map[string]struct{})
	if def != nil {
		for _, id := range def.Panel {
			active[id] = struct{}{}
		}
	}
	for _, id := range r.registry.PanelFields() {
		if _, ok := active[id]; !ok {
			r.layout.SetDisabled(id, true)
		}
	}
	for id := range active {
		r.layout.SetDisabled(id, false)
	}
	if def != nil {
		r.layout.SetActivePanel(styleKey)
	}
}

func (r *Reconciler) applySections(deps config.Dependencies) {
	enabled := toSet(deps.EnableSections)
	collapsed := toSet(deps.CollapseSections)
	for _, section := range r.registry.Sections {
		_, listed := enabled[section.Key]
		show := len(enabled) == 0 || listed
		r.layout.ShowSection(section.Key, show)
		_, collapse := collapsed[section.Key]
		r.layout.CollapseSection(section.Key, show && collapse)
	}
}

func (r *Reconciler) assign(values map[string]any) {
	for _, key := range sortedKeys(values) {
		if key == config.FieldMainStyle {
			continue
		}
		r.store.Set(key, values[key])
	}
}

func (r *Reconciler) toggleCamera(enabled bool) {
	for _, field := range r.registry.FieldsInSection(config.SectionCamera) {
		r.layout.SetDisabled(field.ID, !enabled)
	}
	r.layout.ShowSection(config.SectionCamera, enabled)
	if !enabled {
		r.layout.CollapseSection(config.SectionCamera, false)
	}
}

func (r *Reconciler) populatePresets(styleKey string) {
	presets := r.registry.PresetsForStyle(styleKey)
	options := make([]form.Option, 0, len(presets)+1)
	options = append(options, form.Option{Value: "", Label: PresetPlaceholder})
	for _, preset := range presets {
		options = append(options, form.Option{Value: preset.Key, Label: preset.Label})
	}
	r.store.SetOptions(config.FieldStylePreset, options)

	if !r.store.HasOption(config.FieldStylePreset, r.store.String(config.FieldStylePreset)) {
		r.store.Set(config.FieldStylePreset, "")
	}
}

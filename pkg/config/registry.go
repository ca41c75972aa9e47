package config

import (
	"fmt"
	"sort"
	"strconv"
)

// Style returns the style registered under key.
func (r *Registry) Style(key string) (*Style, bool) {
	if r == nil {
		return nil, false
	}
	idx, ok := r.styleIndex[key]
	if !ok {
		return nil, false
	}
	return &r.Styles[idx], true
}

// StyleKeys lists style keys in declaration order.
func (r *Registry) StyleKeys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.Styles))
	for _, style := range r.Styles {
		keys = append(keys, style.Key)
	}
	return keys
}

// FirstStyle returns the first declared style key, or "" when none exist.
func (r *Registry) FirstStyle() string {
	if r == nil || len(r.Styles) == 0 {
		return ""
	}
	return r.Styles[0].Key
}

// ResolveStyle returns key when it names a registered style and falls back to
// the first declared style otherwise.
func (r *Registry) ResolveStyle(key string) string {
	if _, ok := r.Style(key); ok {
		return key
	}
	return r.FirstStyle()
}

// IsPhotography reports whether the style belongs to the photography
// category, which gates the camera section.
func (r *Registry) IsPhotography(key string) bool {
	style, ok := r.Style(key)
	return ok && style.Category == PhotographyCategory
}

// Preset returns the preset registered under key.
func (r *Registry) Preset(key string) (*Preset, bool) {
	if r == nil {
		return nil, false
	}
	idx, ok := r.presetIndex[key]
	if !ok {
		return nil, false
	}
	return &r.Presets[idx], true
}

// PresetsForStyle lists the presets scoped to styleKey in declaration order.
func (r *Registry) PresetsForStyle(styleKey string) []Preset {
	if r == nil {
		return nil
	}
	var out []Preset
	for _, preset := range r.Presets {
		if preset.Style == styleKey {
			out = append(out, preset)
		}
	}
	return out
}

// Field returns the catalog entry for id.
func (r *Registry) Field(id string) (*Field, bool) {
	if r == nil {
		return nil, false
	}
	idx, ok := r.fieldIndex[id]
	if !ok {
		return nil, false
	}
	return &r.Fields[idx], true
}

// FieldsInSection lists the catalog fields assigned to section.
func (r *Registry) FieldsInSection(section string) []Field {
	if r == nil {
		return nil
	}
	var out []Field
	for _, field := range r.Fields {
		if field.Section == section {
			out = append(out, field)
		}
	}
	return out
}

// HasSection reports whether key is a declared section.
func (r *Registry) HasSection(key string) bool {
	if r == nil {
		return false
	}
	for _, section := range r.Sections {
		if section.Key == key {
			return true
		}
	}
	return false
}

// BaseDefaults returns the catalog defaults merged with the first value seen
// for any field that only a style declares a default for. The reserved style
// and preset selectors are excluded.
func (r *Registry) BaseDefaults() map[string]any {
	if r == nil {
		return nil
	}
	out := make(map[string]any)
	for _, field := range r.Fields {
		if field.Default == nil || field.ID == FieldMainStyle || field.ID == FieldStylePreset {
			continue
		}
		out[field.ID] = field.Default
	}
	for _, style := range r.Styles {
		for _, key := range sortedKeys(style.Defaults) {
			if key == FieldMainStyle || key == FieldStylePreset {
				continue
			}
			if _, known := r.fieldIndex[key]; !known {
				continue
			}
			if _, ok := out[key]; !ok {
				out[key] = style.Defaults[key]
			}
		}
	}
	return out
}

// PanelFields returns the union of every style panel, in first-seen order.
func (r *Registry) PanelFields() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, style := range r.Styles {
		for _, id := range style.Panel {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Validate reports dangling references between styles, presets, sections and
// fields. Problems are advisory; the reconciler ignores unknown identifiers.
func (r *Registry) Validate() []Issue {
	if r == nil {
		return nil
	}
	var issues []Issue
	add := func(path, format string, args ...any) {
		issues = append(issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	for _, style := range r.Styles {
		path := "styles." + style.Key
		deps := style.Dependencies
		for _, key := range append(append([]string(nil), deps.EnableSections...), deps.CollapseSections...) {
			if !r.HasSection(key) {
				add(path+".dependencies", "unknown section %q", key)
			}
		}
		for _, group := range [][]string{deps.DisableFields, deps.EnableFields, deps.HideFields, style.Panel} {
			for _, id := range group {
				if _, ok := r.Field(id); !ok {
					add(path, "unknown field %q", id)
				}
			}
		}
		for _, id := range sortedKeys(style.Defaults) {
			if _, ok := r.Field(id); !ok {
				add(path+".defaults", "unknown field %q", id)
			}
		}
		for _, id := range sortedKeys(deps.Autoset) {
			if _, ok := r.Field(id); !ok {
				add(path+".dependencies.autoset", "unknown field %q", id)
			}
		}
		for _, sub := range style.Substyles {
			if sub.DefaultPreset == "" {
				continue
			}
			if _, ok := r.Preset(sub.DefaultPreset); !ok {
				add(path+".substyles."+sub.Key, "unknown preset %q", sub.DefaultPreset)
			}
		}
	}

	for _, preset := range r.Presets {
		path := "presets." + preset.Key
		if _, ok := r.Style(preset.Style); !ok {
			add(path, "unknown style %q", preset.Style)
		}
		for _, id := range sortedKeys(preset.Values) {
			if _, ok := r.Field(id); !ok {
				add(path+".values", "unknown field %q", id)
			}
		}
	}

	if len(r.Styles) == 0 {
		add("styles", "no styles declared")
	}
	return issues
}

// Scalar normalises a configured value to the form value domain: booleans stay
// booleans, every other scalar becomes its string form.
func Scalar(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case bool:
		return v
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

func scalarMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = Scalar(value)
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reserved identifiers shared by the reconciler, synthesizer and import
// adapter.
const (
	FieldMainStyle       = "mainStyle"
	FieldStylePreset     = "stylePreset"
	FieldTaskDescription = "taskDescription"

	SectionCamera       = "camera"
	SectionObjects      = "objects"
	PhotographyCategory = "photography"

	DefaultTask = "Image Generation"
)

// FieldKind mirrors the control types the form exposes.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
	KindCheckbox FieldKind = "checkbox"
	KindRange    FieldKind = "range"
	KindTags     FieldKind = "tags"
)

// Registry is the immutable catalog consumed by every other package. Treat it
// as read-only once LoadFS/Default returns.
type Registry struct {
	Version    string
	Storage    StorageConfig
	FieldOrder []string
	Tasks      []string
	Sections   []Section
	Fields     []Field
	Objects    ObjectsConfig
	Styles     []Style
	Presets    []Preset
	Prompt     PromptConfig

	// Issues collects the soft problems found while loading. The registry
	// remains usable when non-empty.
	Issues []Issue

	styleIndex  map[string]int
	presetIndex map[string]int
	fieldIndex  map[string]int
}

// Section is a named group of fields whose visibility is style-controlled.
type Section struct {
	Key    string `json:"key" yaml:"key"`
	Label  string `json:"label" yaml:"label"`
	Hidden bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// Field describes a single form control. Disabled and Hidden are the base
// state captured before any style is applied.
type Field struct {
	ID       string    `json:"id" yaml:"id"`
	Section  string    `json:"section" yaml:"section"`
	Kind     FieldKind `json:"kind" yaml:"kind"`
	Label    string    `json:"label,omitempty" yaml:"label,omitempty"`
	Help     string    `json:"help,omitempty" yaml:"help,omitempty"`
	Options  []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Default  any       `json:"default,omitempty" yaml:"default,omitempty"`
	Disabled bool      `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Hidden   bool      `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Min      int       `json:"min,omitempty" yaml:"min,omitempty"`
	Max      int       `json:"max,omitempty" yaml:"max,omitempty"`
	Step     int       `json:"step,omitempty" yaml:"step,omitempty"`
}

// Style is a declarative record interpreted by the reconciler.
type Style struct {
	Key          string            `json:"key" yaml:"key"`
	Label        string            `json:"label" yaml:"label"`
	Category     string            `json:"category" yaml:"category"`
	Substyles    []Substyle        `json:"substyles,omitempty" yaml:"substyles,omitempty"`
	Panel        []string          `json:"panel,omitempty" yaml:"panel,omitempty"`
	Defaults     map[string]any    `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Dependencies Dependencies      `json:"dependencies" yaml:"dependencies"`
	Hints        map[string]string `json:"hints,omitempty" yaml:"hints,omitempty"`
}

// Substyle is a named nuance of a style with an optional preset suggestion.
type Substyle struct {
	Key           string `json:"key" yaml:"key"`
	Label         string `json:"label" yaml:"label"`
	DefaultPreset string `json:"defaultPreset,omitempty" yaml:"defaultPreset,omitempty"`
}

// Dependencies lists the visibility, enablement and value rules of a style.
type Dependencies struct {
	EnableSections   []string       `json:"enableSections,omitempty" yaml:"enableSections,omitempty"`
	CollapseSections []string       `json:"collapseSections,omitempty" yaml:"collapseSections,omitempty"`
	DisableFields    []string       `json:"disableFields,omitempty" yaml:"disableFields,omitempty"`
	EnableFields     []string       `json:"enableFields,omitempty" yaml:"enableFields,omitempty"`
	HideFields       []string       `json:"hideFields,omitempty" yaml:"hideFields,omitempty"`
	Autoset          map[string]any `json:"autoset,omitempty" yaml:"autoset,omitempty"`
	PresetGroups     []string       `json:"presetGroups,omitempty" yaml:"presetGroups,omitempty"`
}

// Preset is a bulk field-value assignment scoped to one style.
type Preset struct {
	Key         string         `json:"key" yaml:"key"`
	Label       string         `json:"label" yaml:"label"`
	Style       string         `json:"style" yaml:"style"`
	Substyles   []string       `json:"substyles,omitempty" yaml:"substyles,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Values      map[string]any `json:"values,omitempty" yaml:"values,omitempty"`
}

// ObjectsConfig configures the additional objects sub-form.
type ObjectsConfig struct {
	IDPrefix     string              `json:"idPrefix" yaml:"idPrefix"`
	States       ObjectStates        `json:"states" yaml:"states"`
	Defaults     map[string]any      `json:"defaults" yaml:"defaults"`
	Settings     []ObjectSetting     `json:"additionalObjectSettings" yaml:"additionalObjectSettings"`
	Dependencies map[string][]string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Palette      []PaletteEntry      `json:"highlightTagPalette" yaml:"highlightTagPalette"`
}

// ObjectStates holds the state names shown for lock and collapse toggles.
// Lock lists the locked name first; Collapse lists the expanded name first.
type ObjectStates struct {
	Lock     []string `json:"lock" yaml:"lock"`
	Collapse []string `json:"collapse" yaml:"collapse"`
}

// ObjectSetting describes one per-object control.
type ObjectSetting struct {
	Key         string    `json:"key" yaml:"key"`
	Type        FieldKind `json:"type" yaml:"type"`
	Label       string    `json:"label" yaml:"label"`
	Options     []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Default     any       `json:"default,omitempty" yaml:"default,omitempty"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Min         int       `json:"min,omitempty" yaml:"min,omitempty"`
	Max         int       `json:"max,omitempty" yaml:"max,omitempty"`
	Step        int       `json:"step,omitempty" yaml:"step,omitempty"`
}

// PaletteEntry maps a highlight tag key and label to a display color.
type PaletteEntry struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Color string `json:"color" yaml:"color"`
}

// StorageConfig configures the persistence gateway.
type StorageConfig struct {
	Key                string
	SchemaVersion      int
	AutosaveDebounceMs int
	// HistoryLimit bounds stored history; negative means unbounded.
	HistoryLimit int
	// MigratorName is the registered migrator resolved into Migrate.
	MigratorName string
	Migrate      Migrator
}

// PromptConfig lists the prompt output formats advertised by the registry.
type PromptConfig struct {
	DefaultLocale string   `json:"defaultLocale" yaml:"defaultLocale"`
	Formats       []string `json:"formats" yaml:"formats"`
}

// Issue is a soft configuration problem. Loading never fails on issues.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// styleList decodes styles declared either as a sequence or as a mapping
// keyed by style key, keeping declaration order in both cases.
type styleList []Style

func (l *styleList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var styles []Style
		if err := node.Decode(&styles); err != nil {
			return err
		}
		*l = styles
		return nil
	case yaml.MappingNode:
		styles := make([]Style, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var style Style
			if err := node.Content[i+1].Decode(&style); err != nil {
				return fmt.Errorf("style %q: %w", node.Content[i].Value, err)
			}
			if strings.TrimSpace(style.Key) == "" {
				style.Key = node.Content[i].Value
			}
			styles = append(styles, style)
		}
		*l = styles
		return nil
	default:
		return fmt.Errorf("styles must be a list or a mapping")
	}
}

func (l *styleList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if trimmed[0] == '[' {
		var styles []Style
		if err := json.Unmarshal(trimmed, &styles); err != nil {
			return err
		}
		*l = styles
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return err
	}
	var styles []Style
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var style Style
		if err := dec.Decode(&style); err != nil {
			return fmt.Errorf("style %q: %w", key, err)
		}
		if strings.TrimSpace(style.Key) == "" {
			style.Key = key
		}
		styles = append(styles, style)
	}
	*l = styles
	return nil
}

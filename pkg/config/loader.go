package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFS parses a JSON or YAML registry document from fsys.
func LoadFS(fsys fs.FS, path string) (*Registry, error) {
	if fsys == nil {
		return nil, fmt.Errorf("config: filesystem is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFile parses a registry document from disk.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, filepath.Base(path))
}

// Parse decodes a registry document. Only empty or undecodable input fails;
// malformed entries are recorded as Issues and replaced by permissive
// defaults.
func Parse(data []byte, source string) (*Registry, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}
	return build(doc), nil
}

type documentFile struct {
	Version    string        `json:"version" yaml:"version"`
	Storage    storageFile   `json:"storage" yaml:"storage"`
	FieldOrder []string      `json:"fieldOrder" yaml:"fieldOrder"`
	Tasks      []string      `json:"tasks" yaml:"tasks"`
	Sections   []Section     `json:"sections" yaml:"sections"`
	Fields     []Field       `json:"fields" yaml:"fields"`
	Objects    ObjectsConfig `json:"objects" yaml:"objects"`
	Styles     styleList     `json:"styles" yaml:"styles"`
	Presets    []Preset      `json:"presets" yaml:"presets"`
	Prompt     PromptConfig  `json:"prompt" yaml:"prompt"`
}

type storageFile struct {
	Key                string `json:"key" yaml:"key"`
	SchemaVersion      int    `json:"schemaVersion" yaml:"schemaVersion"`
	AutosaveDebounceMs *int   `json:"autosaveDebounceMs" yaml:"autosaveDebounceMs"`
	HistoryLimit       *int   `json:"historyLimit" yaml:"historyLimit"`
	Migrator           string `json:"migrator" yaml:"migrator"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("config: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("config: parse %s: invalid JSON or YAML", source)
}

func build(doc documentFile) *Registry {
	reg := &Registry{
		Version:    strings.TrimSpace(doc.Version),
		FieldOrder: trimAll(doc.FieldOrder),
		Tasks:      trimAll(doc.Tasks),
		Sections:   append([]Section(nil), doc.Sections...),
		Fields:     append([]Field(nil), doc.Fields...),
		Objects:    doc.Objects,
		Prompt:     doc.Prompt,
	}

	if reg.Version == "" {
		reg.Version = "0.1.0"
	}
	if len(reg.Tasks) == 0 {
		reg.Tasks = []string{DefaultTask}
	}
	if len(reg.Fields) == 0 {
		reg.addIssue("fields", "no field catalog declared, using the embedded catalog")
		if fallback, err := defaultRegistry(); err == nil {
			reg.Fields = append([]Field(nil), fallback.Fields...)
			if len(reg.Sections) == 0 {
				reg.Sections = append([]Section(nil), fallback.Sections...)
			}
		}
	}

	reg.Storage = buildStorage(reg, doc.Storage)
	reg.buildFields()
	reg.buildSections()
	reg.buildStyles(doc.Styles)
	reg.buildPresets(doc.Presets)
	reg.buildObjects()
	reg.buildPrompt()
	reg.Issues = append(reg.Issues, reg.Validate()...)
	return reg
}

func buildStorage(reg *Registry, raw storageFile) StorageConfig {
	cfg := StorageConfig{
		Key:                strings.TrimSpace(raw.Key),
		SchemaVersion:      raw.SchemaVersion,
		AutosaveDebounceMs: 750,
		HistoryLimit:       -1,
		MigratorName:       strings.TrimSpace(raw.Migrator),
	}
	if cfg.Key == "" {
		cfg.Key = "nanobana:state"
	}
	if cfg.SchemaVersion <= 0 {
		cfg.SchemaVersion = 1
	}
	if raw.AutosaveDebounceMs != nil && *raw.AutosaveDebounceMs >= 0 {
		cfg.AutosaveDebounceMs = *raw.AutosaveDebounceMs
	}
	if raw.HistoryLimit != nil {
		cfg.HistoryLimit = *raw.HistoryLimit
	}
	if cfg.MigratorName != "" {
		fn, ok := LookupMigrator(cfg.MigratorName)
		if !ok {
			reg.addIssue("storage.migrator", fmt.Sprintf("unknown migrator %q", cfg.MigratorName))
		}
		cfg.Migrate = fn
	}
	return cfg
}

func (r *Registry) buildFields() {
	r.fieldIndex = make(map[string]int, len(r.Fields))
	fields := r.Fields[:0]
	for _, field := range r.Fields {
		field.ID = strings.TrimSpace(field.ID)
		if field.ID == "" {
			r.addIssue("fields", "field without id ignored")
			continue
		}
		if _, exists := r.fieldIndex[field.ID]; exists {
			r.addIssue("fields."+field.ID, "duplicate field ignored")
			continue
		}
		if field.Kind == "" {
			field.Kind = KindText
		}
		if field.Label == "" {
			field.Label = field.ID
		}
		field.Options = append([]string(nil), field.Options...)
		field.Default = Scalar(field.Default)
		r.fieldIndex[field.ID] = len(fields)
		fields = append(fields, field)
	}
	r.Fields = fields
}

func (r *Registry) buildSections() {
	seen := make(map[string]struct{}, len(r.Sections))
	sections := make([]Section, 0, len(r.Sections))
	for _, section := range r.Sections {
		section.Key = strings.TrimSpace(section.Key)
		if section.Key == "" {
			continue
		}
		if _, ok := seen[section.Key]; ok {
			continue
		}
		seen[section.Key] = struct{}{}
		if section.Label == "" {
			section.Label = section.Key
		}
		sections = append(sections, section)
	}
	for _, key := range r.FieldOrder {
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		seen[key] = struct{}{}
		sections = append(sections, Section{Key: key, Label: key})
	}
	for _, field := range r.Fields {
		if _, ok := seen[field.Section]; ok || field.Section == "" {
			continue
		}
		seen[field.Section] = struct{}{}
		sections = append(sections, Section{Key: field.Section, Label: field.Section})
	}
	r.Sections = sections
	if len(r.FieldOrder) == 0 {
		for _, section := range sections {
			r.FieldOrder = append(r.FieldOrder, section.Key)
		}
	}
}

func (r *Registry) buildStyles(raw []Style) {
	r.styleIndex = make(map[string]int, len(raw))
	styles := make([]Style, 0, len(raw))
	for _, style := range raw {
		style.Key = strings.TrimSpace(style.Key)
		if style.Key == "" {
			r.addIssue("styles", "style without key ignored")
			continue
		}
		if _, exists := r.styleIndex[style.Key]; exists {
			r.addIssue("styles."+style.Key, "duplicate style ignored")
			continue
		}
		if style.Label == "" {
			style.Label = style.Key
		}
		style.Defaults = scalarMap(style.Defaults)
		style.Dependencies.Autoset = scalarMap(style.Dependencies.Autoset)
		r.styleIndex[style.Key] = len(styles)
		styles = append(styles, style)
	}
	r.Styles = styles

	if idx, ok := r.fieldIndex[FieldMainStyle]; ok && len(r.Fields[idx].Options) == 0 {
		r.Fields[idx].Options = r.StyleKeys()
	}
	if idx, ok := r.fieldIndex[FieldMainStyle]; ok && r.Fields[idx].Default == nil && len(styles) > 0 {
		r.Fields[idx].Default = styles[0].Key
	}
}

func (r *Registry) buildPresets(raw []Preset) {
	r.presetIndex = make(map[string]int, len(raw))
	presets := make([]Preset, 0, len(raw))
	for _, preset := range raw {
		preset.Key = strings.TrimSpace(preset.Key)
		if preset.Key == "" {
			r.addIssue("presets", "preset without key ignored")
			continue
		}
		if _, exists := r.presetIndex[preset.Key]; exists {
			r.addIssue("presets."+preset.Key, "duplicate preset ignored")
			continue
		}
		if preset.Label == "" {
			preset.Label = preset.Key
		}
		preset.Style = strings.TrimSpace(preset.Style)
		preset.Values = scalarMap(preset.Values)
		r.presetIndex[preset.Key] = len(presets)
		presets = append(presets, preset)
	}
	r.Presets = presets
}

func (r *Registry) buildObjects() {
	obj := &r.Objects
	obj.IDPrefix = strings.TrimSpace(obj.IDPrefix)
	if obj.IDPrefix == "" {
		obj.IDPrefix = "obj"
	}
	if len(obj.States.Lock) < 2 {
		obj.States.Lock = []string{"locked", "unlocked"}
	}
	if len(obj.States.Collapse) < 2 {
		obj.States.Collapse = []string{"expanded", "collapsed"}
	}
	defaults := map[string]any{
		"weight":     "balanced",
		"priority":   "primary",
		"scale":      "medium",
		"importance": "50",
	}
	for key, value := range obj.Defaults {
		defaults[key] = value
	}
	obj.Defaults = scalarMap(defaults)

	palette := obj.Palette[:0]
	for i, entry := range obj.Palette {
		entry.Key = strings.TrimSpace(entry.Key)
		if entry.Key == "" {
			r.addIssue(fmt.Sprintf("objects.highlightTagPalette[%d]", i), "palette entry without key ignored")
			continue
		}
		palette = append(palette, entry)
	}
	obj.Palette = palette
}

func (r *Registry) buildPrompt() {
	if r.Prompt.DefaultLocale == "" {
		r.Prompt.DefaultLocale = "en"
	}
	if len(r.Prompt.Formats) == 0 {
		r.Prompt.Formats = []string{"paragraph"}
	}
}

func (r *Registry) addIssue(path, message string) {
	r.Issues = append(r.Issues, Issue{Path: path, Message: message})
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

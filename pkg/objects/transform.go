package objects

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-promptform/pkg/config"
)

// DefaultImportance is used when neither the entry nor the configuration
// carries a parsable importance.
const DefaultImportance = 50

// Canonical is the wire shape of an object inside the synthesized document.
// Empty members are omitted.
type Canonical struct {
	ID              string         `json:"id,omitempty"`
	Description     string         `json:"description,omitempty"`
	Characteristics []string       `json:"characteristics,omitempty"`
	HighlightTags   []HighlightTag `json:"highlight_tags,omitempty"`
	Settings        *Settings      `json:"additional_object_settings,omitempty"`
	Relations       *Relations     `json:"relations,omitempty"`
	States          *States        `json:"states,omitempty"`
}

// HighlightTag is a resolved tag with an optional display color.
type HighlightTag struct {
	Tag   string `json:"tag"`
	Color string `json:"color,omitempty"`
}

// Settings groups the per-object modifiers.
type Settings struct {
	Weight           string `json:"weight,omitempty"`
	Priority         string `json:"priority,omitempty"`
	Scale            string `json:"scale,omitempty"`
	Position         string `json:"position,omitempty"`
	Material         string `json:"material,omitempty"`
	Structure        string `json:"structure,omitempty"`
	Texture          string `json:"texture,omitempty"`
	Importance       *int   `json:"importance,omitempty"`
	InteractionNotes string `json:"interaction_notes,omitempty"`
}

// Relations lists the ids an object interacts with. References are not
// checked against the list.
type Relations struct {
	InteractsWith []string `json:"interacts_with,omitempty"`
}

// States carries the persisted lock and collapse flags.
type States struct {
	Locked    bool `json:"locked,omitempty"`
	Collapsed bool `json:"collapsed,omitempty"`
}

// TransformAll converts entries in order, dropping the content-less ones.
func TransformAll(entries []Entry, cfg config.ObjectsConfig) []Canonical {
	var out []Canonical
	for _, entry := range entries {
		if canonical := Transform(entry, cfg); canonical != nil {
			out = append(out, *canonical)
		}
	}
	return out
}

// Transform converts a form entry into its wire shape. It returns nil when
// the entry carries no description, characteristics, highlight tags or
// free-text settings.
func Transform(entry Entry, cfg config.ObjectsConfig) *Canonical {
	characteristics := ParseList(entry.Characteristics)
	tags := ParseHighlightTags(entry.HighlightTags, cfg.Palette)
	interactions := ParseList(entry.Interactions)

	description := strings.TrimSpace(entry.Description)
	position := strings.TrimSpace(entry.Position)
	material := strings.TrimSpace(entry.Material)
	structure := strings.TrimSpace(entry.Structure)
	texture := strings.TrimSpace(entry.Texture)
	notes := strings.TrimSpace(entry.InteractionNotes)

	if description == "" && len(characteristics) == 0 && len(tags) == 0 &&
		position == "" && material == "" && structure == "" && texture == "" && notes == "" {
		return nil
	}

	out := &Canonical{
		ID:              strings.TrimSpace(entry.ObjectID),
		Description:     description,
		Characteristics: characteristics,
		HighlightTags:   tags,
	}

	importance := ParseImportance(entry.Importance, defaultImportance(cfg))
	settings := Settings{
		Weight:           strings.TrimSpace(entry.Weight),
		Priority:         strings.TrimSpace(entry.Priority),
		Scale:            strings.TrimSpace(entry.Scale),
		Position:         position,
		Material:         material,
		Structure:        structure,
		Texture:          texture,
		Importance:       &importance,
		InteractionNotes: notes,
	}
	out.Settings = &settings

	if len(interactions) > 0 {
		out.Relations = &Relations{InteractsWith: interactions}
	}
	if entry.Locked || entry.Collapsed {
		out.States = &States{Locked: entry.Locked, Collapsed: entry.Collapsed}
	}
	return out
}

// ParseList splits comma separated text, trimming items and dropping empty
// ones.
func ParseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseHighlightTags parses "tag:color" pairs. Tags matching a palette key or
// label (case-insensitively) are replaced by the palette key and inherit its
// color when none was given. Unknown tags are kept verbatim.
func ParseHighlightTags(raw string, palette []config.PaletteEntry) []HighlightTag {
	var out []HighlightTag
	for _, item := range ParseList(raw) {
		tag, color, _ := strings.Cut(item, ":")
		tag = strings.TrimSpace(tag)
		color = strings.TrimSpace(color)
		if tag == "" {
			continue
		}
		if entry, ok := lookupPalette(tag, palette); ok {
			tag = entry.Key
			if color == "" {
				color = entry.Color
			}
		}
		out = append(out, HighlightTag{Tag: tag, Color: color})
	}
	return out
}

// ParseImportance parses an integer importance clamped to 0..100. Empty or
// unparsable input yields fallback.
func ParseImportance(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if f, ferr := strconv.ParseFloat(strings.TrimSpace(raw), 64); ferr == nil {
			value = int(f)
		} else {
			value = fallback
		}
	}
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func lookupPalette(tag string, palette []config.PaletteEntry) (config.PaletteEntry, bool) {
	for _, entry := range palette {
		if strings.EqualFold(entry.Key, tag) || (entry.Label != "" && strings.EqualFold(entry.Label, tag)) {
			return entry, true
		}
	}
	return config.PaletteEntry{}, false
}

func defaultImportance(cfg config.ObjectsConfig) int {
	if raw, ok := cfg.Defaults[FieldImportance]; ok {
		if value, err := strconv.Atoi(strings.TrimSpace(textValue(raw))); err == nil {
			return value
		}
	}
	return DefaultImportance
}

// SeedFromCanonical inverts Transform for a decoded document object. It also
// accepts the legacy shape with style_tags and top level scale or position.
// The result is a seed for Manager.NewEntry.
func SeedFromCanonical(raw map[string]any) map[string]any {
	seed := make(map[string]any)
	if id := textValue(raw["id"]); id != "" {
		seed[FieldObjectID] = id
	} else if id := textValue(raw[FieldObjectID]); id != "" {
		seed[FieldObjectID] = id
	}
	if value := textValue(raw["description"]); value != "" {
		seed[FieldDescription] = value
	}
	if value := textValue(raw["characteristics"]); value != "" {
		seed[FieldCharacteristics] = value
	}

	tags := textValue(raw["highlight_tags"])
	if tags == "" {
		tags = textValue(raw["style_tags"])
	}
	if tags != "" {
		seed[FieldHighlightTags] = tags
	}

	for _, legacy := range []string{FieldScale, FieldPosition} {
		if value := textValue(raw[legacy]); value != "" {
			seed[legacy] = value
		}
	}

	if settings, ok := raw["additional_object_settings"].(map[string]any); ok {
		for wire, field := range map[string]string{
			"weight":            FieldWeight,
			"priority":          FieldPriority,
			"scale":             FieldScale,
			"position":          FieldPosition,
			"material":          FieldMaterial,
			"structure":         FieldStructure,
			"texture":           FieldTexture,
			"importance":        FieldImportance,
			"interaction_notes": FieldInteractionNotes,
		} {
			if value := textValue(settings[wire]); value != "" {
				seed[field] = value
			}
		}
	}

	if relations, ok := raw["relations"].(map[string]any); ok {
		if value := textValue(relations["interacts_with"]); value != "" {
			seed[FieldInteractions] = value
		}
	}
	if states, ok := raw["states"].(map[string]any); ok {
		seed[FieldLocked] = truthy(states["locked"])
		seed[FieldCollapsed] = truthy(states["collapsed"])
	}
	return seed
}

package objects

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names of an entry, as used by the form and persisted snapshots.
const (
	FieldObjectID         = "objectId"
	FieldDescription      = "description"
	FieldCharacteristics  = "characteristics"
	FieldPriority         = "priority"
	FieldWeight           = "weight"
	FieldScale            = "scale"
	FieldPosition         = "position"
	FieldImportance       = "importance"
	FieldMaterial         = "material"
	FieldStructure        = "structure"
	FieldTexture          = "texture"
	FieldHighlightTags    = "highlightTags"
	FieldInteractions     = "interactions"
	FieldInteractionNotes = "interactionNotes"
	FieldLocked           = "locked"
	FieldCollapsed        = "collapsed"
)

// Entry is the form representation of one additional object. List fields
// (characteristics, highlight tags, interactions) hold the raw comma separated
// text.
type Entry struct {
	ObjectID         string `json:"objectId"`
	Description      string `json:"description"`
	Characteristics  string `json:"characteristics"`
	Priority         string `json:"priority"`
	Weight           string `json:"weight"`
	Scale            string `json:"scale"`
	Position         string `json:"position"`
	Importance       string `json:"importance"`
	Material         string `json:"material"`
	Structure        string `json:"structure"`
	Texture          string `json:"texture"`
	HighlightTags    string `json:"highlightTags"`
	Interactions     string `json:"interactions"`
	InteractionNotes string `json:"interactionNotes"`
	Locked           bool   `json:"locked"`
	Collapsed        bool   `json:"collapsed"`
}

// Fields lists entry fields in form order.
func Fields() []string {
	return []string{
		FieldObjectID, FieldDescription, FieldCharacteristics, FieldPriority,
		FieldWeight, FieldScale, FieldPosition, FieldImportance, FieldMaterial,
		FieldStructure, FieldTexture, FieldHighlightTags, FieldInteractions,
		FieldInteractionNotes, FieldLocked, FieldCollapsed,
	}
}

// Map returns the entry as a snapshot object.
func (e Entry) Map() map[string]any {
	out := make(map[string]any, 16)
	for _, field := range Fields() {
		value, _ := e.Value(field)
		out[field] = value
	}
	return out
}

// Value returns the value of field: a string, or a bool for the state flags.
func (e Entry) Value(field string) (any, bool) {
	if ptr := e.text(field); ptr != nil {
		return *ptr, true
	}
	switch field {
	case FieldLocked:
		return e.Locked, true
	case FieldCollapsed:
		return e.Collapsed, true
	}
	return nil, false
}

func (e *Entry) text(field string) *string {
	switch field {
	case FieldObjectID:
		return &e.ObjectID
	case FieldDescription:
		return &e.Description
	case FieldCharacteristics:
		return &e.Characteristics
	case FieldPriority:
		return &e.Priority
	case FieldWeight:
		return &e.Weight
	case FieldScale:
		return &e.Scale
	case FieldPosition:
		return &e.Position
	case FieldImportance:
		return &e.Importance
	case FieldMaterial:
		return &e.Material
	case FieldStructure:
		return &e.Structure
	case FieldTexture:
		return &e.Texture
	case FieldHighlightTags:
		return &e.HighlightTags
	case FieldInteractions:
		return &e.Interactions
	case FieldInteractionNotes:
		return &e.InteractionNotes
	}
	return nil
}

// set assigns a loosely typed value to field.
func (e *Entry) set(field string, value any) error {
	if ptr := e.text(field); ptr != nil {
		*ptr = textValue(value)
		return nil
	}
	switch field {
	case FieldLocked:
		e.Locked = truthy(value)
	case FieldCollapsed:
		e.Collapsed = truthy(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// FromMap decodes a snapshot object leniently: list values are comma joined,
// numbers stringified and legacy keys (id, style_tags, styleTags) honoured.
// Keys absent from raw keep their zero value.
func FromMap(raw map[string]any) Entry {
	var entry Entry
	for key, value := range raw {
		_ = entry.set(key, value)
	}
	if entry.ObjectID == "" {
		entry.ObjectID = textValue(raw["id"])
	}
	if entry.HighlightTags == "" {
		for _, legacy := range []string{"style_tags", "styleTags"} {
			if text := textValue(raw[legacy]); text != "" {
				entry.HighlightTags = text
				break
			}
		}
	}
	return entry
}

func textValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if text := textValue(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if tag := textValue(v["tag"]); tag != "" {
			if color := textValue(v["color"]); color != "" {
				return tag + ":" + color
			}
			return tag
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return parsed
		}
		return strings.TrimSpace(v) != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

// Package snapshot defines the unit of saved and exported form state.
package snapshot

import (
	"encoding/json"
	"fmt"
)

// Snapshot captures the controls, the object entries and, optionally, the
// derived document and prompt at one point in time. Objects are kept in form
// shape so defaults can fill keys an older writer did not know about.
type Snapshot struct {
	Task     string           `json:"task"`
	Controls map[string]any   `json:"controls"`
	Objects  []map[string]any `json:"objects"`
	JSON     json.RawMessage  `json:"json,omitempty"`
	Prompt   string           `json:"prompt,omitempty"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Task:   s.Task,
		Prompt: s.Prompt,
	}
	if s.Controls != nil {
		out.Controls = make(map[string]any, len(s.Controls))
		for key, value := range s.Controls {
			out.Controls[key] = value
		}
	}
	if s.Objects != nil {
		out.Objects = make([]map[string]any, len(s.Objects))
		for i, obj := range s.Objects {
			copied := make(map[string]any, len(obj))
			for key, value := range obj {
				copied[key] = value
			}
			out.Objects[i] = copied
		}
	}
	if s.JSON != nil {
		out.JSON = append(json.RawMessage(nil), s.JSON...)
	}
	return out
}

// Control returns the control value for id.
func (s Snapshot) Control(id string) (any, bool) {
	value, ok := s.Controls[id]
	return value, ok
}

// Map converts s into the generic shape migrators operate on.
func (s Snapshot) Map() (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return out, nil
}

// FromMap decodes a generic snapshot map. Controls that are neither strings
// nor booleans are converted to strings.
func FromMap(raw map[string]any) (Snapshot, error) {
	if raw == nil {
		return Snapshot{}, fmt.Errorf("snapshot: data is nil")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: encode: %w", err)
	}
	return Decode(data)
}

// Decode parses a JSON snapshot.
func Decode(data []byte) (Snapshot, error) {
	var out Snapshot
	if err := json.Unmarshal(data, &out); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: decode: %w", err)
	}
	return out, nil
}

// UnmarshalJSON decodes s and coerces control values to strings or booleans.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type plain Snapshot
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	for key, value := range decoded.Controls {
		decoded.Controls[key] = controlValue(value)
	}
	*s = Snapshot(decoded)
	return nil
}

func controlValue(value any) any {
	switch v := value.(type) {
	case nil:
		return ""
	case string, bool:
		return v
	case float64:
		return fmt.Sprint(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}

package interchange

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/document"
	"github.com/goliatone/go-promptform/pkg/objects"
	"github.com/goliatone/go-promptform/pkg/snapshot"
)

// sectionFields maps document section members to control ids where the
// control id is not the camelCase form of the member name.
var sectionFields = map[string]map[string]string{
	"lighting": {
		"type":      "lightType",
		"direction": "lightDirection",
		"scheme":    "lightingScheme",
	},
	"atmosphere": {
		"weather": "weatherCondition",
		"notes":   "atmosphereNotes",
	},
	"composition":     nil,
	"quality":         nil,
	"restrictions":    nil,
	"camera_settings": nil,
}

// FromDocument rebuilds a form snapshot from a bare prompt document. Members
// without a matching control in reg are dropped.
func FromDocument(raw map[string]any, reg *config.Registry) (snapshot.Snapshot, error) {
	if err := ValidateDocument(raw); err != nil {
		return snapshot.Snapshot{}, err
	}

	controls := make(map[string]any)
	set := func(id string, value any) {
		if _, ok := reg.Field(id); ok {
			controls[id] = controlValue(value)
		}
	}

	task, description := SplitTask(textOf(raw["task"]), reg.Tasks)
	set(config.FieldTaskDescription, description)

	styleValue, _ := raw["style"].(map[string]any)
	styleKey := textOf(styleValue["main_style"])
	if styleKey == "" {
		styleKey = textOf(styleValue["key"])
	}
	set(config.FieldMainStyle, styleKey)
	if preset := textOf(styleValue["preset"]); preset != "" {
		set(config.FieldStylePreset, preset)
	}
	if settings, ok := styleValue["settings"].(map[string]any); ok {
		for key, value := range settings {
			set(document.CamelCase(key), value)
		}
	}

	for section, overrides := range sectionFields {
		values, ok := raw[section].(map[string]any)
		if !ok {
			continue
		}
		for key, value := range values {
			id, ok := overrides[key]
			if !ok {
				id = document.CamelCase(key)
			}
			set(id, value)
		}
	}

	var list []map[string]any
	if items, ok := raw["additional_objects"].([]any); ok {
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			seed := objects.SeedFromCanonical(obj)
			if objects.Transform(objects.FromMap(seed), reg.Objects) == nil {
				continue
			}
			list = append(list, seed)
		}
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("interchange: encode document: %w", err)
	}

	snap := snapshot.Snapshot{
		Task:     task,
		Controls: controls,
		Objects:  list,
		JSON:     encoded,
	}
	var doc document.Document
	if err := json.Unmarshal(encoded, &doc); err == nil {
		snap.Prompt = document.Prompt(doc)
	}
	return snap, nil
}

// SplitTask separates a document task into the selected task and its
// description. A prefix outside tasks selects the first task and keeps the
// whole value as the description.
func SplitTask(value string, tasks []string) (string, string) {
	fallback := config.DefaultTask
	if len(tasks) > 0 {
		fallback = tasks[0]
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, ""
	}

	head, rest, found := strings.Cut(value, ":")
	head = strings.TrimSpace(head)
	for _, task := range tasks {
		if task == head {
			return task, strings.TrimSpace(rest)
		}
	}
	if !found && len(tasks) == 0 {
		return head, ""
	}
	return fallback, value
}

func controlValue(value any) any {
	switch v := value.(type) {
	case nil:
		return ""
	case string, bool:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

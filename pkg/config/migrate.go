package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Migrator upgrades a stored payload ({schemaVersion, timestamp, data,
// history}) to target. Implementations must be idempotent and must not mutate
// the input.
type Migrator func(payload map[string]any, target int) (map[string]any, error)

// MigratorLegacyObjects names the built-in object shape migration.
const MigratorLegacyObjects = "legacy-objects"

var (
	migratorsMu sync.RWMutex
	migrators   = map[string]Migrator{
		MigratorLegacyObjects: MigrateLegacyObjects,
	}
)

// RegisterMigrator makes fn resolvable from a registry document's
// storage.migrator entry. Duplicate names return an error.
func RegisterMigrator(name string, fn Migrator) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return fmt.Errorf("config: migrator name and function required")
	}
	migratorsMu.Lock()
	defer migratorsMu.Unlock()
	if _, exists := migrators[name]; exists {
		return fmt.Errorf("config: migrator %q already registered", name)
	}
	migrators[name] = fn
	return nil
}

// LookupMigrator returns the migrator registered under name.
func LookupMigrator(name string) (Migrator, bool) {
	migratorsMu.RLock()
	defer migratorsMu.RUnlock()
	fn, ok := migrators[name]
	return fn, ok
}

// Migrators lists registered migrator names.
func Migrators() []string {
	migratorsMu.RLock()
	defer migratorsMu.RUnlock()
	names := make([]string, 0, len(migrators))
	for name := range migrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MigrateLegacyObjects rewrites the object lists of data and every history
// entry into the current form shape. Objects already carrying string
// priority, weight or highlightTags are left as they are.
func MigrateLegacyObjects(payload map[string]any, target int) (map[string]any, error) {
	if payload == nil {
		return nil, nil
	}

	out := make(map[string]any, len(payload))
	for key, value := range payload {
		out[key] = value
	}

	if data, ok := payload["data"].(map[string]any); ok {
		out["data"] = migrateSnapshot(data)
	}

	if history, ok := payload["history"].([]any); ok {
		migrated := make([]any, len(history))
		for i, item := range history {
			entry, ok := item.(map[string]any)
			if !ok {
				migrated[i] = item
				continue
			}
			data, ok := entry["data"].(map[string]any)
			if !ok {
				migrated[i] = entry
				continue
			}
			copied := make(map[string]any, len(entry))
			for key, value := range entry {
				copied[key] = value
			}
			copied["data"] = migrateSnapshot(data)
			migrated[i] = copied
		}
		out["history"] = migrated
	}

	if target > 0 {
		out["schemaVersion"] = target
	}
	return out, nil
}

func migrateSnapshot(snapshot map[string]any) map[string]any {
	list, ok := snapshot["objects"].([]any)
	if !ok {
		return snapshot
	}

	objects := make([]any, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok || isCurrentObject(obj) {
			objects[i] = item
			continue
		}
		objects[i] = migrateObject(obj, i)
	}

	out := make(map[string]any, len(snapshot))
	for key, value := range snapshot {
		out[key] = value
	}
	out["objects"] = objects
	return out
}

func isCurrentObject(obj map[string]any) bool {
	for _, key := range []string{"priority", "weight", "highlightTags"} {
		if _, ok := obj[key].(string); ok {
			return true
		}
	}
	return false
}

func migrateObject(obj map[string]any, index int) map[string]any {
	id := firstString(obj, "objectId", "id")
	if id == "" {
		id = "legacy-" + strconv.Itoa(index+1)
	}
	tags := obj["style_tags"]
	if isEmptyValue(tags) {
		tags = obj["styleTags"]
	}
	scale := firstString(obj, "scale")
	if scale == "" {
		scale = "medium"
	}

	return map[string]any{
		"objectId":         id,
		"description":      firstString(obj, "description"),
		"characteristics":  strings.Join(ensureList(obj["characteristics"]), ", "),
		"priority":         "primary",
		"weight":           "balanced",
		"scale":            scale,
		"position":         firstString(obj, "position"),
		"importance":       "50",
		"material":         firstString(obj, "material"),
		"structure":        firstString(obj, "structure"),
		"texture":          firstString(obj, "texture"),
		"highlightTags":    strings.Join(ensureList(tags), ", "),
		"interactions":     "",
		"interactionNotes": firstString(obj, "interactionNotes"),
		"locked":           false,
		"collapsed":        false,
	}
}

func firstString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := obj[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}

func ensureList(value any) []string {
	switch v := value.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return append([]string(nil), v...)
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	default:
		return nil
	}
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return false
	default:
		return false
	}
}

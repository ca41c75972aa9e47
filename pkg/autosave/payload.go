package autosave

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/goliatone/go-promptform/pkg/snapshot"
)

// TimestampLayout is the ISO-8601 UTC layout used for payload timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Payload is the stored record under the storage key.
type Payload struct {
	SchemaVersion int                `json:"schemaVersion"`
	Timestamp     string             `json:"timestamp"`
	Data          *snapshot.Snapshot `json:"data"`
	History       []HistoryEntry     `json:"history"`
}

// HistoryEntry is one earlier save.
type HistoryEntry struct {
	Timestamp string             `json:"timestamp"`
	Data      *snapshot.Snapshot `json:"data"`
}

// Restored is what Load hands back to the controller.
type Restored struct {
	Data      snapshot.Snapshot
	Timestamp string
	History   []HistoryEntry
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// DecodePayload parses a stored payload.
func DecodePayload(data []byte) (Payload, error) {
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Payload{}, fmt.Errorf("autosave: decode payload: %w", err)
	}
	return payload, nil
}

// PayloadFromMap decodes the generic shape migrators return.
func PayloadFromMap(raw map[string]any) (Payload, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return Payload{}, fmt.Errorf("autosave: encode payload: %w", err)
	}
	return DecodePayload(data)
}

// appendHistory adds entry and drops the oldest entries beyond limit. A
// negative limit keeps everything.
func appendHistory(history []HistoryEntry, entry HistoryEntry, limit int) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(history)+1)
	out = append(out, history...)
	out = append(out, entry)
	if limit >= 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func schemaOf(raw map[string]any) int {
	switch v := raw["schemaVersion"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

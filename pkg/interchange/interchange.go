package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-promptform/pkg/autosave"
	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/document"
	"github.com/goliatone/go-promptform/pkg/snapshot"
)

// ExportType tags files written by Export.
const ExportType = "nanobana-prompt"

// Kind identifies the shape an imported file was recognized as.
type Kind string

const (
	KindExport   Kind = "export"
	KindAutosave Kind = "autosave"
	KindDocument Kind = "document"
)

// ExportFile is the on-disk export format.
type ExportFile struct {
	Type          string            `json:"type"`
	Version       string            `json:"version"`
	SchemaVersion int               `json:"schemaVersion"`
	ExportedAt    string            `json:"exportedAt"`
	Snapshot      snapshot.Snapshot `json:"snapshot"`
	Data          document.Document `json:"data"`
	Prompt        string            `json:"prompt"`
}

// Meta stamps an export.
type Meta struct {
	Version       string
	SchemaVersion int
	Now           time.Time
}

// Export bundles snap and its document. The snapshot is cloned and carries
// the document and prompt it produced.
func Export(snap snapshot.Snapshot, doc document.Document, meta Meta) (ExportFile, error) {
	encoded, err := document.Marshal(doc)
	if err != nil {
		return ExportFile{}, fmt.Errorf("interchange: export: %w", err)
	}
	now := meta.Now
	if now.IsZero() {
		now = time.Now()
	}
	prompt := document.Prompt(doc)

	out := snap.Clone()
	out.JSON = encoded
	out.Prompt = prompt

	return ExportFile{
		Type:          ExportType,
		Version:       meta.Version,
		SchemaVersion: meta.SchemaVersion,
		ExportedAt:    autosave.FormatTimestamp(now),
		Snapshot:      out,
		Data:          doc,
		Prompt:        prompt,
	}, nil
}

// Marshal renders f as two-space indented JSON.
func (f ExportFile) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("interchange: marshal export: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns the suggested export file name for now.
func Filename(now time.Time) string {
	return ExportType + "-" + now.Format("20060102-150405") + ".json"
}

// Payload is an imported file reduced to the parts the form can restore.
type Payload struct {
	Kind          Kind
	Version       string
	SchemaVersion int
	ExportedAt    string
	// Snapshot is the stored form state in generic shape, nil when the file
	// only carried a document.
	Snapshot map[string]any
	Document map[string]any
	Prompt   string
	History  []any
}

// Parse decodes the raw file contents.
func Parse(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, invalid(ErrEmpty)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Err: ErrInvalidJSON, Detail: err.Error()}
	}
	return raw, nil
}

// Normalize recognizes the shape of raw. Export files, or anything carrying
// a snapshot or data without history, come first; data with history is an
// autosave payload; everything else must validate as a bare document.
func Normalize(raw any) (Payload, error) {
	obj, ok := raw.(map[string]any)
	if !ok || obj == nil {
		return Payload{}, invalid(ErrUnsupported)
	}

	data, _ := obj["data"].(map[string]any)
	_, hasHistory := obj["history"]
	_, hasSnapshot := obj["snapshot"]

	switch {
	case textOf(obj["type"]) == ExportType || hasSnapshot || (data != nil && !hasHistory):
		out := Payload{
			Kind:          KindExport,
			Version:       textOf(obj["version"]),
			SchemaVersion: versionOf(obj["schemaVersion"]),
			ExportedAt:    textOf(obj["exportedAt"]),
			Prompt:        textOf(obj["prompt"]),
		}
		if snap, ok := obj["snapshot"].(map[string]any); ok {
			out.Snapshot = snap
		} else if hasControls(data) {
			out.Snapshot = data
		}
		if hasControls(data) {
			out.Document, _ = data["json"].(map[string]any)
		} else {
			out.Document = data
		}
		if out.Prompt == "" && data != nil {
			out.Prompt = textOf(data["prompt"])
		}
		return out, nil

	case data != nil && hasHistory:
		history, _ := obj["history"].([]any)
		out := Payload{
			Kind:          KindAutosave,
			SchemaVersion: versionOf(obj["schemaVersion"]),
			ExportedAt:    textOf(obj["timestamp"]),
			Snapshot:      data,
			Prompt:        textOf(data["prompt"]),
			History:       history,
		}
		out.Document, _ = data["json"].(map[string]any)
		return out, nil

	default:
		if err := ValidateDocument(obj); err != nil {
			return Payload{}, err
		}
		return Payload{Kind: KindDocument, Document: obj}, nil
	}
}

// Migrate brings p to the schema version of cfg. Payloads without a version
// or already current are returned unchanged. The migrator sees the storage
// shape {schemaVersion, data, history}.
func Migrate(p Payload, cfg config.StorageConfig) (Payload, error) {
	if p.SchemaVersion == 0 || cfg.SchemaVersion == 0 || p.SchemaVersion == cfg.SchemaVersion {
		return p, nil
	}
	if cfg.Migrate == nil {
		return Payload{}, &MigrationError{From: p.SchemaVersion, To: cfg.SchemaVersion, Err: ErrUnsupportedSchema}
	}

	history := p.History
	if history == nil {
		history = []any{}
	}
	stored := map[string]any{
		"schemaVersion": p.SchemaVersion,
		"history":       history,
	}
	if p.Snapshot != nil {
		stored["data"] = p.Snapshot
	}

	migrated, err := cfg.Migrate(stored, cfg.SchemaVersion)
	if err != nil {
		return Payload{}, &MigrationError{From: p.SchemaVersion, To: cfg.SchemaVersion, Err: err}
	}
	if migrated == nil {
		return Payload{}, &MigrationError{From: p.SchemaVersion, To: cfg.SchemaVersion, Err: fmt.Errorf("migrator returned no payload")}
	}

	out := p
	out.SchemaVersion = cfg.SchemaVersion
	if p.Snapshot != nil {
		data, ok := migrated["data"].(map[string]any)
		if !ok {
			return Payload{}, &MigrationError{From: p.SchemaVersion, To: cfg.SchemaVersion, Err: fmt.Errorf("migrated payload has no data")}
		}
		out.Snapshot = data
	}
	if history, ok := migrated["history"].([]any); ok {
		out.History = history
	}
	return out, nil
}

// Resolve turns p into a snapshot the controller can apply. A stored
// snapshot with controls wins; otherwise the form state is rebuilt from the
// document.
func Resolve(p Payload, reg *config.Registry) (snapshot.Snapshot, error) {
	if hasControls(p.Snapshot) {
		snap, err := snapshot.FromMap(p.Snapshot)
		if err != nil {
			return snapshot.Snapshot{}, fmt.Errorf("interchange: %w", err)
		}
		if snap.Prompt == "" {
			snap.Prompt = p.Prompt
		}
		return snap, nil
	}
	if p.Document != nil {
		snap, err := FromDocument(p.Document, reg)
		if err != nil {
			return snapshot.Snapshot{}, err
		}
		if p.Prompt != "" {
			snap.Prompt = p.Prompt
		}
		return snap, nil
	}
	return snapshot.Snapshot{}, invalid(ErrNoUsableData)
}

// Import runs Parse, Normalize, Migrate and Resolve against reg.
func Import(data []byte, reg *config.Registry) (snapshot.Snapshot, Payload, error) {
	raw, err := Parse(data)
	if err != nil {
		return snapshot.Snapshot{}, Payload{}, err
	}
	payload, err := Normalize(raw)
	if err != nil {
		return snapshot.Snapshot{}, Payload{}, err
	}
	payload, err = Migrate(payload, reg.Storage)
	if err != nil {
		return snapshot.Snapshot{}, Payload{}, err
	}
	snap, err := Resolve(payload, reg)
	if err != nil {
		return snapshot.Snapshot{}, Payload{}, err
	}
	return snap, payload, nil
}

func hasControls(data map[string]any) bool {
	if data == nil {
		return false
	}
	_, ok := data["controls"].(map[string]any)
	return ok
}

func versionOf(value any) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func textOf(value any) string {
	s, _ := value.(string)
	return strings.TrimSpace(s)
}

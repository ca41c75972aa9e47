package interchange_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/document"
	"github.com/goliatone/go-promptform/pkg/interchange"
	"github.com/goliatone/go-promptform/pkg/snapshot"
	"github.com/goliatone/go-promptform/pkg/testsupport"
)

func restore(t *testing.T, snap snapshot.Snapshot) testsupport.Form {
	t.Helper()

	styleKey, _ := snap.Controls[config.FieldMainStyle].(string)
	f := testsupport.NewForm(t, styleKey)
	controls := make(map[string]any, len(snap.Controls))
	for key, value := range snap.Controls {
		if key != config.FieldMainStyle {
			controls[key] = value
		}
	}
	f.Store.SetMany(controls)
	f.Store.SelectTask(snap.Task)
	f.Objects.Restore(snap.Objects)
	return f
}

func decode(t *testing.T, doc document.Document) map[string]any {
	t.Helper()

	encoded, err := document.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(encoded, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return raw
}

func TestFromDocument_RoundTripsEveryStyle(t *testing.T) {
	t.Parallel()

	reg := config.Default()
	for _, key := range reg.StyleKeys() {
		key := key
		t.Run(key, func(t *testing.T) {
			t.Parallel()

			f := testsupport.NewForm(t, key)
			f.Store.SelectTask("Style Transfer")
			f.Store.Set(config.FieldTaskDescription, "a quiet harbor at dusk")
			f.Objects.Add(map[string]any{
				"description":     "red lantern",
				"characteristics": "glowing, paper",
				"highlightTags":   "focus",
			})
			want := f.Synthesize(t)

			snap, err := interchange.FromDocument(decode(t, want), reg)
			if err != nil {
				t.Fatalf("from document: %v", err)
			}
			if snap.Task != "Style Transfer" {
				t.Fatalf("task = %q", snap.Task)
			}
			if snap.Prompt != document.Prompt(want) {
				t.Fatalf("prompt not regenerated:\n%s", snap.Prompt)
			}

			got := restore(t, snap).Synthesize(t)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	t.Parallel()

	reg := config.Default()
	f := testsupport.NewForm(t, "cinematic_photo")
	f.Store.Set(config.FieldTaskDescription, "rain on neon streets")
	f.Objects.Add(map[string]any{"description": "taxi", "locked": true})
	doc := f.Synthesize(t)

	snap := snapshot.Snapshot{
		Task:     f.Store.Task(),
		Controls: f.Store.Values(),
		Objects:  f.Objects.States(),
	}
	now := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	file, err := interchange.Export(snap, doc, interchange.Meta{Version: reg.Version, SchemaVersion: reg.Storage.SchemaVersion, Now: now})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if file.Type != interchange.ExportType || file.ExportedAt != "2024-03-09T14:05:06.000Z" {
		t.Fatalf("unexpected header: %+v", file)
	}
	data, err := file.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, payload, err := interchange.Import(data, reg)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if payload.Kind != interchange.KindExport {
		t.Fatalf("kind = %q", payload.Kind)
	}
	if got.Prompt != document.Prompt(doc) {
		t.Fatalf("prompt mismatch: %q", got.Prompt)
	}
	if diff := cmp.Diff(doc, restore(t, got).Synthesize(t)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFilename(t *testing.T) {
	t.Parallel()

	got := interchange.Filename(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	if got != "nanobana-prompt-20240102-030405.json" {
		t.Fatalf("filename = %q", got)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		input   string
		want    error
		message string
	}{
		"empty":      {input: "  \n", want: interchange.ErrEmpty, message: "File is empty."},
		"bad json":   {input: "{", want: interchange.ErrInvalidJSON, message: "Invalid JSON format."},
		"array":      {input: "[1,2]", want: interchange.ErrUnsupported, message: "Unsupported file structure."},
		"no task":    {input: `{"style":{"main_style":"anime_style"}}`, want: interchange.ErrMissingFields},
		"no style":   {input: `{"task":"Image Generation","style":{"category":"art"}}`, want: interchange.ErrMissingStyle},
		"bad schema": {input: `{"task":"Image Generation","style":{"main_style":"anime_style"},"lighting":"bright"}`, want: interchange.ErrUnsupported},
		"no usable":  {input: `{"type":"nanobana-prompt","prompt":"x"}`, want: interchange.ErrNoUsableData, message: "Imported file does not contain usable data."},
	}

	reg := config.Default()
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, _, err := interchange.Import([]byte(tc.input), reg)
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
			var validation *interchange.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if tc.message != "" && interchange.Message(err) != tc.message {
				t.Fatalf("message = %q", interchange.Message(err))
			}
		})
	}
}

func TestNormalize_Shapes(t *testing.T) {
	t.Parallel()

	controls := map[string]any{"mainStyle": "anime_style"}
	cases := map[string]struct {
		raw      map[string]any
		kind     interchange.Kind
		snapshot bool
		document bool
		prompt   string
	}{
		"export": {
			raw: map[string]any{
				"type":     "nanobana-prompt",
				"snapshot": map[string]any{"controls": controls},
				"data":     map[string]any{"task": "Image Generation"},
				"prompt":   "p1",
			},
			kind: interchange.KindExport, snapshot: true, document: true, prompt: "p1",
		},
		"data with controls": {
			raw: map[string]any{
				"data": map[string]any{"controls": controls, "json": map[string]any{"task": "x"}, "prompt": "p2"},
			},
			kind: interchange.KindExport, snapshot: true, document: true, prompt: "p2",
		},
		"autosave": {
			raw: map[string]any{
				"schemaVersion": float64(2),
				"timestamp":     "2024-01-01T00:00:00.000Z",
				"data":          map[string]any{"controls": controls, "prompt": "p3"},
				"history":       []any{},
			},
			kind: interchange.KindAutosave, snapshot: true, prompt: "p3",
		},
		"bare document": {
			raw:  map[string]any{"task": "Image Generation", "style": map[string]any{"key": "anime_style"}},
			kind: interchange.KindDocument, document: true,
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := interchange.Normalize(tc.raw)
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if got.Kind != tc.kind {
				t.Fatalf("kind = %q, want %q", got.Kind, tc.kind)
			}
			if (got.Snapshot != nil) != tc.snapshot || (got.Document != nil) != tc.document {
				t.Fatalf("snapshot=%v document=%v", got.Snapshot != nil, got.Document != nil)
			}
			if got.Prompt != tc.prompt {
				t.Fatalf("prompt = %q", got.Prompt)
			}
		})
	}
}

func TestImport_MigratesLegacyExport(t *testing.T) {
	t.Parallel()

	input := `{
  "type": "nanobana-prompt",
  "schemaVersion": 1,
  "snapshot": {
    "task": "Image Generation",
    "controls": {"mainStyle": "watercolor", "taskDescription": "old harbor"},
    "objects": [
      {"description": "red lantern", "style_tags": ["focus", "accent"], "scale": "small"}
    ]
  }
}`
	snap, payload, err := interchange.Import([]byte(input), config.Default())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if payload.SchemaVersion != 2 {
		t.Fatalf("schema version = %d", payload.SchemaVersion)
	}
	if len(snap.Objects) != 1 {
		t.Fatalf("objects = %#v", snap.Objects)
	}
	obj := snap.Objects[0]
	if obj["highlightTags"] != "focus, accent" || obj["objectId"] != "legacy-1" {
		t.Fatalf("object not migrated: %#v", obj)
	}
	if snap.Controls[config.FieldTaskDescription] != "old harbor" {
		t.Fatalf("controls lost: %#v", snap.Controls)
	}
}

func TestImport_BareDocumentWithStringLists(t *testing.T) {
	t.Parallel()

	input := `{
  "task": "Image Generation: a street",
  "style": {"main_style": "watercolor"},
  "additional_objects": [
    {"description": "kite", "characteristics": "red, torn", "style_tags": "focus"},
    {"description": "bench", "highlight_tags": ["accent", {"tag": "focus", "color": "#FFCF33"}]}
  ]
}`
	snap, payload, err := interchange.Import([]byte(input), config.Default())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if payload.Kind != interchange.KindDocument {
		t.Fatalf("kind = %q", payload.Kind)
	}
	if len(snap.Objects) != 2 {
		t.Fatalf("objects = %#v", snap.Objects)
	}

	got := []map[string]any{
		{
			"characteristics": snap.Objects[0]["characteristics"],
			"highlightTags":   snap.Objects[0]["highlightTags"],
		},
		{"highlightTags": snap.Objects[1]["highlightTags"]},
	}
	want := []map[string]any{
		{"characteristics": "red, torn", "highlightTags": "focus"},
		{"highlightTags": "accent, focus:#FFCF33"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("objects mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_RejectsMistypedObjectMembers(t *testing.T) {
	t.Parallel()

	input := `{
  "task": "Image Generation",
  "style": {"main_style": "watercolor"},
  "additional_objects": [{"description": "kite", "characteristics": 7}]
}`
	_, _, err := interchange.Import([]byte(input), config.Default())
	if !errors.Is(err, interchange.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestMigrate_Failures(t *testing.T) {
	t.Parallel()

	payload := interchange.Payload{SchemaVersion: 1, Snapshot: map[string]any{"controls": map[string]any{}}}

	_, err := interchange.Migrate(payload, config.StorageConfig{SchemaVersion: 2})
	if !errors.Is(err, interchange.ErrUnsupportedSchema) {
		t.Fatalf("error = %v", err)
	}

	boom := errors.New("boom")
	_, err = interchange.Migrate(payload, config.StorageConfig{
		SchemaVersion: 2,
		Migrate: func(map[string]any, int) (map[string]any, error) {
			return nil, boom
		},
	})
	var migration *interchange.MigrationError
	if !errors.As(err, &migration) || !errors.Is(err, boom) {
		t.Fatalf("error = %v", err)
	}
	if migration.From != 1 || migration.To != 2 {
		t.Fatalf("migration error = %+v", migration)
	}
	if interchange.Message(err) != "Could not migrate imported data." {
		t.Fatalf("message = %q", interchange.Message(err))
	}

	same, err := interchange.Migrate(interchange.Payload{SchemaVersion: 2}, config.StorageConfig{SchemaVersion: 2})
	if err != nil || same.SchemaVersion != 2 {
		t.Fatalf("current payload should pass through: %+v %v", same, err)
	}
}

func TestSplitTask(t *testing.T) {
	t.Parallel()

	tasks := []string{"Image Generation", "Image Editing"}
	cases := []struct {
		in, task, description string
	}{
		{"Image Editing: remove the sign", "Image Editing", "remove the sign"},
		{"Image Editing", "Image Editing", ""},
		{"Image Editing: a: b", "Image Editing", "a: b"},
		{"sunset over dunes", "Image Generation", "sunset over dunes"},
		{"Sunset: dunes", "Image Generation", "Sunset: dunes"},
		{"", "Image Generation", ""},
	}
	for _, tc := range cases {
		task, description := interchange.SplitTask(tc.in, tasks)
		if task != tc.task || description != tc.description {
			t.Errorf("SplitTask(%q) = %q, %q", tc.in, task, description)
		}
	}
}

func TestFromDocument_ConvertsSections(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"task": "Image Generation",
		"style": map[string]any{
			"key":      "professional_photo",
			"settings": map[string]any{"contrast": float64(70), "background_blur": true},
		},
		"lighting":        map[string]any{"type": "Hard", "scheme": "Rembrandt"},
		"camera_settings": map[string]any{"shutter_speed": "1/60"},
		"atmosphere":      map[string]any{"weather": "Fog", "natural_phenomenon": "Aurora", "notes": "misty"},
		"unknown_section": map[string]any{"x": "y"},
	}
	snap, err := interchange.FromDocument(raw, config.Default())
	if err != nil {
		t.Fatalf("from document: %v", err)
	}
	want := map[string]any{
		"mainStyle":         "professional_photo",
		"taskDescription":   "",
		"contrast":          "70",
		"backgroundBlur":    true,
		"lightType":         "Hard",
		"lightingScheme":    "Rembrandt",
		"shutterSpeed":      "1/60",
		"weatherCondition":  "Fog",
		"naturalPhenomenon": "Aurora",
		"atmosphereNotes":   "misty",
	}
	if diff := cmp.Diff(want, snap.Controls); diff != "" {
		t.Fatalf("controls mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(snap.JSON), "professional_photo") {
		t.Fatalf("document not kept: %s", snap.JSON)
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/orchestrator"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	server, err := NewServer(config.Default(), "test")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return server
}

func decodeJSON(t *testing.T, raw string) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return out
}

func TestNewServer_RequiresRegistry(t *testing.T) {
	if _, err := NewServer(nil, "test"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestListStyles(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleListStyles(context.Background(), nil, ListStylesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Styles) != len(config.Default().Styles) {
		t.Fatalf("expected %d styles, got %d", len(config.Default().Styles), len(output.Styles))
	}
	first := output.Styles[0]
	if first.Key != "professional_photo" || !first.Photography {
		t.Fatalf("unexpected first style: %+v", first)
	}
	if !slices.Contains(first.Substyles, "portrait") {
		t.Fatalf("expected portrait substyle, got %v", first.Substyles)
	}
}

func TestListPresets(t *testing.T) {
	server := newTestServer(t)

	_, all, err := server.handleListPresets(context.Background(), nil, ListPresetsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all.Presets) != len(config.Default().Presets) {
		t.Fatalf("expected every preset, got %d", len(all.Presets))
	}

	_, filtered, err := server.handleListPresets(context.Background(), nil, ListPresetsInput{Style: "professional_photo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var keys []string
	for _, preset := range filtered.Presets {
		keys = append(keys, preset.Key)
	}
	if !slices.Contains(keys, "studio_portrait") {
		t.Fatalf("expected studio_portrait in %v", keys)
	}

	if _, _, err := server.handleListPresets(context.Background(), nil, ListPresetsInput{Style: "missing"}); err == nil {
		t.Fatalf("expected unknown style error")
	}
}

func TestSynthesize_StyleDropsCamera(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleSynthesize(context.Background(), nil, SynthesizeInput{
		Style:       "watercolor",
		Task:        "Style Transfer",
		Description: "harbor at dusk",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Style != "watercolor" || output.Task != "Style Transfer" {
		t.Fatalf("unexpected output: %+v", output)
	}
	doc := decodeJSON(t, output.JSON)
	if _, ok := doc["camera_settings"]; ok {
		t.Fatalf("camera settings present for watercolor: %v", doc["camera_settings"])
	}
	style, _ := doc["style"].(map[string]any)
	if style["main_style"] != "watercolor" {
		t.Fatalf("main_style: got %v", style["main_style"])
	}
	if !strings.Contains(output.Prompt, "harbor at dusk") {
		t.Fatalf("prompt missing description:\n%s", output.Prompt)
	}
}

func TestSynthesize_ObjectsAndFormat(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleSynthesize(context.Background(), nil, SynthesizeInput{
		Objects: []map[string]any{{"description": "brass compass", "highlightTags": "focus"}},
		Format:  "markdown",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := decodeJSON(t, output.JSON)
	items, _ := doc["additional_objects"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one object, got %v", doc["additional_objects"])
	}
	if !strings.Contains(output.JSON, "#FFCF33") {
		t.Fatalf("expected palette color:\n%s", output.JSON)
	}
	if output.Format != "markdown" || !strings.HasPrefix(output.Rendered, "# ") {
		t.Fatalf("unexpected rendering %q:\n%s", output.Format, output.Rendered)
	}
}

func TestSynthesize_RejectsUnknownInput(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	cases := []SynthesizeInput{
		{Style: "missing"},
		{Preset: "missing"},
		{Controls: map[string]any{"nope": "x"}},
		{Format: "pdf"},
	}
	for _, input := range cases {
		if _, _, err := server.handleSynthesize(ctx, nil, input); err == nil {
			t.Fatalf("expected error for %+v", input)
		}
	}
}

func TestImportDocument_Export(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	source, err := orchestrator.New(ctx, config.Default())
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	defer source.Close(ctx)
	if _, err := source.ApplyStyle("oil_painting"); err != nil {
		t.Fatalf("apply style: %v", err)
	}
	file, err := source.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := file.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	_, output, err := server.handleImportDocument(ctx, nil, ImportDocumentInput{Content: string(data)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Kind != "export" || output.Style != "oil_painting" {
		t.Fatalf("unexpected output: kind=%q style=%q", output.Kind, output.Style)
	}
	if output.Prompt != source.Preview().Prompt {
		t.Fatalf("prompt mismatch:\nwant %s\ngot  %s", source.Preview().Prompt, output.Prompt)
	}
}

func TestImportDocument_Errors(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()

	if _, _, err := server.handleImportDocument(ctx, nil, ImportDocumentInput{}); err == nil {
		t.Fatalf("expected error for empty content")
	}
	_, _, err := server.handleImportDocument(ctx, nil, ImportDocumentInput{Content: "{nope"})
	if err == nil || !strings.Contains(err.Error(), "Invalid JSON format.") {
		t.Fatalf("expected invalid JSON message, got %v", err)
	}
}

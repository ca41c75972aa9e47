package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

const bareDocument = `{
  "task": "Image Generation: lighthouse in fog",
  "style": {"main_style": "watercolor", "settings": {}}
}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()

	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestStylesCommand(t *testing.T) {
	out := mustExecute(t, "styles", "--store", "memory://")
	if !strings.HasPrefix(out, "KEY") {
		t.Fatalf("expected header, got:\n%s", out)
	}
	for _, key := range []string{"professional_photo", "watercolor", "cartoon"} {
		if !strings.Contains(out, key) {
			t.Fatalf("expected %s in:\n%s", key, out)
		}
	}
}

func TestPresetsCommand(t *testing.T) {
	out := mustExecute(t, "presets", "--style", "professional_photo", "--store", "memory://")
	if !strings.Contains(out, "studio_portrait") {
		t.Fatalf("expected studio_portrait in:\n%s", out)
	}
	if _, err := execute(t, "presets", "--style", "missing", "--store", "memory://"); err == nil {
		t.Fatalf("expected unknown style error")
	}
}

func TestSynthesizeFile(t *testing.T) {
	path := writeFile(t, "doc.json", bareDocument)

	out := mustExecute(t, "synthesize", path, "--format", "markdown", "--store", "memory://")
	if !strings.HasPrefix(out, "# ") {
		t.Fatalf("expected markdown heading, got:\n%s", out)
	}
	if !strings.Contains(out, "lighthouse in fog") {
		t.Fatalf("expected description in:\n%s", out)
	}
}

func TestSynthesizeFile_TemplateOverride(t *testing.T) {
	path := writeFile(t, "doc.json", bareDocument)
	dir := t.TempDir()
	override := "{{ style|humanize }}:{% for section in sections %} {{ section.key }}{% endfor %}"
	if err := os.WriteFile(filepath.Join(dir, "markdown.tpl"), []byte(override), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	out := mustExecute(t, "synthesize", path, "--format", "markdown", "--templates", dir, "--store", "memory://")
	if !strings.HasPrefix(out, "Watercolor: task") {
		t.Fatalf("expected override output, got:\n%s", out)
	}

	html := mustExecute(t, "synthesize", path, "--format", "html", "--templates", dir, "--store", "memory://")
	if !strings.Contains(html, "<h1>Watercolor prompt</h1>") {
		t.Fatalf("expected embedded html template, got:\n%s", html)
	}
}

func TestSynthesizeFile_InvalidJSON(t *testing.T) {
	path := writeFile(t, "broken.json", "{nope")

	_, err := execute(t, "synthesize", path, "--store", "memory://")
	if err == nil || !strings.Contains(err.Error(), "Invalid JSON format.") {
		t.Fatalf("expected invalid JSON message, got %v", err)
	}
}

func TestSynthesize_UnknownFormat(t *testing.T) {
	path := writeFile(t, "doc.json", bareDocument)

	if _, err := execute(t, "synthesize", path, "--format", "pdf", "--store", "memory://"); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestImportExportReset(t *testing.T) {
	store := "file://" + filepath.Join(t.TempDir(), "state")
	doc := writeFile(t, "doc.json", bareDocument)

	out := mustExecute(t, "import", doc, "--store", store)
	if !strings.Contains(out, "Imported document (style watercolor)") {
		t.Fatalf("unexpected import output:\n%s", out)
	}

	exported := filepath.Join(t.TempDir(), "export.json")
	mustExecute(t, "export", "--output", exported, "--store", store)
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !bytes.Contains(data, []byte(`"nanobana-prompt"`)) || !bytes.Contains(data, []byte("watercolor")) {
		t.Fatalf("unexpected export:\n%s", data)
	}

	out = mustExecute(t, "synthesize", "--format", "json", "--store", store)
	if !strings.Contains(out, `"watercolor"`) {
		t.Fatalf("expected restored style in:\n%s", out)
	}

	if out := mustExecute(t, "reset", "--store", store); !strings.Contains(out, "Form reset") {
		t.Fatalf("unexpected reset output:\n%s", out)
	}
	out = mustExecute(t, "synthesize", "--format", "json", "--store", store)
	if !strings.Contains(out, `"professional_photo"`) {
		t.Fatalf("expected default style after reset in:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out := mustExecute(t, "version")
	if strings.TrimSpace(out) != version {
		t.Fatalf("version: got %q", out)
	}
}

func TestWatchFile_CoalescesWrites(t *testing.T) {
	path := writeFile(t, "doc.json", bareDocument)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 50*time.Millisecond, zap.NewNop(), func() error {
			calls <- struct{}{}
			return nil
		})
	}()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(bareDocument), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected a re-render after writes")
	}
	select {
	case <-calls:
		t.Fatalf("expected writes in one burst to coalesce")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not stop")
	}
}

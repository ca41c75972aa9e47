package config_test

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptform/pkg/config"
)

func TestDefault_Catalog(t *testing.T) {
	t.Parallel()

	reg := config.Default()
	if got := len(reg.Styles); got != 14 {
		t.Fatalf("expected 14 styles, got %d", got)
	}
	if got := len(reg.Presets); got != 13 {
		t.Fatalf("expected 13 presets, got %d", got)
	}
	if len(reg.Issues) != 0 {
		t.Fatalf("embedded registry reported issues: %v", reg.Issues)
	}
	if reg.FirstStyle() != "professional_photo" {
		t.Fatalf("unexpected first style %q", reg.FirstStyle())
	}
	if reg.Storage.Key != "nanobana:state:v2" || reg.Storage.SchemaVersion != 2 {
		t.Fatalf("unexpected storage config: %+v", reg.Storage)
	}
	if reg.Storage.HistoryLimit != 5 || reg.Storage.AutosaveDebounceMs != 750 {
		t.Fatalf("unexpected storage limits: %+v", reg.Storage)
	}
	if reg.Storage.Migrate == nil {
		t.Fatalf("expected legacy migrator to be resolved")
	}
	if got := len(reg.Objects.Palette); got != 4 {
		t.Fatalf("expected 4 palette entries, got %d", got)
	}
}

func TestRegistry_PresetsForStyle(t *testing.T) {
	t.Parallel()

	reg := config.Default()
	var keys []string
	for _, preset := range reg.PresetsForStyle("professional_photo") {
		keys = append(keys, preset.Key)
	}
	if diff := cmp.Diff([]string{"studio_portrait", "dramatic_landscape"}, keys); diff != "" {
		t.Fatalf("preset mismatch (-want +got):\n%s", diff)
	}
	if got := reg.PresetsForStyle("abstract"); len(got) != 0 {
		t.Fatalf("abstract has no presets, got %v", got)
	}
}

func TestRegistry_ResolveStyle(t *testing.T) {
	t.Parallel()

	reg := config.Default()
	if got := reg.ResolveStyle("watercolor"); got != "watercolor" {
		t.Fatalf("known style resolved to %q", got)
	}
	if got := reg.ResolveStyle("does_not_exist"); got != "professional_photo" {
		t.Fatalf("unknown style resolved to %q", got)
	}
	if !reg.IsPhotography("documentary_photo") || reg.IsPhotography("fantasy_art") {
		t.Fatalf("photography discriminator mismatch")
	}

	var nilReg *config.Registry
	if nilReg.FirstStyle() != "" || nilReg.ResolveStyle("x") != "" {
		t.Fatalf("nil registry must resolve to empty")
	}
}

func TestRegistry_BaseDefaults(t *testing.T) {
	t.Parallel()

	reg, err := config.LoadFile(filepath.Join("testdata", "minimal.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string]any{"contrast": "50", "iso": "400"}
	if diff := cmp.Diff(want, reg.BaseDefaults()); diff != "" {
		t.Fatalf("base defaults mismatch (-want +got):\n%s", diff)
	}

	base := config.Default().BaseDefaults()
	if _, ok := base[config.FieldMainStyle]; ok {
		t.Fatalf("base defaults must not carry mainStyle")
	}
	if base["backgroundBlur"] != false || base["colorScheme"] != "Natural" {
		t.Fatalf("unexpected base defaults: %#v", base)
	}
	if _, ok := base["preserveFaces"]; ok {
		t.Fatalf("restriction checkboxes declare no default")
	}
}

func TestRegistry_PanelFields(t *testing.T) {
	t.Parallel()

	want := []string{"colorScheme", "contrast", "sharpness", "backgroundBlur", "abstractType", "cartoonType"}
	if diff := cmp.Diff(want, config.Default().PanelFields()); diff != "" {
		t.Fatalf("panel fields mismatch (-want +got):\n%s", diff)
	}
}

func TestScalar(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want any
	}{
		{in: nil, want: nil},
		{in: true, want: true},
		{in: "x", want: "x"},
		{in: 7, want: "7"},
		{in: 2.5, want: "2.5"},
		{in: float64(40), want: "40"},
	}
	for _, tc := range cases {
		if got := config.Scalar(tc.in); got != tc.want {
			t.Fatalf("Scalar(%#v) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

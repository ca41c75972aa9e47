package form_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/form"
)

func TestNew_SeedsCatalogDefaults(t *testing.T) {
	t.Parallel()

	store := form.New(config.Default())
	if got := store.String(config.FieldMainStyle); got != "professional_photo" {
		t.Fatalf("mainStyle seeded as %q", got)
	}
	if got := store.String("contrast"); got != "50" {
		t.Fatalf("contrast seeded as %q", got)
	}
	if store.Bool("preserveFaces") {
		t.Fatalf("checkbox without default must start unchecked")
	}
	if got := store.String(config.FieldTaskDescription); got != "" {
		t.Fatalf("task description seeded as %q", got)
	}
	if got := store.Task(); got != config.DefaultTask {
		t.Fatalf("task seeded as %q", got)
	}
}

func TestStore_SetNormalisesByKind(t *testing.T) {
	t.Parallel()

	store := form.New(config.Default())
	cases := []struct {
		id    string
		value any
		want  any
	}{
		{id: "backgroundBlur", value: "true", want: true},
		{id: "backgroundBlur", value: "", want: false},
		{id: "backgroundBlur", value: "on", want: true},
		{id: "backgroundBlur", value: 0, want: false},
		{id: "contrast", value: 75, want: "75"},
		{id: "contrast", value: 62.5, want: "65"},
		{id: "colorScheme", value: "Muted", want: "Muted"},
		{id: "colorScheme", value: "NotAnOption", want: "Natural"},
		{id: "weatherCondition", value: "", want: ""},
		{id: "atmosphereNotes", value: nil, want: ""},
	}
	for _, tc := range cases {
		if !store.Set(tc.id, tc.value) {
			t.Fatalf("Set(%q) reported unknown field", tc.id)
		}
		got, _ := store.Get(tc.id)
		if got != tc.want {
			t.Fatalf("Set(%q, %#v) stored %#v, want %#v", tc.id, tc.value, got, tc.want)
		}
	}

	if store.Set("unknownField", "x") {
		t.Fatalf("unknown fields must be rejected")
	}
	if _, ok := store.Get("unknownField"); ok {
		t.Fatalf("unknown field must not be stored")
	}
}

func TestStore_SetClampsRanges(t *testing.T) {
	t.Parallel()

	store := form.New(config.Default())
	cases := map[string]struct {
		value any
		want  string
	}{
		"inside":        {value: "70", want: "70"},
		"above max":     {value: "250", want: "100"},
		"below min":     {value: -3, want: "0"},
		"snaps down":    {value: "72", want: "70"},
		"snaps up":      {value: 73.0, want: "75"},
		"unparsable":    {value: "abc", want: "50"},
		"empty":         {value: "", want: "50"},
		"padded number": {value: " 35 ", want: "35"},
	}
	for name, tc := range cases {
		store.Set("contrast", tc.value)
		if got := store.String("contrast"); got != tc.want {
			t.Fatalf("%s: Set(contrast, %#v) stored %q, want %q", name, tc.value, got, tc.want)
		}
	}
}

func TestStore_SelectTaskFallsBack(t *testing.T) {
	t.Parallel()

	store := form.New(config.Default())
	if got := store.SelectTask("Style Transfer"); got != "Style Transfer" {
		t.Fatalf("known task selected %q", got)
	}
	if got := store.SelectTask("Time Travel"); got != config.DefaultTask {
		t.Fatalf("unknown task selected %q", got)
	}
}

func TestStore_SubscribeAndSilently(t *testing.T) {
	t.Parallel()

	store := form.New(config.Default())
	var changes []form.Change
	unsubscribe := store.Subscribe(func(change form.Change) {
		changes = append(changes, change)
	})

	store.Set("contrast", "80")
	store.Set("contrast", "80")
	store.Silently(func() {
		store.Set("sharpness", "10")
	})
	store.SelectTask("Image Editing")
	unsubscribe()
	store.Set("contrast", "5")

	want := []form.Change{
		{Kind: form.ChangeValue, Field: "contrast", Value: "80"},
		{Kind: form.ChangeTask, Value: "Image Editing"},
	}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Options(t *testing.T) {
	t.Parallel()

	store := form.New(config.Default())
	if !store.HasOption("iso", "800") {
		t.Fatalf("catalog options must be selectable")
	}

	store.SetOptions(config.FieldStylePreset, []form.Option{{Value: "", Label: "None"}, {Value: "studio_portrait", Label: "Studio Portrait"}})
	if !store.HasOption(config.FieldStylePreset, "studio_portrait") {
		t.Fatalf("dynamic option missing")
	}
	if store.HasOption(config.FieldStylePreset, "neon_cinematic") {
		t.Fatalf("unexpected option")
	}
}

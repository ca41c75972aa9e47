package objects_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/objects"
)

func intPtr(v int) *int { return &v }

func TestTransform_FullEntry(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Objects
	entry := objects.Entry{
		ObjectID:         "obj-3",
		Description:      " brass telescope ",
		Characteristics:  "antique, , polished ",
		Priority:         "secondary",
		Weight:           "heavy",
		Scale:            "medium",
		Position:         "left foreground",
		Importance:       "140",
		Material:         "brass",
		HighlightTags:    "FOCUS, Опасность:#000000, custom:#123456, bare",
		Interactions:     "obj-1, missing-9",
		InteractionNotes: "points at the sky",
		Collapsed:        true,
	}

	want := &objects.Canonical{
		ID:              "obj-3",
		Description:     "brass telescope",
		Characteristics: []string{"antique", "polished"},
		HighlightTags: []objects.HighlightTag{
			{Tag: "focus", Color: "#FFCF33"},
			{Tag: "danger", Color: "#000000"},
			{Tag: "custom", Color: "#123456"},
			{Tag: "bare"},
		},
		Settings: &objects.Settings{
			Weight:           "heavy",
			Priority:         "secondary",
			Scale:            "medium",
			Position:         "left foreground",
			Material:         "brass",
			Importance:       intPtr(100),
			InteractionNotes: "points at the sky",
		},
		Relations: &objects.Relations{InteractsWith: []string{"obj-1", "missing-9"}},
		States:    &objects.States{Collapsed: true},
	}
	if diff := cmp.Diff(want, objects.Transform(entry, cfg)); diff != "" {
		t.Fatalf("canonical mismatch (-want +got):\n%s", diff)
	}
}

func TestTransform_DropsContentless(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Objects
	m := objects.NewManager(cfg)
	m.Add(nil)
	m.Add(map[string]any{"interactions": "obj-1", "locked": true})
	m.Add(map[string]any{"texture": "velvet"})

	got := m.Canonical()
	if len(got) != 1 {
		t.Fatalf("expected one object with content, got %d", len(got))
	}
	if got[0].Settings.Texture != "velvet" || got[0].States != nil || got[0].Relations != nil {
		t.Fatalf("unexpected canonical: %+v", got[0])
	}
	if *got[0].Settings.Importance != 50 {
		t.Fatalf("importance default not applied: %d", *got[0].Settings.Importance)
	}
}

func TestParseImportance(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"":     50,
		"abc":  50,
		"-5":   0,
		"73":   73,
		"42.7": 42,
		"999":  100,
	}
	for raw, want := range cases {
		if got := objects.ParseImportance(raw, 50); got != want {
			t.Fatalf("ParseImportance(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestSeedFromCanonical_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Objects
	m := objects.NewManager(cfg)
	original := m.Add(map[string]any{
		"description":      "lantern",
		"characteristics":  "glowing, paper",
		"highlightTags":    "focus, custom:#123456",
		"interactions":     "obj-9",
		"material":         "paper",
		"importance":       "70",
		"interactionNotes": "sways",
		"collapsed":        true,
	})

	canonical := objects.Transform(original, cfg)
	raw := map[string]any{
		"id":              canonical.ID,
		"description":     canonical.Description,
		"characteristics": []any{"glowing", "paper"},
		"highlight_tags": []any{
			map[string]any{"tag": "focus", "color": "#FFCF33"},
			map[string]any{"tag": "custom", "color": "#123456"},
		},
		"additional_object_settings": map[string]any{
			"weight": "balanced", "priority": "primary", "scale": "medium",
			"material": "paper", "importance": 70.0, "interaction_notes": "sways",
		},
		"relations": map[string]any{"interacts_with": []any{"obj-9"}},
		"states":    map[string]any{"collapsed": true},
	}

	restored := objects.NewManager(cfg).NewEntry(objects.SeedFromCanonical(raw))
	if diff := cmp.Diff(canonical, objects.Transform(restored, cfg)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSeedFromCanonical_LegacyShape(t *testing.T) {
	t.Parallel()

	seed := objects.SeedFromCanonical(map[string]any{
		"description": "tree",
		"style_tags":  []any{"accent"},
		"scale":       "large",
		"position":    "center",
	})
	want := map[string]any{
		"description":   "tree",
		"highlightTags": "accent",
		"scale":         "large",
		"position":      "center",
	}
	if diff := cmp.Diff(want, seed); diff != "" {
		t.Fatalf("legacy seed mismatch (-want +got):\n%s", diff)
	}
}

package objects_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/objects"
)

func newManager() *objects.Manager {
	return objects.NewManager(config.Default().Objects)
}

func TestManager_AddAppliesDefaultsAndMintsIDs(t *testing.T) {
	t.Parallel()

	m := newManager()
	first := m.Add(nil)
	second := m.Add(map[string]any{"description": "lamp", "scale": "large"})

	if first.ObjectID != "obj-1" || second.ObjectID != "obj-2" {
		t.Fatalf("unexpected ids %q %q", first.ObjectID, second.ObjectID)
	}
	if first.Weight != "balanced" || first.Priority != "primary" || first.Importance != "50" {
		t.Fatalf("defaults not applied: %+v", first)
	}
	if second.Scale != "large" || second.Description != "lamp" {
		t.Fatalf("seed not merged: %+v", second)
	}
}

func TestManager_ObserveExternalIDs(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.Add(map[string]any{"objectId": "obj-41"})
	m.Add(map[string]any{"objectId": "custom"})
	next := m.Add(nil)
	if next.ObjectID != "obj-42" {
		t.Fatalf("counter not advanced past external id: %q", next.ObjectID)
	}

	dup := m.Add(map[string]any{"objectId": "obj-41"})
	if dup.ObjectID == "obj-41" {
		t.Fatalf("duplicate id accepted")
	}

	seen := make(map[string]struct{})
	for _, entry := range m.Entries() {
		if _, ok := seen[entry.ObjectID]; ok {
			t.Fatalf("id %q used twice", entry.ObjectID)
		}
		seen[entry.ObjectID] = struct{}{}
	}
}

func TestManager_DuplicateInsertsAfterSource(t *testing.T) {
	t.Parallel()

	m := newManager()
	a := m.Add(map[string]any{"description": "a"})
	m.Add(map[string]any{"description": "b"})
	if _, err := m.ToggleLock(a.ObjectID); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := m.ToggleCollapse(a.ObjectID); err != nil {
		t.Fatalf("collapse: %v", err)
	}

	copyEntry, err := m.Duplicate(a.ObjectID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if copyEntry.ObjectID == a.ObjectID || copyEntry.Locked || copyEntry.Collapsed {
		t.Fatalf("duplicate must get a fresh id and reset states: %+v", copyEntry)
	}

	var order []string
	for _, entry := range m.Entries() {
		order = append(order, entry.Description)
	}
	if diff := cmp.Diff([]string{"a", "a", "b"}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_LockGuards(t *testing.T) {
	t.Parallel()

	m := newManager()
	entry := m.Add(map[string]any{"description": "vase"})
	locked, err := m.ToggleLock(entry.ObjectID)
	if err != nil || !locked {
		t.Fatalf("lock failed: %v", err)
	}

	if err := m.Remove(entry.ObjectID); !errors.Is(err, objects.ErrLocked) {
		t.Fatalf("expected ErrLocked on remove, got %v", err)
	}
	if err := m.Update(entry.ObjectID, objects.FieldDescription, "urn"); !errors.Is(err, objects.ErrLocked) {
		t.Fatalf("expected ErrLocked on update, got %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("locked entry removed")
	}

	got, _ := m.Get(entry.ObjectID)
	if objects.AccessFor(got, objects.FieldObjectID) != objects.ReadOnly {
		t.Fatalf("locked objectId must be read-only")
	}
	if objects.AccessFor(got, objects.FieldDescription) != objects.Disabled {
		t.Fatalf("locked description must be disabled")
	}

	if _, err := m.ToggleLock(entry.ObjectID); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := m.Update(entry.ObjectID, objects.FieldDescription, "urn"); err != nil {
		t.Fatalf("update after unlock: %v", err)
	}
	if err := m.Remove(entry.ObjectID); err != nil {
		t.Fatalf("remove after unlock: %v", err)
	}
	if err := m.Remove("nope"); !errors.Is(err, objects.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_Labels(t *testing.T) {
	t.Parallel()

	m := newManager()
	if m.LockLabel(true) != "locked" || m.LockLabel(false) != "unlocked" {
		t.Fatalf("lock labels mismatch")
	}
	if m.CollapseLabel(true) != "collapsed" || m.CollapseLabel(false) != "expanded" {
		t.Fatalf("collapse labels mismatch")
	}
}

func TestManager_RestoreNormalisesLegacyState(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.Restore([]map[string]any{
		{"id": "obj-9", "description": "kite", "style_tags": []any{"focus"}, "characteristics": []any{"red", "paper"}},
		{"objectId": "obj-9", "description": "clash"},
		{"description": "plain", "importance": 80.0, "locked": true},
	})

	entries := m.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ObjectID != "obj-9" || entries[0].HighlightTags != "focus" || entries[0].Characteristics != "red, paper" {
		t.Fatalf("legacy entry not normalised: %+v", entries[0])
	}
	if entries[1].ObjectID == "obj-9" {
		t.Fatalf("clashing id kept")
	}
	if entries[2].Importance != "80" || !entries[2].Locked || entries[2].Weight != "balanced" {
		t.Fatalf("restore did not apply defaults and values: %+v", entries[2])
	}
}

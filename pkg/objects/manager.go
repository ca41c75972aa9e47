package objects

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-promptform/pkg/config"
)

// Access describes how a form control of an entry may be interacted with.
type Access string

const (
	Editable Access = "editable"
	// ReadOnly keeps the value collectable while preventing edits. Only the
	// objectId of a locked entry uses it.
	ReadOnly Access = "readonly"
	Disabled Access = "disabled"
)

// AccessFor reports the access of field on entry.
func AccessFor(entry Entry, field string) Access {
	if !entry.Locked {
		return Editable
	}
	if field == FieldObjectID {
		return ReadOnly
	}
	return Disabled
}

// Manager owns the ordered list of additional objects.
type Manager struct {
	cfg     config.ObjectsConfig
	ids     *IDGenerator
	entries []Entry
}

// NewManager builds an empty list using the registry object settings.
func NewManager(cfg config.ObjectsConfig) *Manager {
	return &Manager{
		cfg: cfg,
		ids: NewIDGenerator(cfg.IDPrefix),
	}
}

// Config returns the object settings the manager was built with.
func (m *Manager) Config() config.ObjectsConfig {
	return m.cfg
}

// IDs exposes the id generator.
func (m *Manager) IDs() *IDGenerator {
	return m.ids
}

// NewEntry merges seed over the configured defaults. A missing id is minted;
// a supplied id is observed so the generator never reissues it.
func (m *Manager) NewEntry(seed map[string]any) Entry {
	var entry Entry
	for _, key := range sortedKeys(m.cfg.Defaults) {
		_ = entry.set(key, m.cfg.Defaults[key])
	}
	for _, key := range sortedKeys(seed) {
		_ = entry.set(key, seed[key])
	}
	if entry.ObjectID == "" {
		entry.ObjectID = m.ids.Next()
	} else {
		m.ids.Observe(entry.ObjectID)
	}
	return entry
}

// Add appends a new entry built from seed and returns it.
func (m *Manager) Add(seed map[string]any) Entry {
	entry := m.NewEntry(seed)
	if m.indexOf(entry.ObjectID) >= 0 {
		entry.ObjectID = m.ids.Next()
	}
	m.entries = append(m.entries, entry)
	return entry
}

// Duplicate copies the entry id into a new entry inserted right after it.
// The copy gets a fresh id and starts unlocked and expanded.
func (m *Manager) Duplicate(id string) (Entry, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	seed := m.entries[idx].Map()
	delete(seed, FieldObjectID)
	seed[FieldLocked] = false
	seed[FieldCollapsed] = false
	entry := m.NewEntry(seed)

	m.entries = append(m.entries, Entry{})
	copy(m.entries[idx+2:], m.entries[idx+1:])
	m.entries[idx+1] = entry
	return entry, nil
}

// Remove deletes the entry id. Locked entries are kept and ErrLocked is
// returned.
func (m *Manager) Remove(id string) error {
	idx := m.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if m.entries[idx].Locked {
		return fmt.Errorf("%w: %q", ErrLocked, id)
	}
	m.entries = append(m.entries[:idx], m.entries[idx+1:]...)
	return nil
}

// Get returns the entry id.
func (m *Manager) Get(id string) (Entry, bool) {
	idx := m.indexOf(id)
	if idx < 0 {
		return Entry{}, false
	}
	return m.entries[idx], true
}

// Update assigns value to field of entry id. Locked entries reject updates;
// the state flags are changed through the toggles.
func (m *Manager) Update(id, field string, value any) error {
	idx := m.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	entry := &m.entries[idx]
	if entry.Locked {
		return fmt.Errorf("%w: %q", ErrLocked, id)
	}
	switch field {
	case FieldLocked, FieldCollapsed:
		return fmt.Errorf("%w: %q is toggled, not assigned", ErrUnknownField, field)
	case FieldObjectID:
		next := textValue(value)
		if next == "" || next == id {
			return nil
		}
		if m.indexOf(next) >= 0 {
			return fmt.Errorf("objects: update %q: id %q already in use", id, next)
		}
		entry.ObjectID = next
		m.ids.Observe(next)
		return nil
	}
	return entry.set(field, value)
}

// ToggleLock flips the lock flag and returns the new state.
func (m *Manager) ToggleLock(id string) (bool, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return false, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	m.entries[idx].Locked = !m.entries[idx].Locked
	return m.entries[idx].Locked, nil
}

// ToggleCollapse flips the collapse flag and returns the new state.
func (m *Manager) ToggleCollapse(id string) (bool, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return false, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	m.entries[idx].Collapsed = !m.entries[idx].Collapsed
	return m.entries[idx].Collapsed, nil
}

// Restore rebuilds the list from snapshot objects through the same defaulting
// path as Add. Duplicate ids are replaced with fresh ones.
func (m *Manager) Restore(states []map[string]any) {
	m.entries = m.entries[:0]
	for _, state := range states {
		if state == nil {
			continue
		}
		normalized := FromMap(state).Map()
		seed := make(map[string]any, len(state))
		for key := range normalized {
			if _, present := state[key]; present {
				seed[key] = normalized[key]
			}
		}
		if id, ok := normalized[FieldObjectID].(string); ok && id != "" {
			seed[FieldObjectID] = id
		}
		if tags, ok := normalized[FieldHighlightTags].(string); ok && tags != "" {
			seed[FieldHighlightTags] = tags
		}
		m.Add(seed)
	}
}

// Clear removes every entry. The id counter keeps its high-water mark.
func (m *Manager) Clear() {
	m.entries = nil
}

// Len returns the number of entries.
func (m *Manager) Len() int {
	return len(m.entries)
}

// Entries returns a copy of the list.
func (m *Manager) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// States returns the list as snapshot objects.
func (m *Manager) States() []map[string]any {
	out := make([]map[string]any, 0, len(m.entries))
	for _, entry := range m.entries {
		out = append(out, entry.Map())
	}
	return out
}

// Canonical transforms every entry and drops the content-less ones.
func (m *Manager) Canonical() []Canonical {
	return TransformAll(m.entries, m.cfg)
}

// LockLabel returns the configured state name for a lock flag.
func (m *Manager) LockLabel(locked bool) string {
	return stateLabel(m.cfg.States.Lock, locked, "locked", "unlocked")
}

// CollapseLabel returns the configured state name for a collapse flag.
func (m *Manager) CollapseLabel(collapsed bool) string {
	names := m.cfg.States.Collapse
	if len(names) < 2 {
		if collapsed {
			return "collapsed"
		}
		return "expanded"
	}
	if collapsed {
		return names[1]
	}
	return names[0]
}

func stateLabel(names []string, on bool, onDefault, offDefault string) string {
	if len(names) < 2 {
		names = []string{onDefault, offDefault}
	}
	if on {
		return names[0]
	}
	return names[1]
}

func (m *Manager) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, entry := range m.entries {
		if entry.ObjectID == id {
			return i
		}
	}
	return -1
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

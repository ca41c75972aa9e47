package visibility

import (
	"sort"

	"github.com/goliatone/go-promptform/pkg/config"
)

// FieldState is the presentation state of one control.
type FieldState struct {
	Disabled bool `json:"disabled"`
	Hidden   bool `json:"hidden"`
}

// SectionState is the presentation state of one section.
type SectionState struct {
	Hidden    bool `json:"hidden"`
	Collapsed bool `json:"collapsed"`
}

// State is a point-in-time copy of the layout.
type State struct {
	Fields      map[string]FieldState   `json:"fields"`
	Sections    map[string]SectionState `json:"sections"`
	ActivePanel string                  `json:"activePanel,omitempty"`
}

// Layout owns section visibility and field enablement. The reconciler is the
// only writer; readers query through the getters. Unknown identifiers are
// ignored by every mutator.
type Layout struct {
	order []string
	base  State
	cur   State
}

// NewLayout captures the base state declared by the registry catalog.
func NewLayout(reg *config.Registry) *Layout {
	l := &Layout{
		base: State{
			Fields:   make(map[string]FieldState),
			Sections: make(map[string]SectionState),
		},
	}
	if reg != nil {
		for _, section := range reg.Sections {
			l.base.Sections[section.Key] = SectionState{Hidden: section.Hidden}
		}
		for _, field := range reg.Fields {
			l.base.Fields[field.ID] = FieldState{Disabled: field.Disabled, Hidden: field.Hidden}
		}
		l.order = append(l.order, reg.FieldOrder...)
	}
	l.cur = l.base.clone()
	return l
}

// Reset restores every field and section to its base state.
func (l *Layout) Reset() {
	if l == nil {
		return
	}
	l.cur = l.base.clone()
}

// SetDisabled toggles a field's enablement.
func (l *Layout) SetDisabled(id string, disabled bool) {
	if l == nil {
		return
	}
	state, ok := l.cur.Fields[id]
	if !ok {
		return
	}
	state.Disabled = disabled
	l.cur.Fields[id] = state
}

// SetHidden toggles a field's display.
func (l *Layout) SetHidden(id string, hidden bool) {
	if l == nil {
		return
	}
	state, ok := l.cur.Fields[id]
	if !ok {
		return
	}
	state.Hidden = hidden
	l.cur.Fields[id] = state
}

// ShowSection toggles a section's display.
func (l *Layout) ShowSection(key string, visible bool) {
	if l == nil {
		return
	}
	state, ok := l.cur.Sections[key]
	if !ok {
		return
	}
	state.Hidden = !visible
	l.cur.Sections[key] = state
}

// CollapseSection marks a section collapsed or expanded.
func (l *Layout) CollapseSection(key string, collapsed bool) {
	if l == nil {
		return
	}
	state, ok := l.cur.Sections[key]
	if !ok {
		return
	}
	state.Collapsed = collapsed
	l.cur.Sections[key] = state
}

// SetActivePanel records the style whose panel is showing.
func (l *Layout) SetActivePanel(styleKey string) {
	if l == nil {
		return
	}
	l.cur.ActivePanel = styleKey
}

// ActivePanel returns the style whose panel is showing.
func (l *Layout) ActivePanel() string {
	if l == nil {
		return ""
	}
	return l.cur.ActivePanel
}

// FieldDisabled reports whether id is disabled. Unknown fields report false.
func (l *Layout) FieldDisabled(id string) bool {
	if l == nil {
		return false
	}
	return l.cur.Fields[id].Disabled
}

// FieldHidden reports whether id is hidden. Unknown fields report false.
func (l *Layout) FieldHidden(id string) bool {
	if l == nil {
		return false
	}
	return l.cur.Fields[id].Hidden
}

// SectionVisible reports whether key is displayed. Sections the catalog does
// not declare count as visible.
func (l *Layout) SectionVisible(key string) bool {
	if l == nil {
		return true
	}
	state, ok := l.cur.Sections[key]
	return !ok || !state.Hidden
}

// SectionCollapsed reports whether key is collapsed.
func (l *Layout) SectionCollapsed(key string) bool {
	if l == nil {
		return false
	}
	return l.cur.Sections[key].Collapsed
}

// VisibleSections lists displayed sections in configured order, followed by
// any remaining sections sorted by key.
func (l *Layout) VisibleSections() []string {
	if l == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(l.cur.Sections))
	var out []string
	for _, key := range l.order {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if l.SectionVisible(key) {
			out = append(out, key)
		}
	}
	rest := make([]string, 0)
	for key := range l.cur.Sections {
		if _, ok := seen[key]; !ok && l.SectionVisible(key) {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// State returns a copy of the current layout.
func (l *Layout) State() State {
	if l == nil {
		return State{}
	}
	return l.cur.clone()
}

func (s State) clone() State {
	out := State{
		Fields:      make(map[string]FieldState, len(s.Fields)),
		Sections:    make(map[string]SectionState, len(s.Sections)),
		ActivePanel: s.ActivePanel,
	}
	for key, value := range s.Fields {
		out.Fields[key] = value
	}
	for key, value := range s.Sections {
		out.Sections[key] = value
	}
	return out
}

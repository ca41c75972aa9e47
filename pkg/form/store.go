package form

import (
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-promptform/pkg/config"
)

// Option is one selectable choice of a select control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ChangeKind classifies a store notification.
type ChangeKind string

const (
	ChangeValue   ChangeKind = "value"
	ChangeTask    ChangeKind = "task"
	ChangeOptions ChangeKind = "options"
)

// Change describes a mutation delivered to subscribers.
type Change struct {
	Kind  ChangeKind
	Field string
	Value any
}

// Listener receives store changes.
type Listener func(Change)

// Store holds control values keyed by field id. Values are strings, except
// checkbox values which are booleans. Store is not safe for concurrent use;
// the owning controller serialises access.
type Store struct {
	fields    map[string]config.Field
	order     []string
	values    map[string]any
	tasks     []string
	task      string
	options   map[string][]Option
	listeners map[int]Listener
	nextID    int
	muted     int
}

// New seeds a store from the registry catalog. Fields without a declared
// default start empty or unchecked.
func New(reg *config.Registry) *Store {
	s := &Store{
		fields:    make(map[string]config.Field),
		values:    make(map[string]any),
		options:   make(map[string][]Option),
		listeners: make(map[int]Listener),
	}
	if reg == nil {
		return s
	}
	for _, field := range reg.Fields {
		s.fields[field.ID] = field
		s.order = append(s.order, field.ID)
		s.values[field.ID] = normalize(field, field.Default)
	}
	s.tasks = append([]string(nil), reg.Tasks...)
	if len(s.tasks) > 0 {
		s.task = s.tasks[0]
	}
	return s
}

// Has reports whether id is a known control.
func (s *Store) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.fields[id]
	return ok
}

// Field returns the catalog entry backing id.
func (s *Store) Field(id string) (config.Field, bool) {
	if s == nil {
		return config.Field{}, false
	}
	field, ok := s.fields[id]
	return field, ok
}

// FieldIDs lists known controls in catalog order.
func (s *Store) FieldIDs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Get returns the stored value for id.
func (s *Store) Get(id string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := s.values[id]
	return value, ok
}

// String returns the value of id as a string; checkboxes render as
// "true"/"false" and unknown ids as "".
func (s *Store) String(id string) string {
	value, ok := s.Get(id)
	if !ok {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Bool returns the checked state of id.
func (s *Store) Bool(id string) bool {
	value, _ := s.Get(id)
	checked, _ := value.(bool)
	return checked
}

// Set assigns value to id after normalising it to the control kind. Unknown
// ids are ignored and report false. Subscribers are notified only when the
// stored value changes.
func (s *Store) Set(id string, value any) bool {
	if s == nil {
		return false
	}
	field, ok := s.fields[id]
	if !ok {
		return false
	}
	next := normalize(field, value)
	if prev, exists := s.values[id]; exists && prev == next {
		return true
	}
	s.values[id] = next
	s.notify(Change{Kind: ChangeValue, Field: id, Value: next})
	return true
}

// SetMany assigns every known entry of values in sorted key order.
func (s *Store) SetMany(values map[string]any) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		s.Set(key, values[key])
	}
}

// Values returns a copy of every control value.
func (s *Store) Values() map[string]any {
	if s == nil {
		return nil
	}
	out := make(map[string]any, len(s.values))
	for key, value := range s.values {
		out[key] = value
	}
	return out
}

// Tasks lists the selectable tasks.
func (s *Store) Tasks() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.tasks...)
}

// Task returns the selected task.
func (s *Store) Task() string {
	if s == nil {
		return ""
	}
	return s.task
}

// SelectTask selects task when it is one of the declared tasks and falls back
// to the first task otherwise. It returns the resulting selection.
func (s *Store) SelectTask(task string) string {
	if s == nil {
		return ""
	}
	next := ""
	if len(s.tasks) > 0 {
		next = s.tasks[0]
	}
	task = strings.TrimSpace(task)
	for _, candidate := range s.tasks {
		if candidate == task {
			next = candidate
			break
		}
	}
	if next != s.task {
		s.task = next
		s.notify(Change{Kind: ChangeTask, Value: next})
	}
	return next
}

// SetOptions replaces the dynamic option set of id.
func (s *Store) SetOptions(id string, options []Option) {
	if s == nil || !s.Has(id) {
		return
	}
	s.options[id] = append([]Option(nil), options...)
	s.notify(Change{Kind: ChangeOptions, Field: id})
}

// Options returns the dynamic option set of id, or the catalog options when
// none was assigned.
func (s *Store) Options(id string) []Option {
	if s == nil {
		return nil
	}
	if options, ok := s.options[id]; ok {
		return append([]Option(nil), options...)
	}
	field, ok := s.fields[id]
	if !ok {
		return nil
	}
	out := make([]Option, 0, len(field.Options))
	for _, value := range field.Options {
		out = append(out, Option{Value: value, Label: value})
	}
	return out
}

// HasOption reports whether value is selectable for id.
func (s *Store) HasOption(id, value string) bool {
	for _, option := range s.Options(id) {
		if option.Value == value {
			return true
		}
	}
	return false
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	if s == nil || fn == nil {
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

// Silently runs fn without notifying subscribers.
func (s *Store) Silently(fn func()) {
	if s == nil || fn == nil {
		return
	}
	s.muted++
	defer func() { s.muted-- }()
	fn()
}

func (s *Store) notify(change Change) {
	if s.muted > 0 || len(s.listeners) == 0 {
		return
	}
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := s.listeners[id]; ok {
			fn(change)
		}
	}
}

func normalize(field config.Field, value any) any {
	if field.Kind == config.KindCheckbox {
		return Truthy(value)
	}
	text := scalarText(value)
	switch field.Kind {
	case config.KindRange:
		if clamped, ok := clampRange(field, text); ok {
			return clamped
		}
		if fallback, ok := clampRange(field, scalarText(field.Default)); ok {
			return fallback
		}
		return ""
	case config.KindSelect:
		if len(field.Options) > 0 && !slices.Contains(field.Options, text) {
			return scalarText(field.Default)
		}
	}
	return text
}

func scalarText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	default:
		if str, ok := config.Scalar(v).(string); ok {
			return str
		}
		return ""
	}
}

// clampRange keeps a range value inside [Min, Max] and on the Step grid,
// the way a range input does. It reports false for unparsable text.
func clampRange(field config.Field, text string) (string, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return "", false
	}
	if field.Max <= field.Min {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	lo, hi := float64(field.Min), float64(field.Max)
	if field.Step > 0 {
		step := float64(field.Step)
		n = lo + math.Round((n-lo)/step)*step
	}
	n = math.Min(math.Max(n, lo), hi)
	return strconv.FormatFloat(n, 'f', -1, 64), true
}

// Truthy converts a loosely typed value into a checkbox state.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
		return trimmed != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return false
	}
}

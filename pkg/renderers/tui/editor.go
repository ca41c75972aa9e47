package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/form"
	"github.com/goliatone/go-promptform/pkg/objects"
	"github.com/goliatone/go-promptform/pkg/orchestrator"
	"github.com/goliatone/go-promptform/pkg/visibility"
)

// Form is the slice of the controller the editor drives.
// *orchestrator.Controller satisfies it.
type Form interface {
	Registry() *config.Registry
	Layout() visibility.State
	Control(id string) (any, bool)
	Options(id string) []form.Option
	SetControl(id string, value any) error
	Task() string
	SelectTask(task string) (string, error)
	Objects() []objects.Entry
	AddObject(seed map[string]any) (objects.Entry, error)
	UpdateObject(id, field string, value any) error
	DuplicateObject(id string) (objects.Entry, error)
	RemoveObject(id string) error
	ToggleLock(id string) (bool, error)
	ToggleCollapse(id string) (bool, error)
	Preview() orchestrator.Preview
}

// Editor walks the visible sections of a form in field order and writes each
// answer back through the controller, so style switches and presets take
// effect before the next prompt is asked.
type Editor struct {
	form   Form
	driver PromptDriver
	out    io.Writer
	theme  Theme
}

const (
	actionKeep      = "Keep"
	actionEdit      = "Edit"
	actionDuplicate = "Duplicate"
	actionRemove    = "Remove"
	actionLock      = "Lock"
	actionUnlock    = "Unlock"
	actionCollapse  = "Collapse"
	actionExpand    = "Expand"
)

// New builds an editor over f.
func New(f Form, opts ...Option) (*Editor, error) {
	if f == nil {
		return nil, ErrNoController
	}
	e := &Editor{form: f}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver(e.writer())
	}
	return e, nil
}

// Run prompts for the task and every visible, enabled control, then the
// additional objects. It returns the preview of the resulting state.
func (e *Editor) Run(ctx context.Context) (orchestrator.Preview, error) {
	if err := e.promptTask(ctx); err != nil {
		return orchestrator.Preview{}, err
	}
	reg := e.form.Registry()
	for _, key := range reg.FieldOrder {
		if ctx.Err() != nil {
			return orchestrator.Preview{}, ctx.Err()
		}
		if e.form.Layout().Sections[key].Hidden {
			continue
		}
		if err := e.info(ctx, sectionLabel(reg, key)); err != nil {
			return orchestrator.Preview{}, err
		}
		var err error
		if key == config.SectionObjects {
			err = e.editObjects(ctx)
		} else {
			err = e.editSection(ctx, key)
		}
		if err != nil {
			return orchestrator.Preview{}, err
		}
	}
	return e.form.Preview(), nil
}

func (e *Editor) promptTask(ctx context.Context) error {
	tasks := e.form.Registry().Tasks
	if len(tasks) == 0 {
		return nil
	}
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:      e.message("Task"),
		Options:      tasks,
		DefaultIndex: max(indexOf(tasks, e.form.Task()), 0),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(tasks) {
		return fmt.Errorf("tui: task: selection %d out of range", idx)
	}
	_, err = e.form.SelectTask(tasks[idx])
	return err
}

// editSection re-reads the layout before every field because an answer
// (a main style, a preset) can hide or disable the ones after it.
func (e *Editor) editSection(ctx context.Context, section string) error {
	for _, field := range e.form.Registry().FieldsInSection(section) {
		layout := e.form.Layout()
		if layout.Sections[section].Hidden {
			return nil
		}
		state := layout.Fields[field.ID]
		if state.Hidden || state.Disabled {
			continue
		}
		value, err := e.promptField(ctx, field)
		if err != nil {
			return err
		}
		if err := e.form.SetControl(field.ID, value); err != nil {
			return fmt.Errorf("tui: set %s: %w", field.ID, err)
		}
	}
	return nil
}

func (e *Editor) promptField(ctx context.Context, field config.Field) (any, error) {
	current, _ := e.form.Control(field.ID)
	label := fieldLabel(field)
	switch field.Kind {
	case config.KindSelect:
		return e.selectOption(ctx, label, field.Help, e.form.Options(field.ID), text(current))
	case config.KindCheckbox:
		checked, _ := current.(bool)
		return e.driver.Confirm(ctx, ConfirmConfig{
			Message: e.message(label),
			Default: checked,
			Help:    field.Help,
		})
	case config.KindRange:
		return e.promptRange(ctx, label, field.Help, text(current), field.Min, field.Max)
	case config.KindTextarea:
		return e.driver.TextArea(ctx, TextAreaConfig{
			Message: e.message(label),
			Default: text(current),
			Help:    field.Help,
		})
	default:
		return e.driver.Input(ctx, InputConfig{
			Message: e.message(label),
			Default: text(current),
			Help:    field.Help,
		})
	}
}

func (e *Editor) selectOption(ctx context.Context, label, help string, opts []form.Option, current string) (string, error) {
	if len(opts) == 0 {
		return current, nil
	}
	labels := make([]string, len(opts))
	defaultIdx := 0
	for i, opt := range opts {
		labels[i] = opt.Label
		if labels[i] == "" {
			labels[i] = opt.Value
		}
		if opt.Value == current {
			defaultIdx = i
		}
	}
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:      e.message(label),
		Options:      labels,
		DefaultIndex: defaultIdx,
		Help:         help,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(opts) {
		return "", fmt.Errorf("tui: %s: selection %d out of range", label, idx)
	}
	return opts[idx].Value, nil
}

// promptRange asks until the answer is an integer within bounds. An empty
// answer keeps the current value.
func (e *Editor) promptRange(ctx context.Context, label, help, current string, lo, hi int) (string, error) {
	validate := rangeValidator(lo, hi)
	for {
		answer, err := e.driver.Input(ctx, InputConfig{
			Message:   e.message(fmt.Sprintf("%s (%d-%d)", label, lo, hi)),
			Default:   current,
			Help:      help,
			Validator: validate,
		})
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return current, nil
		}
		if verr := validate(answer); verr != nil {
			if err := e.warn(ctx, verr.Error()); err != nil {
				return "", err
			}
			continue
		}
		return answer, nil
	}
}

func rangeValidator(lo, hi int) func(string) error {
	return func(answer string) error {
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return nil
		}
		n, err := strconv.Atoi(answer)
		if err != nil {
			return fmt.Errorf("%q is not a whole number", answer)
		}
		if hi > lo && (n < lo || n > hi) {
			return fmt.Errorf("%d is outside %d-%d", n, lo, hi)
		}
		return nil
	}
}

func (e *Editor) editObjects(ctx context.Context) error {
	for _, entry := range e.form.Objects() {
		if err := e.reviewObject(ctx, entry); err != nil {
			return err
		}
	}
	for {
		add, err := e.driver.Confirm(ctx, ConfirmConfig{Message: e.message("Add an object?")})
		if err != nil {
			return err
		}
		if !add {
			return nil
		}
		entry, err := e.form.AddObject(nil)
		if err != nil {
			return fmt.Errorf("tui: add object: %w", err)
		}
		if err := e.editObject(ctx, entry); err != nil {
			return err
		}
	}
}

// reviewObject offers the object actions for entry. Remove and Duplicate
// stay on offer while locked; a refused removal is reported and the walk
// goes on.
func (e *Editor) reviewObject(ctx context.Context, entry objects.Entry) error {
	lock, collapse := actionLock, actionCollapse
	if entry.Locked {
		lock = actionUnlock
	}
	if entry.Collapsed {
		collapse = actionExpand
	}
	actions := []string{actionKeep, actionEdit, actionDuplicate, actionRemove, lock, collapse}

	title := entry.ObjectID
	if entry.Description != "" {
		title += ": " + entry.Description
	}
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message: e.message(title),
		Options: actions,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(actions) {
		return fmt.Errorf("tui: object %s: selection %d out of range", entry.ObjectID, idx)
	}
	switch actions[idx] {
	case actionEdit:
		return e.editObject(ctx, entry)
	case actionDuplicate:
		copied, err := e.form.DuplicateObject(entry.ObjectID)
		if err != nil {
			return fmt.Errorf("tui: duplicate object: %w", err)
		}
		return e.info(ctx, fmt.Sprintf("Duplicated %s as %s", entry.ObjectID, copied.ObjectID))
	case actionRemove:
		err := e.form.RemoveObject(entry.ObjectID)
		if errors.Is(err, objects.ErrLocked) {
			return e.warn(ctx, fmt.Sprintf("%s is locked. Unlock it before removing.", entry.ObjectID))
		}
		if err != nil {
			return fmt.Errorf("tui: remove object: %w", err)
		}
	case actionLock, actionUnlock:
		if _, err := e.form.ToggleLock(entry.ObjectID); err != nil {
			return fmt.Errorf("tui: toggle lock: %w", err)
		}
	case actionCollapse, actionExpand:
		if _, err := e.form.ToggleCollapse(entry.ObjectID); err != nil {
			return fmt.Errorf("tui: toggle collapse: %w", err)
		}
	}
	return nil
}

// editObject prompts the id, description, characteristics and every object
// setting. A setting listed as dependent on another is skipped while that
// parent is empty. A locked entry only shows its read-only id.
func (e *Editor) editObject(ctx context.Context, entry objects.Entry) error {
	id := entry.ObjectID
	if objects.AccessFor(entry, objects.FieldDescription) == objects.Disabled {
		if objects.AccessFor(entry, objects.FieldObjectID) == objects.ReadOnly {
			if err := e.info(ctx, "ID "+id+" (read only)"); err != nil {
				return err
			}
		}
		return e.warn(ctx, fmt.Sprintf("%s is locked. Unlock it to edit.", id))
	}

	cfg := e.form.Registry().Objects
	values := entry.Map()
	parents := dependencyParents(cfg.Dependencies)

	set := func(field string, value any) error {
		if err := e.form.UpdateObject(id, field, value); err != nil {
			return fmt.Errorf("tui: object %s: %w", id, err)
		}
		values[field] = value
		return nil
	}

	nextID, err := e.driver.Input(ctx, InputConfig{
		Message: e.message("Object ID"),
		Default: id,
	})
	if err != nil {
		return err
	}
	if nextID = strings.TrimSpace(nextID); nextID != "" && nextID != id {
		if err := e.form.UpdateObject(id, objects.FieldObjectID, nextID); err != nil {
			if werr := e.warn(ctx, err.Error()); werr != nil {
				return werr
			}
		} else {
			id = nextID
		}
	}

	description, err := e.driver.Input(ctx, InputConfig{
		Message: e.message("Description"),
		Default: entry.Description,
	})
	if err != nil {
		return err
	}
	if err := set(objects.FieldDescription, description); err != nil {
		return err
	}
	characteristics, err := e.driver.Input(ctx, InputConfig{
		Message: e.message("Characteristics"),
		Default: entry.Characteristics,
		Help:    "Comma separated",
	})
	if err != nil {
		return err
	}
	if err := set(objects.FieldCharacteristics, characteristics); err != nil {
		return err
	}

	for _, setting := range cfg.Settings {
		if blockedBy(parents[setting.Key], values) {
			continue
		}
		value, err := e.promptSetting(ctx, setting, text(values[setting.Key]), cfg.Palette)
		if err != nil {
			return err
		}
		if err := set(setting.Key, value); err != nil {
			return err
		}
	}
	return nil
}

func (e *Editor) promptSetting(ctx context.Context, setting config.ObjectSetting, current string, palette []config.PaletteEntry) (string, error) {
	label := setting.Label
	if label == "" {
		label = setting.Key
	}
	help := setting.Description
	if setting.Placeholder != "" && help == "" {
		help = setting.Placeholder
	}
	switch {
	case setting.Key == objects.FieldHighlightTags && len(palette) > 0:
		return e.promptPalette(ctx, label, help, current, palette)
	case setting.Type == config.KindSelect:
		opts := make([]form.Option, len(setting.Options))
		for i, value := range setting.Options {
			opts[i] = form.Option{Value: value, Label: value}
		}
		return e.selectOption(ctx, label, help, opts, current)
	case setting.Type == config.KindRange:
		return e.promptRange(ctx, label, help, current, setting.Min, setting.Max)
	case setting.Type == config.KindTextarea:
		return e.driver.TextArea(ctx, TextAreaConfig{Message: e.message(label), Default: current, Help: help})
	default:
		return e.driver.Input(ctx, InputConfig{Message: e.message(label), Default: current, Help: help})
	}
}

// promptPalette offers the palette tags as a multi-select and returns the
// chosen keys comma separated. Tags already on the object that are not in the
// palette are kept.
func (e *Editor) promptPalette(ctx context.Context, label, help, current string, palette []config.PaletteEntry) (string, error) {
	options := make([]string, len(palette))
	for i, entry := range palette {
		options[i] = fmt.Sprintf("%s (%s)", entry.Label, entry.Key)
	}
	var selected, extra []string
	known := make(map[string]int, len(palette))
	for i, entry := range palette {
		known[entry.Key] = i
	}
	for _, tag := range objects.ParseHighlightTags(current, palette) {
		if i, ok := known[tag.Tag]; ok {
			selected = append(selected, options[i])
			continue
		}
		item := tag.Tag
		if tag.Color != "" {
			item += ":" + tag.Color
		}
		extra = append(extra, item)
	}
	picked, err := e.driver.MultiSelect(ctx, SelectConfig{
		Message:  e.message(label),
		Options:  options,
		Defaults: indicesOf(options, selected),
		Help:     help,
	})
	if err != nil {
		return "", err
	}
	tags := make([]string, 0, len(picked)+len(extra))
	for _, idx := range picked {
		if idx >= 0 && idx < len(palette) {
			tags = append(tags, palette[idx].Key)
		}
	}
	tags = append(tags, extra...)
	return strings.Join(tags, ", "), nil
}

func dependencyParents(deps map[string][]string) map[string][]string {
	out := make(map[string][]string)
	for parent, children := range deps {
		for _, child := range children {
			out[child] = append(out[child], parent)
		}
	}
	return out
}

func blockedBy(parents []string, values map[string]any) bool {
	for _, parent := range parents {
		if strings.TrimSpace(text(values[parent])) == "" {
			return true
		}
	}
	return false
}

func (e *Editor) info(ctx context.Context, msg string) error {
	return e.driver.Info(ctx, e.theme.InfoPrefix+msg)
}

func (e *Editor) warn(ctx context.Context, msg string) error {
	return e.driver.Info(ctx, e.theme.ErrorPrefix+msg)
}

func (e *Editor) message(label string) string {
	return e.theme.PromptPrefix + label
}

func (e *Editor) writer() io.Writer {
	if e.out != nil {
		return e.out
	}
	return os.Stdout
}

func sectionLabel(reg *config.Registry, key string) string {
	for _, section := range reg.Sections {
		if section.Key == key && section.Label != "" {
			return section.Label
		}
	}
	return key
}

func fieldLabel(field config.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.ID
}

func text(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

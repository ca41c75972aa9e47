package document

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/objects"
)

// ErrMissingInput is returned when Synthesize lacks a registry or values.
var ErrMissingInput = errors.New("document: registry and values are required")

// Values is the read view of the form state used during synthesis.
type Values interface {
	String(id string) string
	Bool(id string) bool
}

// Input is everything synthesis depends on. Identical inputs always produce
// identical documents.
type Input struct {
	Registry *config.Registry
	Values   Values
	// Task is the selected task; Values supplies the free-text description.
	Task string
	// Style is the active style key.
	Style string
	// SectionVisible reports whether a form section is displayed. A nil func
	// treats every section as visible.
	SectionVisible func(section string) bool
	Objects        []objects.Entry
}

// Synthesize builds the canonical document from the form state.
func Synthesize(in Input) (Document, error) {
	if in.Registry == nil || in.Values == nil {
		return Document{}, ErrMissingInput
	}
	s := synth{in: in}

	doc := Document{
		Task:  s.task(),
		Style: s.style(),
	}

	if s.visible("lighting") {
		doc.Lighting = &Lighting{
			Type:        s.text("lightType", "Soft"),
			Direction:   s.text("lightDirection", "Front"),
			Scheme:      s.text("lightingScheme", "Butterfly"),
			Temperature: s.text("temperature", "Neutral"),
		}
	}
	if s.visible("composition") {
		doc.Composition = &Composition{
			Framing:      s.text("framing", "Medium shot"),
			Angle:        s.text("angle", "Straight"),
			RuleOfThirds: s.flag("ruleOfThirds"),
		}
	}
	if s.visible("quality") {
		doc.Quality = &Quality{
			Resolution:     s.text("resolution", "1024x1024"),
			DetailLevel:    s.text("detailLevel", "Medium"),
			NoiseReduction: s.flag("noiseReduction"),
			Sharpening:     s.flag("sharpening"),
		}
	}
	if s.visible("restrictions") {
		doc.Restrictions = &Restrictions{
			PreserveFaces:       s.flag("preserveFaces"),
			PreserveComposition: s.flag("preserveComposition"),
			NoObjectAddition:    s.flag("noObjectAddition"),
			NoBackgroundChange:  s.flag("noBackgroundChange"),
			PrecisePositioning:  s.flag("precisePositioning"),
		}
	}
	if s.visible("objects") {
		if list := objects.TransformAll(in.Objects, in.Registry.Objects); len(list) > 0 {
			doc.AdditionalObjects = list
		}
	}
	if in.Registry.IsPhotography(in.Style) && s.visible(config.SectionCamera) {
		doc.CameraSettings = &Camera{
			ISO:          s.text("iso", "400"),
			Aperture:     s.text("aperture", "f/2.8"),
			ShutterSpeed: s.text("shutterSpeed", "1/250"),
			FocalLength:  s.text("focalLength", "50mm"),
		}
	}
	if s.visible("atmosphere") {
		weather := s.text("weatherCondition", "")
		phenomenon := s.text("naturalPhenomenon", "")
		notes := strings.TrimSpace(s.text("atmosphereNotes", ""))
		if weather != "" || phenomenon != "" || notes != "" {
			doc.Atmosphere = &Atmosphere{Weather: weather, NaturalPhenomenon: phenomenon, Notes: notes}
		}
	}
	return doc, nil
}

type synth struct {
	in Input
}

func (s synth) visible(section string) bool {
	if s.in.SectionVisible == nil {
		return true
	}
	return s.in.SectionVisible(section)
}

// text returns the value of id, or fallback when the catalog has no such
// control.
func (s synth) text(id, fallback string) string {
	if _, ok := s.in.Registry.Field(id); !ok {
		return fallback
	}
	return s.in.Values.String(id)
}

func (s synth) flag(id string) bool {
	if _, ok := s.in.Registry.Field(id); !ok {
		return false
	}
	return s.in.Values.Bool(id)
}

func (s synth) task() string {
	task := strings.TrimSpace(s.in.Task)
	if task == "" {
		task = config.DefaultTask
		if len(s.in.Registry.Tasks) > 0 {
			task = s.in.Registry.Tasks[0]
		}
	}
	description := strings.TrimSpace(s.text(config.FieldTaskDescription, ""))
	if description == "" {
		return task
	}
	return task + ": " + description
}

func (s synth) style() Style {
	out := Style{
		MainStyle: s.in.Style,
		Preset:    s.text(config.FieldStylePreset, ""),
		Settings:  map[string]any{},
	}
	def, ok := s.in.Registry.Style(s.in.Style)
	if !ok {
		return out
	}
	out.Category = def.Category

	for _, id := range def.Panel {
		field, ok := s.in.Registry.Field(id)
		if !ok {
			continue
		}
		key := SnakeCase(id)
		switch field.Kind {
		case config.KindCheckbox:
			out.Settings[key] = s.in.Values.Bool(id)
		case config.KindRange:
			raw := strings.TrimSpace(s.in.Values.String(id))
			if n, err := strconv.Atoi(raw); err == nil {
				out.Settings[key] = n
			} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
				out.Settings[key] = int(f)
			}
		default:
			if value := s.in.Values.String(id); value != "" {
				out.Settings[key] = value
			}
		}
	}
	return out
}

// SnakeCase converts a camelCase control id into a lower snake_case key.
func SnakeCase(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case unicode.IsUpper(r):
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || unicode.IsSpace(r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CamelCase inverts SnakeCase.
func CamelCase(key string) string {
	var b strings.Builder
	upper := false
	for _, r := range key {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

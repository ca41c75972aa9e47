package document

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-promptform/pkg/objects"
)

// Prompt renders the natural-language prompt for doc.
func Prompt(doc Document) string {
	return strings.Join(Lines(doc), "\n")
}

// Section is one rendered prompt section. The task section has no label.
type Section struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Body  string `json:"body"`
}

// Line renders the section as a single prompt line.
func (s Section) Line() string {
	if s.Label == "" {
		return s.Body
	}
	return s.Label + ": " + s.Body
}

// Lines returns one prompt line per present section in the order task,
// camera, lighting, composition, style, quality, atmosphere, objects,
// restrictions.
func Lines(doc Document) []string {
	sections := Sections(doc)
	lines := make([]string, 0, len(sections))
	for _, section := range sections {
		lines = append(lines, section.Line())
	}
	return lines
}

// Sections returns the prompt sections of doc in prompt order.
func Sections(doc Document) []Section {
	var out []Section
	add := func(key, label, body string) {
		out = append(out, Section{Key: key, Label: label, Body: body})
	}
	if doc.Task != "" {
		add("task", "", doc.Task)
	}
	if cam := doc.CameraSettings; cam != nil {
		add("camera", "Camera settings", fmt.Sprintf("ISO %s, aperture %s, shutter %s, %s lens.",
			or(cam.ISO, "400"), or(cam.Aperture, "f/2.8"), or(cam.ShutterSpeed, "1/250"), or(cam.FocalLength, "50mm")))
	}
	if l := doc.Lighting; l != nil {
		add("lighting", "Lighting", fmt.Sprintf("%s light from the %s using %s scheme, %s temperature.",
			or(l.Type, "Soft"), or(strings.ToLower(l.Direction), "front"), or(l.Scheme, "Standard"), or(strings.ToLower(l.Temperature), "neutral")))
	}
	if c := doc.Composition; c != nil {
		parts := []string{
			"framing " + or(strings.ToLower(c.Framing), "medium shot"),
			"angle " + or(strings.ToLower(c.Angle), "straight"),
		}
		if c.RuleOfThirds {
			parts = append(parts, "respecting the rule of thirds")
		}
		add("composition", "Composition", strings.Join(parts, ", ")+".")
	}
	add("style", "Main style", styleBody(doc.Style))
	if q := doc.Quality; q != nil {
		parts := []string{"resolution " + q.Resolution}
		if q.DetailLevel != "" {
			parts = append(parts, "detail level "+strings.ToLower(q.DetailLevel))
		}
		if q.NoiseReduction {
			parts = append(parts, "noise reduction on")
		}
		if q.Sharpening {
			parts = append(parts, "sharpening enabled")
		}
		add("quality", "Quality", strings.Join(parts, ", ")+".")
	}
	if a := doc.Atmosphere; a != nil {
		var parts []string
		if a.Weather != "" {
			parts = append(parts, "weather "+Humanize(a.Weather))
		}
		if a.NaturalPhenomenon != "" {
			parts = append(parts, "phenomenon "+Humanize(a.NaturalPhenomenon))
		}
		if a.Notes != "" {
			parts = append(parts, "notes: "+a.Notes)
		}
		if len(parts) > 0 {
			add("atmosphere", "Atmosphere", strings.Join(parts, ", ")+".")
		}
	}
	if len(doc.AdditionalObjects) > 0 {
		described := make([]string, 0, len(doc.AdditionalObjects))
		for _, obj := range doc.AdditionalObjects {
			described = append(described, ObjectSegment(obj))
		}
		add("objects", "Additional objects", strings.Join(described, " | ")+".")
	}
	if r := doc.Restrictions; r != nil {
		var active []string
		for _, item := range []struct {
			on   bool
			name string
		}{
			{r.PreserveFaces, "preserve faces"},
			{r.PreserveComposition, "preserve composition"},
			{r.NoObjectAddition, "no object addition"},
			{r.NoBackgroundChange, "no background change"},
			{r.PrecisePositioning, "precise positioning"},
		} {
			if item.on {
				active = append(active, item.name)
			}
		}
		if len(active) > 0 {
			add("restrictions", "Restrictions", strings.Join(active, ", ")+".")
		}
	}
	return out
}

func styleBody(style Style) string {
	details := []string{Humanize(style.MainStyle)}
	keys := make([]string, 0, len(style.Settings))
	for key := range style.Settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		label := strings.ReplaceAll(key, "_", " ")
		switch v := style.Settings[key].(type) {
		case bool:
			if v {
				details = append(details, label+" enabled")
			}
		case string:
			if v != "" {
				details = append(details, label+" "+Humanize(v))
			}
		case int:
			details = append(details, label+" "+strconv.Itoa(v))
		default:
			details = append(details, fmt.Sprintf("%s %v", label, v))
		}
	}
	return strings.Join(details, ", ") + "."
}

// ObjectSegment renders one canonical object for the prompt.
func ObjectSegment(obj objects.Canonical) string {
	var segments []string
	if obj.Description != "" {
		segments = append(segments, obj.Description)
	}
	if len(obj.Characteristics) > 0 {
		segments = append(segments, "characteristics: "+strings.Join(obj.Characteristics, ", "))
	}
	if len(obj.HighlightTags) > 0 {
		tags := make([]string, 0, len(obj.HighlightTags))
		for _, tag := range obj.HighlightTags {
			if tag.Color != "" {
				tags = append(tags, fmt.Sprintf("%s (%s)", tag.Tag, tag.Color))
			} else {
				tags = append(tags, tag.Tag)
			}
		}
		segments = append(segments, "highlight tags: "+strings.Join(tags, ", "))
	}
	if settings := obj.Settings; settings != nil {
		var mods []string
		for _, mod := range [][2]string{
			{"weight", settings.Weight},
			{"priority", settings.Priority},
			{"scale", settings.Scale},
		} {
			if mod[1] != "" {
				mods = append(mods, mod[0]+" "+mod[1])
			}
		}
		if len(mods) > 0 {
			segments = append(segments, strings.Join(mods, ", "))
		}
		for _, detail := range [][2]string{
			{"position", settings.Position},
			{"material", settings.Material},
			{"structure", settings.Structure},
			{"texture", settings.Texture},
		} {
			if detail[1] != "" {
				segments = append(segments, detail[0]+": "+detail[1])
			}
		}
		if settings.Importance != nil {
			segments = append(segments, "importance "+strconv.Itoa(*settings.Importance))
		}
		if obj.Relations != nil && len(obj.Relations.InteractsWith) > 0 {
			segments = append(segments, "interacts with: "+strings.Join(obj.Relations.InteractsWith, ", "))
		}
		if settings.InteractionNotes != "" {
			segments = append(segments, "notes: "+settings.InteractionNotes)
		}
	} else if obj.Relations != nil && len(obj.Relations.InteractsWith) > 0 {
		segments = append(segments, "interacts with: "+strings.Join(obj.Relations.InteractsWith, ", "))
	}
	return strings.Join(segments, "; ")
}

// Humanize replaces underscores with spaces and upper-cases the first letter.
func Humanize(value string) string {
	text := strings.ReplaceAll(value, "_", " ")
	if text == "" {
		return text
	}
	r, size := utf8.DecodeRuneInString(text)
	return string(unicode.ToUpper(r)) + text[size:]
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

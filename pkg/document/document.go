package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-promptform/pkg/objects"
)

// Document is the canonical JSON prompt. Field order is the serialization
// order; optional sections are omitted when their form section is hidden.
type Document struct {
	Task              string              `json:"task"`
	Style             Style               `json:"style"`
	Lighting          *Lighting           `json:"lighting,omitempty"`
	Composition       *Composition        `json:"composition,omitempty"`
	Quality           *Quality            `json:"quality,omitempty"`
	Restrictions      *Restrictions       `json:"restrictions,omitempty"`
	AdditionalObjects []objects.Canonical `json:"additional_objects,omitempty"`
	CameraSettings    *Camera             `json:"camera_settings,omitempty"`
	Atmosphere        *Atmosphere         `json:"atmosphere,omitempty"`
}

// Style describes the active style and the values of its panel controls.
type Style struct {
	MainStyle string         `json:"main_style"`
	Category  string         `json:"category,omitempty"`
	Preset    string         `json:"preset,omitempty"`
	Settings  map[string]any `json:"settings"`
}

type Lighting struct {
	Type        string `json:"type"`
	Direction   string `json:"direction"`
	Scheme      string `json:"scheme"`
	Temperature string `json:"temperature"`
}

type Composition struct {
	Framing      string `json:"framing"`
	Angle        string `json:"angle"`
	RuleOfThirds bool   `json:"rule_of_thirds"`
}

type Quality struct {
	Resolution     string `json:"resolution"`
	DetailLevel    string `json:"detail_level"`
	NoiseReduction bool   `json:"noise_reduction"`
	Sharpening     bool   `json:"sharpening"`
}

// Restrictions lists edit restrictions. Field order is the prompt order.
type Restrictions struct {
	PreserveFaces       bool `json:"preserve_faces"`
	PreserveComposition bool `json:"preserve_composition"`
	NoObjectAddition    bool `json:"no_object_addition"`
	NoBackgroundChange  bool `json:"no_background_change"`
	PrecisePositioning  bool `json:"precise_positioning"`
}

type Camera struct {
	ISO          string `json:"iso"`
	Aperture     string `json:"aperture"`
	ShutterSpeed string `json:"shutter_speed"`
	FocalLength  string `json:"focal_length"`
}

type Atmosphere struct {
	Weather           string `json:"weather"`
	NaturalPhenomenon string `json:"natural_phenomenon"`
	Notes             string `json:"notes"`
}

// Marshal renders doc as two-space indented JSON without a trailing newline.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("document: marshal: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/interchange"
	"github.com/goliatone/go-promptform/pkg/orchestrator"
)

type ListStylesInput struct{}

type ListPresetsInput struct {
	Style string `json:"style,omitempty" jsonschema:"restrict to presets usable with this style key"`
}

type SynthesizeInput struct {
	Style       string           `json:"style,omitempty" jsonschema:"main style key, defaults to the first style"`
	Preset      string           `json:"preset,omitempty" jsonschema:"preset key to apply after the style"`
	Task        string           `json:"task,omitempty" jsonschema:"task name, defaults to the first task"`
	Description string           `json:"description,omitempty" jsonschema:"free-text task description"`
	Controls    map[string]any   `json:"controls,omitempty" jsonschema:"control values by field id"`
	Objects     []map[string]any `json:"objects,omitempty" jsonschema:"additional objects in form shape"`
	Format      string           `json:"format,omitempty" jsonschema:"optional prompt format: json, paragraph, bullet, markdown or html"`
}

type ImportDocumentInput struct {
	Content string `json:"content" jsonschema:"export file, autosave payload or bare prompt document as JSON text"`
}

type StyleOutput struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Category    string   `json:"category"`
	Photography bool     `json:"photography"`
	Substyles   []string `json:"substyles,omitempty"`
}

type ListStylesOutput struct {
	Styles []StyleOutput `json:"styles"`
}

type PresetOutput struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Style       string `json:"style"`
	Description string `json:"description,omitempty"`
}

type ListPresetsOutput struct {
	Presets []PresetOutput `json:"presets"`
}

type SynthesizeOutput struct {
	Style    string `json:"style"`
	Task     string `json:"task"`
	JSON     string `json:"json"`
	Prompt   string `json:"prompt"`
	Format   string `json:"format,omitempty"`
	Rendered string `json:"rendered,omitempty"`
}

type ImportDocumentOutput struct {
	Kind     string           `json:"kind"`
	Style    string           `json:"style"`
	Task     string           `json:"task"`
	Controls map[string]any   `json:"controls"`
	Objects  []map[string]any `json:"objects"`
	JSON     string           `json:"json"`
	Prompt   string           `json:"prompt"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_styles",
		Description: "List the available main styles",
	}, s.handleListStyles)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_presets",
		Description: "List presets, optionally only those usable with a style",
	}, s.handleListPresets)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "synthesize",
		Description: "Build the JSON document and prompt text for a style, preset, controls and objects",
	}, s.handleSynthesize)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "import_document",
		Description: "Normalize an exported, autosaved or bare document and return its form state and prompt",
	}, s.handleImportDocument)
}

func (s *Server) handleListStyles(ctx context.Context, req *sdk.CallToolRequest, input ListStylesInput) (*sdk.CallToolResult, ListStylesOutput, error) {
	out := make([]StyleOutput, 0, len(s.registry.Styles))
	for _, style := range s.registry.Styles {
		out = append(out, styleOutputFromConfig(s.registry, style))
	}
	return nil, ListStylesOutput{Styles: out}, nil
}

func (s *Server) handleListPresets(ctx context.Context, req *sdk.CallToolRequest, input ListPresetsInput) (*sdk.CallToolResult, ListPresetsOutput, error) {
	presets := s.registry.Presets
	if input.Style != "" {
		if _, ok := s.registry.Style(input.Style); !ok {
			return nil, ListPresetsOutput{}, fmt.Errorf("unknown style %q", input.Style)
		}
		presets = s.registry.PresetsForStyle(input.Style)
	}
	out := make([]PresetOutput, 0, len(presets))
	for _, preset := range presets {
		out = append(out, PresetOutput{
			Key:         preset.Key,
			Label:       preset.Label,
			Style:       preset.Style,
			Description: preset.Description,
		})
	}
	return nil, ListPresetsOutput{Presets: out}, nil
}

func (s *Server) handleSynthesize(ctx context.Context, req *sdk.CallToolRequest, input SynthesizeInput) (*sdk.CallToolResult, SynthesizeOutput, error) {
	if input.Style != "" {
		if _, ok := s.registry.Style(input.Style); !ok {
			return nil, SynthesizeOutput{}, fmt.Errorf("unknown style %q", input.Style)
		}
	}
	if input.Preset != "" {
		if _, ok := s.registry.Preset(input.Preset); !ok {
			return nil, SynthesizeOutput{}, fmt.Errorf("unknown preset %q", input.Preset)
		}
	}

	c, err := s.controller(ctx)
	if err != nil {
		return nil, SynthesizeOutput{}, err
	}
	defer c.Close(ctx)

	if err := apply(c, input); err != nil {
		return nil, SynthesizeOutput{}, err
	}
	preview := c.Preview()
	if preview.Err != nil {
		return nil, SynthesizeOutput{}, preview.Err
	}

	out := SynthesizeOutput{
		Style:  c.ActiveStyle(),
		Task:   c.Task(),
		JSON:   preview.JSON,
		Prompt: preview.Prompt,
	}
	if input.Format != "" {
		rendered, err := c.Render(ctx, input.Format)
		if err != nil {
			return nil, SynthesizeOutput{}, err
		}
		out.Format = input.Format
		out.Rendered = string(rendered)
	}
	return nil, out, nil
}

// apply replays input the way a user would fill the form: style first so
// its defaults land, then the preset, then explicit controls over both.
func apply(c *orchestrator.Controller, input SynthesizeInput) error {
	if input.Style != "" {
		if _, err := c.ApplyStyle(input.Style); err != nil {
			return err
		}
	}
	if input.Preset != "" {
		if err := c.ApplyPreset(input.Preset); err != nil {
			return err
		}
	}
	controls := make(map[string]any, len(input.Controls)+1)
	for id, value := range input.Controls {
		controls[id] = value
	}
	if input.Description != "" {
		controls[config.FieldTaskDescription] = input.Description
	}
	if len(controls) > 0 {
		if err := c.SetControls(controls); err != nil {
			return err
		}
	}
	if input.Task != "" {
		if _, err := c.SelectTask(input.Task); err != nil {
			return err
		}
	}
	for _, seed := range input.Objects {
		if _, err := c.AddObject(seed); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleImportDocument(ctx context.Context, req *sdk.CallToolRequest, input ImportDocumentInput) (*sdk.CallToolResult, ImportDocumentOutput, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, ImportDocumentOutput{}, fmt.Errorf("content is required")
	}
	c, err := s.controller(ctx)
	if err != nil {
		return nil, ImportDocumentOutput{}, err
	}
	defer c.Close(ctx)

	payload, err := c.Import([]byte(input.Content))
	if err != nil {
		return nil, ImportDocumentOutput{}, importError(err)
	}
	snap := c.Snapshot()
	preview := c.Preview()
	return nil, ImportDocumentOutput{
		Kind:     string(payload.Kind),
		Style:    c.ActiveStyle(),
		Task:     snap.Task,
		Controls: snap.Controls,
		Objects:  snap.Objects,
		JSON:     preview.JSON,
		Prompt:   preview.Prompt,
	}, nil
}

// importError keeps the wrapped cause while leading with the message the
// form would show.
func importError(err error) error {
	var validation *interchange.ValidationError
	var migration *interchange.MigrationError
	if errors.As(err, &validation) || errors.As(err, &migration) {
		return fmt.Errorf("%s: %w", interchange.Message(err), err)
	}
	return err
}

func styleOutputFromConfig(reg *config.Registry, style config.Style) StyleOutput {
	out := StyleOutput{
		Key:         style.Key,
		Label:       style.Label,
		Category:    style.Category,
		Photography: reg.IsPhotography(style.Key),
	}
	for _, sub := range style.Substyles {
		out.Substyles = append(out.Substyles, sub.Key)
	}
	return out
}

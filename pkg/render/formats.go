package render

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-promptform/pkg/document"
	"github.com/goliatone/go-promptform/pkg/render/template"
	"github.com/goliatone/go-promptform/pkg/render/template/pongo"
)

const (
	FormatJSON      = "json"
	FormatParagraph = "paragraph"
	FormatBullet    = "bullet"
	FormatMarkdown  = "markdown"
	FormatHTML      = "html"
)

const (
	contentJSON     = "application/json"
	contentText     = "text/plain; charset=utf-8"
	contentMarkdown = "text/markdown; charset=utf-8"
	contentHTML     = "text/html; charset=utf-8"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded markdown and html templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(fmt.Sprintf("render: embedded templates: %v", err))
	}
	return sub
}

// NewEngine builds a pongo2 engine over the embedded templates with the
// prompt filters registered. pongo.WithDir overrides templates per file.
func NewEngine(opts ...pongo.Option) (*pongo.Engine, error) {
	all := append([]pongo.Option{pongo.WithFilter("humanize", document.Humanize)}, opts...)
	all = append(all, pongo.WithFS(TemplatesFS()))
	return pongo.New(all...)
}

// NewDefaultRegistry registers every built-in format.
func NewDefaultRegistry(opts ...pongo.Option) (*Registry, error) {
	engine, err := NewEngine(opts...)
	if err != nil {
		return nil, fmt.Errorf("render: template engine: %w", err)
	}
	reg := NewRegistry()
	for _, renderer := range []Renderer{
		JSON(),
		Paragraph(),
		Bullet(),
		Markdown(engine),
		HTML(engine),
	} {
		if err := reg.Register(renderer); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

type textRenderer struct {
	name        string
	contentType string
	render      func(document.Document) ([]byte, error)
}

func (r textRenderer) Name() string        { return r.name }
func (r textRenderer) ContentType() string { return r.contentType }

func (r textRenderer) Render(ctx context.Context, doc document.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.render(doc)
}

// JSON renders the canonical document.
func JSON() Renderer {
	return textRenderer{name: FormatJSON, contentType: contentJSON, render: document.Marshal}
}

// Paragraph renders the prompt text, one line per section.
func Paragraph() Renderer {
	return textRenderer{
		name:        FormatParagraph,
		contentType: contentText,
		render: func(doc document.Document) ([]byte, error) {
			return []byte(document.Prompt(doc)), nil
		},
	}
}

// Bullet renders each prompt line as a list item.
func Bullet() Renderer {
	return textRenderer{
		name:        FormatBullet,
		contentType: contentText,
		render: func(doc document.Document) ([]byte, error) {
			lines := document.Lines(doc)
			for i, line := range lines {
				lines[i] = "- " + line
			}
			return []byte(strings.Join(lines, "\n")), nil
		},
	}
}

type templateRenderer struct {
	name        string
	contentType string
	template    string
	engine      template.TemplateRenderer
	finish      func(string) string
}

func (r templateRenderer) Name() string        { return r.name }
func (r templateRenderer) ContentType() string { return r.contentType }

func (r templateRenderer) Render(ctx context.Context, doc document.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.engine == nil {
		return nil, fmt.Errorf("render: %s: template engine is nil", r.name)
	}
	out, err := r.engine.RenderTemplate(r.template, view(doc))
	if err != nil {
		return nil, fmt.Errorf("render: %s: %w", r.name, err)
	}
	return []byte(r.finish(out)), nil
}

// Markdown renders one heading per prompt section.
func Markdown(engine template.TemplateRenderer) Renderer {
	return templateRenderer{
		name:        FormatMarkdown,
		contentType: contentMarkdown,
		template:    "markdown",
		engine:      engine,
		finish:      squeezeBlankLines,
	}
}

// HTML renders an article with one section element per prompt section. The
// output is sanitized.
func HTML(engine template.TemplateRenderer) Renderer {
	return templateRenderer{
		name:        FormatHTML,
		contentType: contentHTML,
		template:    "html",
		engine:      engine,
		finish: func(out string) string {
			return strings.TrimSpace(htmlPolicy().Sanitize(out)) + "\n"
		},
	}
}

func view(doc document.Document) map[string]any {
	sections := document.Sections(doc)
	items := make([]map[string]any, 0, len(sections))
	for _, section := range sections {
		items = append(items, map[string]any{
			"key":   section.Key,
			"label": section.Label,
			"body":  section.Body,
		})
	}
	return map[string]any{
		"style":    doc.Style.MainStyle,
		"sections": items,
		"document": doc,
	}
}

var blankLines = regexp.MustCompile(`\n{3,}`)

func squeezeBlankLines(out string) string {
	return strings.TrimSpace(blankLines.ReplaceAllString(out, "\n\n")) + "\n"
}

var (
	htmlPolicyOnce sync.Once
	htmlSanitizer  *bluemonday.Policy
)

func htmlPolicy() *bluemonday.Policy {
	htmlPolicyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("article", "section", "h1", "h2", "p")
		p.AllowAttrs("class").Matching(regexp.MustCompile(`^prompt(-[a-z_]+)?$`)).OnElements("article", "section")
		htmlSanitizer = p
	})
	return htmlSanitizer
}

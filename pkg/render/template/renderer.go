package template

// TemplateRenderer is the template engine seam used by the prompt format
// renderers. Data is addressed by json names.
type TemplateRenderer interface {
	RenderTemplate(name string, data any) (string, error)
}

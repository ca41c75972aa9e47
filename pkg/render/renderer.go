package render

import (
	"context"

	"github.com/goliatone/go-promptform/pkg/document"
)

// Renderer turns a synthesized document into one prompt output format.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, doc document.Document) ([]byte, error)
}

// Render renders doc with the renderer registered under name.
func (r *Registry) Render(ctx context.Context, name string, doc document.Document) ([]byte, error) {
	renderer, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, doc)
}

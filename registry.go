package promptform

import (
	"io/fs"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/render"
)

// LoadRegistry loads a registry document from path, or returns the embedded
// catalog when path is empty.
func LoadRegistry(path string) (*config.Registry, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

// RegistryFS exposes the bundled registry documents so callers can start a
// custom catalog from the default one.
func RegistryFS() fs.FS {
	return config.EmbeddedFS()
}

// EmbeddedTemplates exposes the markdown and html prompt templates so callers
// can start overrides for pongo.WithDir from them.
func EmbeddedTemplates() fs.FS {
	return render.TemplatesFS()
}

package config

import (
	"embed"
	"io/fs"
	"sync"
)

// DefaultPath is the registry document inside EmbeddedFS.
const DefaultPath = "default.yaml"

//go:embed registry/*.yaml
var embeddedRegistry embed.FS

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// EmbeddedFS returns the bundled registry documents.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedRegistry, "registry")
	if err != nil {
		panic(err)
	}
	return sub
}

// Default returns the bundled catalog. The returned registry is shared and
// must not be modified.
func Default() *Registry {
	reg, err := defaultRegistry()
	if err != nil {
		panic("config: embedded registry: " + err.Error())
	}
	return reg
}

func defaultRegistry() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = LoadFS(EmbeddedFS(), DefaultPath)
	})
	return defaultReg, defaultErr
}

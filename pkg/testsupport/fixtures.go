package testsupport

import (
	"context"
	"testing"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/document"
	"github.com/goliatone/go-promptform/pkg/form"
	"github.com/goliatone/go-promptform/pkg/objects"
	"github.com/goliatone/go-promptform/pkg/style"
	"github.com/goliatone/go-promptform/pkg/visibility"
)

// Form bundles the pieces a controller owns so package tests can drive
// reconciliation and synthesis without one.
type Form struct {
	Registry *config.Registry
	Store    *form.Store
	Layout   *visibility.Layout
	Styles   *style.Reconciler
	Objects  *objects.Manager
}

// NewForm builds a form over the embedded registry with styleKey applied.
func NewForm(t *testing.T, styleKey string) Form {
	t.Helper()
	return NewFormWith(t, config.Default(), styleKey)
}

// NewFormWith builds a form over reg with styleKey applied.
func NewFormWith(t *testing.T, reg *config.Registry, styleKey string) Form {
	t.Helper()

	store := form.New(reg)
	layout := visibility.NewLayout(reg)
	styles := style.New(reg, store, layout)
	styles.SelectStyle(styleKey)
	return Form{
		Registry: reg,
		Store:    store,
		Layout:   layout,
		Styles:   styles,
		Objects:  objects.NewManager(reg.Objects),
	}
}

// Input returns the synthesis input for the current form state.
func (f Form) Input() document.Input {
	return document.Input{
		Registry:       f.Registry,
		Values:         f.Store,
		Task:           f.Store.Task(),
		Style:          f.Styles.ActiveStyle(),
		SectionVisible: f.Layout.SectionVisible,
		Objects:        f.Objects.Entries(),
	}
}

// Synthesize synthesizes the current form state, failing the test on error.
func (f Form) Synthesize(t *testing.T) document.Document {
	t.Helper()

	doc, err := document.Synthesize(f.Input())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	return doc
}

// Document synthesizes the default state of styleKey.
func Document(t *testing.T, styleKey string) document.Document {
	t.Helper()
	return NewForm(t, styleKey).Synthesize(t)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

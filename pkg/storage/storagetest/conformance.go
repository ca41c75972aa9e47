// Package storagetest checks autosave.Storage implementations against the
// behaviour the gateway relies on.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-promptform/pkg/autosave"
	"github.com/goliatone/go-promptform/pkg/config"
)

// Run exercises a fresh storage returned by open.
func Run(t *testing.T, open func(t *testing.T) autosave.Storage) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		store := open(t)
		if _, err := store.Get(ctx, "absent"); !errors.Is(err, autosave.ErrNotFound) {
			t.Fatalf("get absent = %v, want ErrNotFound", err)
		}
	})

	t.Run("set get overwrite", func(t *testing.T) {
		store := open(t)
		if err := store.Set(ctx, "nanobana:state", []byte(`{"a":1}`)); err != nil {
			t.Fatalf("set: %v", err)
		}
		if err := store.Set(ctx, "nanobana:state", []byte(`{"a":2}`)); err != nil {
			t.Fatalf("overwrite: %v", err)
		}
		got, err := store.Get(ctx, "nanobana:state")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if string(got) != `{"a":2}` {
			t.Fatalf("get = %s", got)
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		store := open(t)
		if err := store.Set(ctx, "a:b", []byte("1")); err != nil {
			t.Fatalf("set: %v", err)
		}
		if err := store.Set(ctx, "a_b", []byte("2")); err != nil {
			t.Fatalf("set: %v", err)
		}
		got, err := store.Get(ctx, "a:b")
		if err != nil || string(got) != "1" {
			t.Fatalf("get a:b = %s, %v", got, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		store := open(t)
		if err := store.Set(ctx, "k", []byte("v")); err != nil {
			t.Fatalf("set: %v", err)
		}
		if err := store.Delete(ctx, "k"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := store.Get(ctx, "k"); !errors.Is(err, autosave.ErrNotFound) {
			t.Fatalf("get deleted = %v", err)
		}
		if err := store.Delete(ctx, "k"); err != nil {
			t.Fatalf("delete missing key: %v", err)
		}
	})

	t.Run("startup check", func(t *testing.T) {
		store := open(t)
		gw := autosave.New(ctx, store, config.Default().Storage)
		if !gw.Available() {
			t.Fatalf("gateway storage check failed")
		}
	})
}

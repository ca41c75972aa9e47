package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/goliatone/go-promptform/pkg/autosave"
	"github.com/goliatone/go-promptform/pkg/storage/postgres"
	"github.com/goliatone/go-promptform/pkg/storage/storagetest"
)

func TestStore_Conformance(t *testing.T) {
	dsn := os.Getenv("PROMPTFORM_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PROMPTFORM_POSTGRES_DSN not set")
	}

	storagetest.Run(t, func(t *testing.T) autosave.Storage {
		store, err := postgres.New(context.Background(), dsn)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		t.Cleanup(func() {
			for _, key := range []string{"absent", "nanobana:state", "a:b", "a_b", "k"} {
				_ = store.Delete(context.Background(), key)
			}
			store.Close()
		})
		return store
	})
}

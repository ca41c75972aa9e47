package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-promptform/pkg/autosave"
	"github.com/goliatone/go-promptform/pkg/storage/storagetest"
)

func TestStore_ConformanceMemory(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) autosave.Storage {
		store, err := New(context.Background(), "sqlite://:memory:")
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dsn := "sqlite://" + filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	first, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := first.Set(ctx, "nanobana:state", []byte(`{"schemaVersion":2}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	got, err := second.Get(ctx, "nanobana:state")
	if err != nil || string(got) != `{"schemaVersion":2}` {
		t.Fatalf("get = %s, %v", got, err)
	}
}

func TestParseDSN(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "sqlite://:memory:", want: ":memory:"},
		{in: "sqlite:///var/lib/promptform.db", want: "/var/lib/promptform.db"},
		{in: "sqlite://./state.db", want: "./state.db"},
		{in: "sqlite://state.db", want: "./state.db"},
		{in: "sqlite://my%20state.db?_pragma=foreign_keys(1)", want: "./my state.db?_pragma=foreign_keys(1)"},
		{in: "postgres://localhost/db", wantErr: true},
		{in: "sqlite://", wantErr: true},
	} {
		got, err := parseDSN(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseDSN(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("parseDSN(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

package autosave

import "context"

// Storage is the key/value boundary the gateway persists through. Get returns
// ErrNotFound when the key is absent.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

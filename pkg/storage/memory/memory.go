// Package memory is a map-backed autosave.Storage.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-promptform/pkg/autosave"
)

var _ autosave.Storage = (*Store)(nil)

// Store keeps values in memory. It can be told to fail writes, which is how
// tests exercise the disabled and error paths of the gateway.
type Store struct {
	mu      sync.RWMutex
	values  map[string][]byte
	failErr error
}

// Option configures a Store.
type Option func(*Store)

// WithFailure makes every Set and Delete return err.
func WithFailure(err error) Option {
	return func(s *Store) {
		s.failErr = err
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{values: make(map[string][]byte)}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Fail switches write failures on (non-nil err) or off.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, autosave.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	delete(s.values, key)
	return nil
}

// Keys lists stored keys, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

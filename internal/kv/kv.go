// Package kv provides the key-value backends behind the persistence port.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is a durable string-keyed byte store. A nil error from Set or Delete
// means the write is durable.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const probeKey = "__storage_test__"

// Probe checks that the store accepts a write and a delete.
func Probe(ctx context.Context, s Store) error {
	if err := s.Set(ctx, probeKey, []byte("test")); err != nil {
		return fmt.Errorf("probe write: %w", err)
	}
	if err := s.Delete(ctx, probeKey); err != nil {
		return fmt.Errorf("probe delete: %w", err)
	}
	return nil
}

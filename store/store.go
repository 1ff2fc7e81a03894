// Package store provides the key-value collaborator: JSON documents addressed
// by string keys, with prefix scan and versioned writes. Each key is
// independently readable and writable; no operation spans multiple keys.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrConflict is returned by CompareAndSwap when the key's version moved
// since it was read. Callers retry with a fresh read.
var ErrConflict = errors.New("store: version conflict")

type Store interface {
	// Get loads the document at key into dest. Returns false when the key is absent.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// GetVersioned is Get plus the current version, for a later CompareAndSwap.
	// An absent key reports version 0.
	GetVersioned(ctx context.Context, key string, dest interface{}) (int64, bool, error)

	// Set writes the document unconditionally, creating the key if needed.
	Set(ctx context.Context, key string, value interface{}) error

	// CompareAndSwap writes the document only if the key's version still equals
	// expected. Expected 0 means "create; fail if the key exists".
	CompareAndSwap(ctx context.Context, key string, value interface{}, expected int64) error

	// GetByPrefix returns the raw documents of every key with the given prefix,
	// ordered by key.
	GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error)

	Delete(ctx context.Context, key string) error
}

// ListByPrefix decodes every document under prefix into a slice of T.
func ListByPrefix[T any](ctx context.Context, s Store, prefix string) ([]T, error) {
	raws, err := s.GetByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode document under %q: %w", prefix, err)
		}
		out = append(out, v)
	}
	return out, nil
}

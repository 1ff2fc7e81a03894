package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store with the same versioning semantics as
// PostgresStore. Used by tests and local development without Postgres.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	value   []byte
	version int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memEntry)}
}

func (s *MemoryStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	_, found, err := s.GetVersioned(ctx, key, dest)
	return found, err
}

func (s *MemoryStore) GetVersioned(_ context.Context, key string, dest interface{}) (int64, bool, error) {
	s.mu.Lock()
	entry, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return 0, false, nil
	}
	if dest != nil {
		if err := json.Unmarshal(entry.value, dest); err != nil {
			return 0, false, fmt.Errorf("decode %q: %w", key, err)
		}
	}
	return entry.version, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memEntry{value: data, version: s.entries[key].version + 1}
	return nil
}

func (s *MemoryStore) CompareAndSwap(_ context.Context, key string, value interface{}, expected int64) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries[key].version != expected {
		return ErrConflict
	}
	s.entries[key] = memEntry{value: data, version: expected + 1}
	return nil
}

func (s *MemoryStore) GetByPrefix(_ context.Context, prefix string) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0)
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	docs := make([]json.RawMessage, len(keys))
	for i, k := range keys {
		docs[i] = json.RawMessage(s.entries[k].value)
	}
	return docs, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

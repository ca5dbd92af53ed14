// Package memory provides an in-memory key-value store useful for local
// development and tests.
package memory

import (
	"context"
	"sync"
)

// KV is a mutex-guarded map satisfying the cart storage port.
type KV struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewKV constructs an empty in-memory store.
func NewKV() *KV {
	return &KV{entries: make(map[string]string)}
}

// Get returns the value for a key, reporting absence via the boolean.
func (s *KV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	return value, ok, nil
}

// Set stores or overwrites the value for a key.
func (s *KV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

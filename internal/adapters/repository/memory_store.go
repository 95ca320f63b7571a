package repository

import (
	"context"
	"sync"

	"github.com/comitanigiacomo/kanso-habit-board/internal/core/domain"
)

var _ domain.Storage = (*MemoryStore)(nil)

// MemoryStore keeps values for the lifetime of the process only.
type MemoryStore struct {
	key   string
	store map[string][]byte

	mu sync.RWMutex
}

func NewMemoryStore(key string) *MemoryStore {
	return &MemoryStore{
		key:   key,
		store: make(map[string][]byte),
	}
}

func (r *MemoryStore) Read(ctx context.Context) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.store[r.key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (r *MemoryStore) Write(ctx context.Context, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[r.key] = append([]byte(nil), data...)
	return nil
}

package repofake

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/storage"
)

var (
	_ storage.Store  = (*MemoryStore)(nil)
	_ storage.Popper = (*MemoryStore)(nil)
)

// MemoryStore is an in-process Store. It backs STORAGE=memory and the one-shot navigation flash.
type MemoryStore struct {
	values map[string][]byte
	lock   sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
	}
}

func (ms *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()

	value, ok := ms.values[key]
	if !ok {
		return nil, apperrors.ErrStorageMiss
	}
	return append([]byte(nil), value...), nil
}

func (ms *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	ms.values[key] = append([]byte(nil), value...)
	return nil
}

func (ms *MemoryStore) Delete(_ context.Context, key string) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	delete(ms.values, key)
	return nil
}

// Pop returns and removes the value for key in one step.
func (ms *MemoryStore) Pop(_ context.Context, key string) ([]byte, error) {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	value, ok := ms.values[key]
	if !ok {
		return nil, apperrors.ErrStorageMiss
	}
	delete(ms.values, key)
	return value, nil
}

// Len is the number of stored keys.
func (ms *MemoryStore) Len() int {
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	return len(ms.values)
}

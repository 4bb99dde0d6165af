// Package storage is the durable per-browser key/value state the storefront relies on: the session
// token and the in-progress checkout context both live here so they survive page reloads.
package storage

import (
	"context"
	"encoding/json"

	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/pkg/errors"
)

// Store defines durable key/value operations.
type Store interface {
	// Get returns the stored value, or ErrStorageMiss when the key is absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set creates or replaces the value for key
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

// Popper is implemented by stores that can read and delete a key atomically.
type Popper interface {
	Pop(ctx context.Context, key string) ([]byte, error)
}

// Pop reads key and deletes it, so the value is observed at most once. Stores that are not a
// Popper fall back to Get then Delete.
func Pop(ctx context.Context, store Store, key string) ([]byte, error) {
	if p, ok := store.(Popper); ok {
		return p.Pop(ctx, key)
	}
	value, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := store.Delete(ctx, key); err != nil {
		return nil, errors.Wrapf(err, "[storage.Pop] delete %s", key)
	}
	return value, nil
}

// Namespace scopes every key of store under prefix, typically one browser session.
func Namespace(store Store, prefix string) Store {
	return namespaced{store: store, prefix: prefix + ":"}
}

type namespaced struct {
	store  Store
	prefix string
}

func (n namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.store.Get(ctx, n.prefix+key)
}

func (n namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.store.Set(ctx, n.prefix+key, value)
}

func (n namespaced) Delete(ctx context.Context, key string) error {
	return n.store.Delete(ctx, n.prefix+key)
}

func (n namespaced) Pop(ctx context.Context, key string) ([]byte, error) {
	return Pop(ctx, n.store, n.prefix+key)
}

// GetJSON decodes the value stored under key into out. It returns found=false, with no error,
// when the key is absent.
func GetJSON(ctx context.Context, store Store, key string, out any) (found bool, err error) {
	data, err := store.Get(ctx, key)
	if errors.Is(err, apperrors.ErrStorageMiss) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "[storage.GetJSON] get")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, errors.Wrapf(err, "[storage.GetJSON] decode %s", key)
	}
	return true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, store Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "[storage.SetJSON] encode %s", key)
	}
	return store.Set(ctx, key, data)
}

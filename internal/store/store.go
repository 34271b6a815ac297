package store

import (
	"context"
	"encoding/json"
)

// Store is the flat string-keyed blob store every fulfillment stage reads and
// writes. Values are JSON documents; the store itself enforces no schema.
// Update is the only mutation primitive stage services should use for
// read-modify-write sequences: engines guarantee it runs atomically per key.
type Store interface {
	// Get returns the raw blob for key. The boolean reports whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put overwrites the blob at key.
	Put(ctx context.Context, key string, value []byte) error

	// Update applies fn to the current blob (nil if absent) and stores the
	// result. fn returning an error aborts the write and leaves prior state.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys with the given prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Load reads and decodes the collection at key. An absent key or a malformed
// blob decodes to the zero value — reads are tolerant, never fatal.
func Load[T any](ctx context.Context, s Store, key string) (T, error) {
	var v T
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if !ok || len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		// Malformed blob reads as the empty collection.
		var zero T
		return zero, nil
	}
	return v, nil
}

// Save marshals v and overwrites the blob at key.
func Save[T any](ctx context.Context, s Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(ctx, key, raw)
}

// Mutate atomically applies fn to the decoded collection at key and writes
// the result back. The decode is tolerant like Load; fn receives the zero
// value when the key is absent or unreadable.
func Mutate[T any](ctx context.Context, s Store, key string, fn func(T) (T, error)) error {
	return s.Update(ctx, key, func(current []byte) ([]byte, error) {
		var v T
		if len(current) > 0 {
			if err := json.Unmarshal(current, &v); err != nil {
				var zero T
				v = zero
			}
		}
		next, err := fn(v)
		if err != nil {
			return nil, err
		}
		return json.Marshal(next)
	})
}

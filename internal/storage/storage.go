// Package storage defines the device-local key-value storage the item store
// persists into, plus a process-local implementation.
package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when a key has never been written or was deleted.
var ErrNotFound = errors.New("storage: key not found")

// KV is a durable key-value record store. Values are opaque bytes.
type KV interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put creates or replaces the value for key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists stored keys with the given prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// ValidateKey rejects keys that cannot be stored by every backend.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return errors.New("storage: empty key")
	case strings.ContainsAny(key, `/\`) || key == "." || key == "..":
		return errors.New("storage: key must not contain path separators")
	}
	return nil
}

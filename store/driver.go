package store

import (
	"context"
)

// Driver is an interface for the key-value store driver. The core treats
// persistence as an opaque durability layer: each collection round-trips
// independently, with no transactional coordination across keys.
type Driver interface {
	// Get returns the value for key, or nil when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns all keys with the given prefix in ascending order.
	List(ctx context.Context, prefix string) ([]string, error)

	Close() error
}

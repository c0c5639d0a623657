package store

import (
	"context"
	"errors"
)

var (
	ErrEmptyKey      = errors.New("storage key is required")
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrBadNamespace  = errors.New("storage namespace must be a single path element")
)

// KVStore is durable key-value persistence for client state such as the
// serialized cart snapshot and the session credential. Writes overwrite.
type KVStore interface {
	// Get returns the value stored under key and whether it exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key
	Set(ctx context.Context, key, value string) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	Close() error
}

// DefaultNamespace scopes keys when several clients share one backend.
const DefaultNamespace = "default"

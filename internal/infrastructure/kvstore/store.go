// Package kvstore defines the key-value persistence port used for view
// state records, together with an in-process implementation.  Redis and
// Postgres backed implementations live under infrastructure/database.
package kvstore

import (
	"context"

	apperrors "github.com/docsight/docsight/pkg/errors"
)

// ErrNotFound is returned by Get when the key has no record.
var ErrNotFound = apperrors.New(apperrors.ErrCodeNotFound, "kvstore: key not found")

// Store is a minimal durable key-value port.  Values are opaque bytes;
// callers own serialization.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key.  Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys returns all stored keys with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases backend resources.
	Close() error
}

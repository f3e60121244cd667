// Package store persists small named values. The booth keeps its whole
// gallery under a single key and overwrites it on every commit.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("store: key not found")

// KV is a string-keyed blob store with overwrite-whole-value semantics.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

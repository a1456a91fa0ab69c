// Package kv holds the durable key-value backends the stores persist their
// JSON collections to.
package kv

import "context"

// Store is a get/set-by-key JSON blob store. Load returns nil data and a nil
// error when the key was never saved.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

package metadata

import "context"

// Repository is a small key/value store for auth metadata (salt, verifier,
// cached session token) kept alongside the document cache.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

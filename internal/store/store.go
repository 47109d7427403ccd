// Package store provides the persistent key-value document store the
// rest of the application keeps its state in. Values are whole
// JSON documents read and written in one piece; there is no partial
// update protocol and no locking, so concurrent writers race with
// last-write-wins semantics.
package store

import "context"

// Document keys used by the application.
const (
	KeyUsers = "users"
	KeyUser  = "user"
)

// DocumentStore reads and writes JSON documents by key. Get returns
// nil with no error when the key is absent.
type DocumentStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

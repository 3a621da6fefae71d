// Package kv provides namespaced key-value storage with SQLite persistence
// and an in-memory variant for tests.
package kv

// Bucket is the interface for key-value storage operations. Values are
// serialized as JSON; Get decodes into the caller's destination type.
type Bucket interface {
	// Name returns the bucket name.
	Name() string

	// IsPersistent returns true if the bucket is backed by SQLite.
	IsPersistent() bool

	// Store saves a value with the given key, replacing any previous value.
	Store(key string, value any) error

	// Get retrieves a value by key into dest, which must be a pointer.
	// Returns false if the key doesn't exist.
	Get(key string, dest any) (bool, error)

	// Delete removes a key from the bucket.
	// Returns true if the key existed.
	Delete(key string) (bool, error)

	// Keys returns all keys in the bucket.
	Keys() ([]string, error)

	// Clear removes all keys from the bucket.
	Clear() error
}

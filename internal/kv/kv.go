// Package kv is the persisted key-value storage behind the local cart.
// Failures here are non-fatal to callers.
package kv

// Store persists opaque values under string keys across process restarts.
type Store interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, bool, error)
	Close() error
}

// Package store provides the durable key/value cache behind the task sync layer.
//
// Values are JSON encoded. Implementations report every failure as a *Error so
// callers can tell "no data" (found == false, err == nil) apart from
// "storage degraded" (err != nil) and decide how to absorb it.
package store

import (
	"encoding/json"
	"fmt"
)

// Store is string-keyed durable storage.
type Store interface {
	// Get decodes the value stored under key into v.
	// found is false when the key is absent.
	Get(key string, v any) (found bool, err error)

	// Set encodes v and stores it under key.
	Set(key string, v any) error

	// Durable reports whether values survive a process restart.
	Durable() bool

	// Close releases the underlying storage.
	Close() error
}

// Error is a storage failure: serialization, I/O or an unavailable backend.
type Error struct {
	Op  string // "get" or "set"
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Load is a typed wrapper around Store.Get.
func Load[T any](s Store, key string) (T, bool, error) {
	var v T
	found, err := s.Get(key, &v)
	if err != nil || !found {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

func encode(op, key string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &Error{Op: op, Key: key, Err: err}
	}
	return data, nil
}

func decode(op, key string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &Error{Op: op, Key: key, Err: err}
	}
	return nil
}

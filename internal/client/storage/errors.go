package storage

import "errors"

// Common client storage errors
var (
	// ErrEntryNotFound indicates that no cache entry exists for the key
	ErrEntryNotFound = errors.New("cache entry not found")

	// ErrSessionNotFound indicates that no session has been persisted
	ErrSessionNotFound = errors.New("session not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)

package storage

import (
	"context"
	"time"
)

//go:generate moq -out cache_mock.go . CacheStorage

// CacheStorage хранит сырые ответы бэкенда вместе с моментом записи.
// Свежесть записи решает слой cache, хранилище про TTL ничего не знает.
type CacheStorage interface {
	// GetEntry returns ErrEntryNotFound if the key was never stored or was deleted
	GetEntry(ctx context.Context, key string) (*CacheEntry, error)

	// PutEntry overwrites any existing entry under the key
	PutEntry(ctx context.Context, key string, entry *CacheEntry) error

	// DeleteEntry is a no-op for missing keys
	DeleteEntry(ctx context.Context, key string) error

	// ClearEntries drops every cached entry and returns how many were removed
	ClearEntries(ctx context.Context) (int, error)
}

// CacheEntry - закешированный ответ
type CacheEntry struct {
	StoredAt time.Time `json:"stored_at"`
	Payload  []byte    `json:"payload"`
}

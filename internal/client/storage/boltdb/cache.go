package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/scholarkeeper/internal/client/storage"
)

// GetEntry retrieves a cached response by key
func (s *Storage) GetEntry(ctx context.Context, key string) (*storage.CacheEntry, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var entry *storage.CacheEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return fmt.Errorf("cache bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrEntryNotFound
		}

		// data живет только внутри транзакции, Unmarshal копирует
		entry = &storage.CacheEntry{}
		if err := json.Unmarshal(data, entry); err != nil {
			return fmt.Errorf("failed to unmarshal cache entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// PutEntry stores a response under the key, replacing the previous one
func (s *Storage) PutEntry(ctx context.Context, key string, entry *storage.CacheEntry) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return fmt.Errorf("cache bucket not found")
		}

		if err := bucket.Put([]byte(key), data); err != nil {
			return fmt.Errorf("failed to save cache entry: %w", err)
		}
		return nil
	})
}

// DeleteEntry removes a cached response
func (s *Storage) DeleteEntry(ctx context.Context, key string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return fmt.Errorf("cache bucket not found")
		}

		if err := bucket.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete cache entry: %w", err)
		}
		return nil
	})
}

// ClearEntries drops the whole cache bucket and recreates it empty
func (s *Storage) ClearEntries(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var removed int
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return fmt.Errorf("cache bucket not found")
		}
		removed = bucket.Stats().KeyN

		if err := tx.DeleteBucket(bucketCache); err != nil {
			return fmt.Errorf("failed to drop cache bucket: %w", err)
		}
		if _, err := tx.CreateBucket(bucketCache); err != nil {
			return fmt.Errorf("failed to create cache bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

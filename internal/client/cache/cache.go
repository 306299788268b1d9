// Package cache keeps backend responses on the client for a limited time.
//
// Keys come in two shapes: "query_<folded query>" for search results and
// "scholar_<canonical id>" for profiles. Each shape has its own TTL. Any
// other key is never stored.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/iudanet/scholarkeeper/internal/client/storage"
	"github.com/iudanet/scholarkeeper/internal/models"
)

const (
	// SearchTTL - время жизни результатов поиска
	SearchTTL = 10 * time.Minute
	// ProfileTTL - время жизни профиля ученого
	ProfileTTL = 20 * time.Minute

	searchPrefix  = "query_"
	profilePrefix = "scholar_"
)

// Cache is a TTL cache over CacheStorage. Storage failures are logged and
// reported as misses, never returned to the caller.
type Cache struct {
	store      storage.CacheStorage
	logger     *slog.Logger
	searchTTL  time.Duration
	profileTTL time.Duration
}

// Option настраивает Cache
type Option func(*Cache)

// WithTTL overrides the default lifetimes of search and profile entries.
func WithTTL(search, profile time.Duration) Option {
	return func(c *Cache) {
		c.searchTTL = search
		c.profileTTL = profile
	}
}

// New creates a cache backed by store.
func New(logger *slog.Logger, store storage.CacheStorage, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		logger:     logger,
		searchTTL:  SearchTTL,
		profileTTL: ProfileTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchKey builds the cache key for a search query.
func SearchKey(query string) string {
	return searchPrefix + foldQuery(query)
}

// ProfileKey builds the cache key for a scholar profile.
func ProfileKey(id string) string {
	return profilePrefix + models.CanonicalScholarID(id)
}

func foldQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// normalize приводит ключ к канонической форме и возвращает TTL его класса.
// ok=false для ключей неизвестного вида и для пустого хвоста.
func (c *Cache) normalize(key string) (string, time.Duration, bool) {
	switch {
	case strings.HasPrefix(key, searchPrefix):
		query := foldQuery(strings.TrimPrefix(key, searchPrefix))
		if query == "" {
			return "", 0, false
		}
		return searchPrefix + query, c.searchTTL, true
	case strings.HasPrefix(key, profilePrefix):
		id := models.CanonicalScholarID(strings.TrimPrefix(key, profilePrefix))
		if id == "" {
			return "", 0, false
		}
		return profilePrefix + id, c.profileTTL, true
	default:
		return "", 0, false
	}
}

// Get returns the payload stored under key if it is still fresh at now.
// An entry is fresh while now - storedAt <= ttl; stale entries are deleted.
func (c *Cache) Get(ctx context.Context, key string, now time.Time) ([]byte, bool) {
	normalized, ttl, ok := c.normalize(key)
	if !ok {
		return nil, false
	}

	entry, err := c.store.GetEntry(ctx, normalized)
	if err != nil {
		if !errors.Is(err, storage.ErrEntryNotFound) {
			c.logger.Warn("cache read failed", "key", normalized, "error", err)
		}
		return nil, false
	}

	if now.Sub(entry.StoredAt) > ttl {
		if err := c.store.DeleteEntry(ctx, normalized); err != nil {
			c.logger.Warn("failed to evict stale cache entry", "key", normalized, "error", err)
		}
		return nil, false
	}

	return entry.Payload, true
}

// Put stores payload under key, overwriting whatever was there.
func (c *Cache) Put(ctx context.Context, key string, payload []byte, now time.Time) {
	normalized, _, ok := c.normalize(key)
	if !ok {
		c.logger.Debug("not caching key of unknown shape", "key", key)
		return
	}

	entry := &storage.CacheEntry{StoredAt: now, Payload: payload}
	if err := c.store.PutEntry(ctx, normalized, entry); err != nil {
		c.logger.Warn("cache write failed", "key", normalized, "error", err)
	}
}

// Clear drops every entry. Unlike Get and Put it reports storage errors,
// since it is only called on explicit user request.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	return c.store.ClearEntries(ctx)
}

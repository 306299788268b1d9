// Package scholars serves scholar lookups from the local TTL cache and
// falls back to the backend on a miss.
package scholars

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/scholarkeeper/internal/client/cache"
	"github.com/iudanet/scholarkeeper/internal/models"
)

//go:generate moq -out backend_mock_test.go . Backend

// Backend is the part of the API client used for lookups
type Backend interface {
	Search(ctx context.Context, query string) ([]models.Scholar, error)
	Profile(ctx context.Context, id string) (*models.Profile, error)
}

// Service - поиск и профили ученых с кешированием
type Service struct {
	backend Backend
	cache   *cache.Cache
	logger  *slog.Logger
	now     func() time.Time
	group   singleflight.Group
}

// NewService creates a lookup service
func NewService(logger *slog.Logger, backend Backend, c *cache.Cache) *Service {
	return &Service{
		backend: backend,
		cache:   c,
		logger:  logger,
		now:     time.Now,
	}
}

// Result wraps a lookup result with where it came from
type Result[T any] struct {
	Value  T
	Cached bool
}

// Search returns scholars matching query
func (s *Service) Search(ctx context.Context, query string) (Result[[]models.Scholar], error) {
	var out Result[[]models.Scholar]

	payload, cached, err := s.lookup(ctx, cache.SearchKey(query), func(ctx context.Context) (any, error) {
		results, err := s.backend.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		if results == nil {
			results = []models.Scholar{}
		}
		return results, nil
	})
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(payload, &out.Value); err != nil {
		return out, fmt.Errorf("failed to decode search results: %w", err)
	}
	out.Cached = cached
	return out, nil
}

// Profile returns the profile of a scholar
func (s *Service) Profile(ctx context.Context, id string) (Result[*models.Profile], error) {
	var out Result[*models.Profile]

	payload, cached, err := s.lookup(ctx, cache.ProfileKey(id), func(ctx context.Context) (any, error) {
		return s.backend.Profile(ctx, id)
	})
	if err != nil {
		return out, err
	}

	out.Value = &models.Profile{}
	if err := json.Unmarshal(payload, out.Value); err != nil {
		return out, fmt.Errorf("failed to decode profile: %w", err)
	}
	out.Cached = cached
	return out, nil
}

// fetchTimeout ограничивает flight, который больше никто не ждет
const fetchTimeout = 30 * time.Second

type flightResult struct {
	payload []byte
	cached  bool
}

// lookup проверяет кеш, а при промахе выполняет fetch один раз на ключ
// для всех одновременных вызовов. Flight не зависит от отмены ctx
// отдельного вызова: ушедший вызов не прерывает остальных, а успешный
// ответ попадает в кеш. Ошибки не кешируются.
func (s *Service) lookup(ctx context.Context, key string, fetch func(context.Context) (any, error)) ([]byte, bool, error) {
	if payload, ok := s.cache.Get(ctx, key, s.now()); ok {
		s.logger.Debug("cache hit", "key", key)
		return payload, true, nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		// предыдущий flight мог завершиться между промахом и DoChan
		if payload, ok := s.cache.Get(flightCtx, key, s.now()); ok {
			return flightResult{payload: payload, cached: true}, nil
		}

		value, err := fetch(flightCtx)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode response: %w", err)
		}
		s.cache.Put(flightCtx, key, payload, s.now())
		return flightResult{payload: payload}, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		if res.Shared {
			s.logger.Debug("lookup shared with concurrent caller", "key", key)
		}
		out := res.Val.(flightResult)
		return out.payload, out.cached, nil
	}
}

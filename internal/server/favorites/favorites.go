// Package favorites implements the per-account set of bookmarked scholars.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/iudanet/scholarkeeper/internal/models"
	"github.com/iudanet/scholarkeeper/internal/server/metrics"
	"github.com/iudanet/scholarkeeper/internal/server/storage"
	"github.com/iudanet/scholarkeeper/internal/validation"
)

// MaxNameLength - максимальная длина снимка имени (в рунах)
const MaxNameLength = 256

var (
	// ErrUnknownAccount is returned when the identity does not resolve to an account
	ErrUnknownAccount = errors.New("unknown account")

	// ErrInvalidFavorite is returned for a missing or malformed scholar id or name
	ErrInvalidFavorite = errors.New("invalid favorite")
)

// Service manages favorites of authenticated accounts
type Service struct {
	users     storage.UserStorage
	favorites storage.FavoriteStorage
	logger    *slog.Logger
	policy    *bluemonday.Policy
	now       func() time.Time
}

// NewService создает новый сервис избранного
func NewService(logger *slog.Logger, users storage.UserStorage, favorites storage.FavoriteStorage) *Service {
	return &Service{
		users:     users,
		favorites: favorites,
		logger:    logger,
		policy:    bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// Add registers scholarID as a favorite of the identity.
// An existing (account, scholar) pair is returned as is with created=false;
// callers must not expect a fresh record id on every call.
func (s *Service) Add(ctx context.Context, identity models.Identity, scholarID, displayName string) (*models.Favorite, bool, error) {
	if err := s.resolve(ctx, identity); err != nil {
		return nil, false, err
	}

	scholarID = models.CanonicalScholarID(scholarID)
	if err := validation.ValidateScholarID(scholarID); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidFavorite, err)
	}

	name := s.sanitizeName(displayName)
	if name == "" {
		return nil, false, fmt.Errorf("%w: scholar name cannot be empty", ErrInvalidFavorite)
	}

	fav := &models.Favorite{
		ID:          uuid.New().String(),
		AccountID:   identity.AccountID,
		ScholarID:   scholarID,
		ScholarName: name,
		CreatedAt:   s.now(),
	}

	stored, created, err := s.favorites.AddFavorite(ctx, fav)
	if err != nil {
		// Аккаунт мог быть удален между resolve и вставкой
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, false, ErrUnknownAccount
		}
		return nil, false, fmt.Errorf("failed to add favorite: %w", err)
	}

	if created {
		metrics.RecordFavorite("created")
		s.logger.InfoContext(ctx, "favorite added",
			slog.String("account_id", identity.AccountID),
			slog.String("scholar_id", scholarID))
	} else {
		metrics.RecordFavorite("existing")
		s.logger.DebugContext(ctx, "favorite already exists",
			slog.String("account_id", identity.AccountID),
			slog.String("scholar_id", scholarID))
	}

	return stored, created, nil
}

// List returns all favorites of the identity, oldest first.
func (s *Service) List(ctx context.Context, identity models.Identity) ([]*models.Favorite, error) {
	if err := s.resolve(ctx, identity); err != nil {
		return nil, err
	}

	favs, err := s.favorites.ListFavorites(ctx, identity.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	return favs, nil
}

func (s *Service) resolve(ctx context.Context, identity models.Identity) error {
	if identity.AccountID == "" {
		return ErrUnknownAccount
	}

	if _, err := s.users.GetUserByID(ctx, identity.AccountID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUnknownAccount
		}
		return fmt.Errorf("failed to resolve account: %w", err)
	}

	return nil
}

// sanitizeName убирает разметку, а затем возвращает экранированные
// bluemonday сущности обратно в текст: имя хранится как текст, а не HTML
func (s *Service) sanitizeName(name string) string {
	name = html.UnescapeString(s.policy.Sanitize(name))
	name = strings.Join(strings.Fields(name), " ")

	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}

	return name
}

package storage

import (
	"context"

	"github.com/iudanet/scholarkeeper/internal/models"
)

//go:generate moq -out favorite_mock.go . FavoriteStorage

// FavoriteStorage defines interface for favorites persistence
type FavoriteStorage interface {
	// AddFavorite atomically inserts a favorite unless the pair
	// (AccountID, ScholarID) already exists.
	// Returns the stored row and true if it was inserted by this call,
	// or the existing row and false otherwise.
	AddFavorite(ctx context.Context, fav *models.Favorite) (*models.Favorite, bool, error)

	// GetFavorite retrieves favorite by account and scholar id
	// Returns ErrFavoriteNotFound if it doesn't exist
	GetFavorite(ctx context.Context, accountID, scholarID string) (*models.Favorite, error)

	// ListFavorites retrieves all favorites of an account ordered by creation time
	// Returns empty slice if no favorites found
	ListFavorites(ctx context.Context, accountID string) ([]*models.Favorite, error)
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/scholarkeeper/internal/models"
	"github.com/iudanet/scholarkeeper/internal/server/storage"
)

// AddFavorite inserts a favorite or returns the already stored one.
// Uniqueness of (account_id, scholar_id) is enforced by the UNIQUE constraint,
// so concurrent inserts for the same pair resolve to exactly one row.
func (s *Storage) AddFavorite(ctx context.Context, fav *models.Favorite) (*models.Favorite, bool, error) {
	query := `
		INSERT INTO favorites (id, account_id, scholar_id, scholar_name, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (account_id, scholar_id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		fav.ID,
		fav.AccountID,
		fav.ScholarID,
		fav.ScholarName,
		fav.CreatedAt.UTC(),
	)
	if err != nil {
		// Аккаунт отсутствует
		if isForeignKeyViolation(err) {
			return nil, false, storage.ErrUserNotFound
		}
		return nil, false, fmt.Errorf("failed to insert favorite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	stored, err := s.GetFavorite(ctx, fav.AccountID, fav.ScholarID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read stored favorite: %w", err)
	}

	return stored, rows == 1, nil
}

// GetFavorite retrieves favorite by account and scholar id
func (s *Storage) GetFavorite(ctx context.Context, accountID, scholarID string) (*models.Favorite, error) {
	query := `
		SELECT id, account_id, scholar_id, scholar_name, created_at
		FROM favorites
		WHERE account_id = ? AND scholar_id = ?
	`

	fav := &models.Favorite{}
	err := s.db.QueryRowContext(ctx, query, accountID, scholarID).Scan(
		&fav.ID,
		&fav.AccountID,
		&fav.ScholarID,
		&fav.ScholarName,
		&fav.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrFavoriteNotFound
		}
		return nil, fmt.Errorf("failed to get favorite: %w", err)
	}

	return fav, nil
}

// ListFavorites retrieves all favorites of an account
func (s *Storage) ListFavorites(ctx context.Context, accountID string) ([]*models.Favorite, error) {
	query := `
		SELECT id, account_id, scholar_id, scholar_name, created_at
		FROM favorites
		WHERE account_id = ?
		ORDER BY created_at ASC, rowid ASC
	`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	favorites := make([]*models.Favorite, 0)

	for rows.Next() {
		fav := &models.Favorite{}
		if err := rows.Scan(
			&fav.ID,
			&fav.AccountID,
			&fav.ScholarID,
			&fav.ScholarName,
			&fav.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, fav)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return favorites, nil
}

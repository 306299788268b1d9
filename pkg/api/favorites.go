package api

import "github.com/iudanet/scholarkeeper/internal/models"

// AddFavoriteRequest представляет запрос на добавление в избранное
type AddFavoriteRequest struct {
	ScholarID   string `json:"scholarId" validate:"required,max=128"`
	ScholarName string `json:"scholarName" validate:"required,max=512"`
}

// FavoriteResponse - запись избранного
type FavoriteResponse = models.Favorite

package api

import "github.com/iudanet/scholarkeeper/internal/models"

// SearchResponse представляет результаты поиска ученых
type SearchResponse struct {
	Results []models.Scholar `json:"results"`
}

// ProfileResponse - профиль ученого с последними работами
type ProfileResponse = models.Profile

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/scholarkeeper/internal/models"
	"github.com/iudanet/scholarkeeper/internal/server/favorites"
	"github.com/iudanet/scholarkeeper/pkg/api"
)

// FavoritesService defines favorites operations used by the HTTP layer
type FavoritesService interface {
	Add(ctx context.Context, identity models.Identity, scholarID, displayName string) (*models.Favorite, bool, error)
	List(ctx context.Context, identity models.Identity) ([]*models.Favorite, error)
}

// FavoritesHandler обрабатывает запросы к избранному
type FavoritesHandler struct {
	responder
	favorites FavoritesService
}

// NewFavoritesHandler создает новый handler избранного
func NewFavoritesHandler(logger *slog.Logger, favorites FavoritesService) *FavoritesHandler {
	return &FavoritesHandler{
		responder: responder{logger: logger},
		favorites: favorites,
	}
}

// List обрабатывает GET /favorites
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := IdentityFrom(ctx)
	if !ok {
		h.sendError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	favs, err := h.favorites.List(ctx, identity)
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	h.sendJSON(w, favs, http.StatusOK)
}

// Add обрабатывает POST /favorites
// 201 для новой записи, 200 при повторном добавлении той же пары
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := IdentityFrom(ctx)
	if !ok {
		h.sendError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req api.AddFavoriteRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	fav, created, err := h.favorites.Add(ctx, identity, req.ScholarID, req.ScholarName)
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.sendJSON(w, fav, status)
}

func (h *FavoritesHandler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, favorites.ErrUnknownAccount):
		h.sendError(w, "account not found", http.StatusNotFound)
	case errors.Is(err, favorites.ErrInvalidFavorite):
		h.sendError(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.ErrorContext(ctx, "favorites operation failed", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
	}
}

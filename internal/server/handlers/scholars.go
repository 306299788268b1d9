package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/scholarkeeper/internal/models"
	"github.com/iudanet/scholarkeeper/internal/server/scholars"
	"github.com/iudanet/scholarkeeper/internal/validation"
	"github.com/iudanet/scholarkeeper/pkg/api"
)

// ScholarProvider defines the upstream scholar lookups
type ScholarProvider interface {
	Search(ctx context.Context, query string) ([]models.Scholar, error)
	Profile(ctx context.Context, id string) (*models.Profile, error)
}

// ScholarsHandler проксирует поиск и профили ученых
type ScholarsHandler struct {
	responder
	provider ScholarProvider
}

// NewScholarsHandler создает новый handler поиска ученых
func NewScholarsHandler(logger *slog.Logger, provider ScholarProvider) *ScholarsHandler {
	return &ScholarsHandler{
		responder: responder{logger: logger},
		provider:  provider,
	}
}

// Search обрабатывает GET /api/scholars?query=
func (h *ScholarsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		h.sendError(w, "query is not provided", http.StatusBadRequest)
		return
	}

	results, err := h.provider.Search(r.Context(), query)
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	h.sendJSON(w, api.SearchResponse{Results: results}, http.StatusOK)
}

// Profile обрабатывает GET /api/scholars/{id}
func (h *ScholarsHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id := models.CanonicalScholarID(r.PathValue("id"))
	if id == "" {
		h.sendError(w, "scholar id is not provided", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateScholarID(id); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := h.provider.Profile(r.Context(), id)
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	h.sendJSON(w, profile, http.StatusOK)
}

func (h *ScholarsHandler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	// Клиент ушел, ответ никому не нужен
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		h.logger.DebugContext(ctx, "scholar lookup abandoned by client", slog.Any("error", err))
		return
	}
	if errors.Is(err, scholars.ErrUpstreamUnavailable) {
		h.sendError(w, "failed to get scholar data, please try again later", http.StatusBadGateway)
		return
	}
	h.logger.ErrorContext(ctx, "scholar lookup failed", slog.Any("error", err))
	h.sendError(w, "internal server error", http.StatusInternalServerError)
}

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/scholarkeeper/internal/models"
	"github.com/iudanet/scholarkeeper/internal/server/csrf"
	"github.com/iudanet/scholarkeeper/internal/server/session"
	"github.com/iudanet/scholarkeeper/pkg/api"
)

// SessionCookieName - имя HttpOnly cookie с session credential
const SessionCookieName = api.SessionCookie

//go:generate moq -out session_mock_test.go . SessionManager

// SessionManager defines the session lifecycle used by the HTTP layer
type SessionManager interface {
	Signup(ctx context.Context, userID, password string) error
	Login(ctx context.Context, userID, password string) (*session.Credential, error)
	Verify(ctx context.Context, token string) (models.Identity, error)
	Logout(ctx context.Context, token string)
	TTL() time.Duration
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	responder
	sessions     SessionManager
	csrf         *csrf.Issuer
	cookieSecure bool
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, sessions SessionManager, issuer *csrf.Issuer, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		responder:    responder{logger: logger},
		sessions:     sessions,
		csrf:         issuer,
		cookieSecure: cookieSecure,
	}
}

// CSRF обрабатывает GET /auth/csrf
// Выдает новый токен: эталонная копия в cookie, вторая копия в теле ответа
func (h *AuthHandler) CSRF(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrf.Mint()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to mint csrf token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.csrf.SetCookie(w, token)
	h.sendJSON(w, api.CSRFResponse{CSRFToken: token}, http.StatusOK)
}

// Signup обрабатывает POST /auth/signup
// Создает аккаунт, но не аутентифицирует
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CredentialsRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.sessions.Signup(ctx, req.UserID, req.Password); err != nil {
		switch {
		case errors.Is(err, session.ErrDuplicateAccount):
			h.sendError(w, "user id already taken", http.StatusBadRequest)
		case errors.Is(err, session.ErrInvalidAccount):
			h.sendError(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.ErrorContext(ctx, "failed to create account", slog.Any("error", err))
			h.sendError(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.sendJSON(w, api.SignupResponse{
		UserID:  req.UserID,
		Message: "account created",
	}, http.StatusOK)
}

// Login обрабатывает POST /auth/login
// Выпускает session credential в HttpOnly cookie и обновляет CSRF токен
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CredentialsRequest
	if err := decodeRequest(w, r, &req); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	cred, err := h.sessions.Login(ctx, req.UserID, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			h.logger.WarnContext(ctx, "login failed", slog.String("user_id", req.UserID))
			h.sendError(w, "invalid user id or password", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to log in", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, cred.Token)

	// Новая сессия - новый CSRF токен
	token, err := h.csrf.Mint()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to mint csrf token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.csrf.SetCookie(w, token)

	h.sendJSON(w, api.LoginResponse{
		UserID:    cred.Identity.UserID,
		ExpiresIn: int64(h.sessions.TTL().Seconds()),
		CSRFToken: token,
	}, http.StatusOK)
}

// Logout обрабатывает POST /auth/logout
// Идемпотентен: без активной сессии тоже отвечает 200
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		h.sessions.Logout(r.Context(), c.Value)
	}

	h.clearSessionCookie(w)
	h.csrf.Clear(w)

	h.sendJSON(w, api.MessageResponse{Message: "logged out"}, http.StatusOK)
}

// Me обрабатывает GET /auth/me
// Маршрут закрыт auth middleware, identity уже в контексте
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		h.sendError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	h.sendJSON(w, api.MeResponse{UserID: identity.UserID}, http.StatusOK)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

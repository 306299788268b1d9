package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/scholarkeeper/internal/models"
	"github.com/iudanet/scholarkeeper/internal/server/handlers"
	"github.com/iudanet/scholarkeeper/internal/server/session"
)

// SessionVerifier проверяет session credential
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (models.Identity, error)
}

// AuthMiddleware создает middleware для проверки session cookie
// Просроченный или поддельный credential означает "не аутентифицирован"
func AuthMiddleware(logger *slog.Logger, verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(handlers.SessionCookieName); err == nil {
				token = c.Value
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, session.ErrMissingCredential):
					handlers.WriteError(w, "not authenticated", http.StatusUnauthorized)
				case errors.Is(err, session.ErrExpiredCredential):
					logger.DebugContext(r.Context(), "expired session credential")
					handlers.WriteError(w, "session expired", http.StatusUnauthorized)
				case errors.Is(err, session.ErrInvalidCredential):
					logger.WarnContext(r.Context(), "invalid session credential",
						"remote_addr", r.RemoteAddr)
					handlers.WriteError(w, "invalid session", http.StatusUnauthorized)
				default:
					logger.ErrorContext(r.Context(), "failed to verify session", "error", err)
					handlers.WriteError(w, "internal server error", http.StatusInternalServerError)
				}
				return
			}

			logger.Debug("User authenticated", "user_id", identity.UserID)

			// Передаем запрос дальше с identity в контексте
			next.ServeHTTP(w, r.WithContext(handlers.WithIdentity(r.Context(), identity)))
		})
	}
}

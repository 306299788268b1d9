package middleware

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/scholarkeeper/internal/server/csrf"
	"github.com/iudanet/scholarkeeper/internal/server/handlers"
	"github.com/iudanet/scholarkeeper/internal/server/metrics"
)

// CSRFMiddleware проверяет double-submit токен на изменяющих запросах
// до любой работы обработчика и независимо от состояния сессии
func CSRFMiddleware(logger *slog.Logger, issuer *csrf.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			if err := issuer.Check(r); err != nil {
				metrics.CSRFRejectionsTotal.Inc()
				logger.WarnContext(r.Context(), "CSRF validation failed",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				handlers.WriteError(w, "csrf validation failed", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

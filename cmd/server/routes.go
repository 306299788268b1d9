package main

import (
	"log/slog"
	"net/http"

	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/scholarkeeper/internal/server/csrf"
	"github.com/iudanet/scholarkeeper/internal/server/handlers"
	"github.com/iudanet/scholarkeeper/internal/server/middleware"
)

// routerDeps - зависимости HTTP слоя
type routerDeps struct {
	logger      *slog.Logger
	sessions    handlers.SessionManager
	favorites   handlers.FavoritesService
	scholars    handlers.ScholarProvider
	db          handlers.Pinger
	csrf        *csrf.Issuer
	authLimiter *middleware.RateLimiter
	version     string
	secure      bool
}

// newRouter собирает маршруты и цепочки middleware
func newRouter(d routerDeps) http.Handler {
	authHandler := handlers.NewAuthHandler(d.logger, d.sessions, d.csrf, d.secure)
	favoritesHandler := handlers.NewFavoritesHandler(d.logger, d.favorites)
	scholarsHandler := handlers.NewScholarsHandler(d.logger, d.scholars)
	healthHandler := handlers.NewHealthHandler(d.logger, d.db, d.version)

	requireCSRF := middleware.CSRFMiddleware(d.logger, d.csrf)
	requireSession := middleware.AuthMiddleware(d.logger, d.sessions)
	limitAuth := d.authLimiter.Middleware

	mux := http.NewServeMux()

	// Метки метрик берутся из шаблона маршрута
	handle := func(pattern string, h http.HandlerFunc, mws ...alice.Constructor) {
		chain := alice.New(middleware.MetricsMiddleware(pattern)).Append(mws...)
		mux.Handle(pattern, chain.ThenFunc(h))
	}

	// CSRF проверяется раньше сессии: подделанный запрос отклоняется
	// независимо от того, валидна ли сессия
	handle("GET /auth/csrf", authHandler.CSRF)
	handle("POST /auth/signup", authHandler.Signup, limitAuth, requireCSRF)
	handle("POST /auth/login", authHandler.Login, limitAuth, requireCSRF)
	handle("POST /auth/logout", authHandler.Logout, requireCSRF)
	handle("GET /auth/me", authHandler.Me, requireSession)

	handle("GET /favorites", favoritesHandler.List, requireSession)
	handle("POST /favorites", favoritesHandler.Add, requireCSRF, requireSession)

	handle("GET /api/scholars", scholarsHandler.Search)
	handle("GET /api/scholars/{id}", scholarsHandler.Profile)

	handle("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	return alice.New(
		middleware.RecoveryMiddleware(d.logger),
		middleware.LoggingMiddleware(d.logger, middleware.WithSkipPaths("/health", "/metrics")),
		middleware.SecurityHeaders,
	).Then(mux)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/scholarkeeper/internal/config"
	"github.com/iudanet/scholarkeeper/internal/server/csrf"
	"github.com/iudanet/scholarkeeper/internal/server/favorites"
	"github.com/iudanet/scholarkeeper/internal/server/jwt"
	"github.com/iudanet/scholarkeeper/internal/server/middleware"
	"github.com/iudanet/scholarkeeper/internal/server/scholars"
	"github.com/iudanet/scholarkeeper/internal/server/session"
	"github.com/iudanet/scholarkeeper/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && (args[0] == "-version" || args[0] == "--version") {
		printVersion()
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(ctx, args)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	store, err := sqlite.New(ctx, cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	tokens := jwt.NewService([]byte(cfg.Session.Secret), cfg.Session.TTL)
	sessions := session.NewManager(logger, store, tokens,
		session.WithRevocationList(session.NewRevocationList(cfg.Session.TTL, cfg.Session.RevocationCapacity)),
	)

	proxies, err := cfg.Server.TrustedProxyPrefixes()
	if err != nil {
		return fmt.Errorf("failed to parse trusted proxies: %w", err)
	}
	authLimiter := middleware.NewRateLimiter(cfg.Server.AuthRateLimit, time.Minute, cfg.Server.AuthRateBurst, logger,
		middleware.WithTrustedProxies(proxies...))
	defer authLimiter.Stop()

	router := newRouter(routerDeps{
		logger:      logger,
		sessions:    sessions,
		favorites:   favorites.NewService(logger, store, store),
		scholars:    scholars.NewClient(logger, cfg.Upstream.BaseURL, cfg.Upstream.Timeout),
		db:          store,
		csrf:        csrf.NewIssuer(cfg.Session.CookieSecure),
		authLimiter: authLimiter,
		version:     Version,
		secure:      cfg.Session.CookieSecure,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Upstream.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.InfoContext(ctx, "starting scholarkeeper server",
		slog.String("addr", cfg.Server.Addr),
		slog.String("version", Version))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("server exited properly")
	return nil
}

func printVersion() {
	fmt.Printf("ScholarKeeper Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	clientapi "github.com/iudanet/scholarkeeper/internal/client/api"
	"github.com/iudanet/scholarkeeper/internal/client/iocli"
	"github.com/iudanet/scholarkeeper/internal/client/scholars"
	"github.com/iudanet/scholarkeeper/internal/client/storage"
	"github.com/iudanet/scholarkeeper/internal/models"
	"github.com/iudanet/scholarkeeper/pkg/api"
)

// PasswordEnv - переменная окружения с паролем для неинтерактивного запуска
const PasswordEnv = "SCHOLARKEEPER_PASSWORD"

//go:generate moq -out backend_mock_test.go . Backend Lookup

// Backend is the subset of the API client the commands use
type Backend interface {
	Signup(ctx context.Context, req api.CredentialsRequest) (*api.SignupResponse, error)
	Login(ctx context.Context, req api.CredentialsRequest) (*api.LoginResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*api.MeResponse, error)
	Favorites(ctx context.Context) ([]models.Favorite, error)
	AddFavorite(ctx context.Context, req api.AddFavoriteRequest) (*models.Favorite, bool, error)
	Session() (sessionToken, csrfToken string)
	Restore(sessionToken, csrfToken string)
	BaseURL() string
}

// Lookup - поиск ученых через локальный кеш
type Lookup interface {
	Search(ctx context.Context, query string) (scholars.Result[[]models.Scholar], error)
	Profile(ctx context.Context, id string) (scholars.Result[*models.Profile], error)
}

// CacheCleaner очищает локальный кеш
type CacheCleaner interface {
	Clear(ctx context.Context) (int, error)
}

// Cli runs user commands against the backend
type Cli struct {
	io           iocli.IO
	backend      Backend
	lookup       Lookup
	cache        CacheCleaner
	sessions     storage.SessionStorage
	logger       *slog.Logger
	now          func() time.Time
	session      *storage.SessionData
	passwordFile string
}

// Option настраивает Cli
type Option func(*Cli)

// WithPasswordFile reads passwords from a file instead of prompting
func WithPasswordFile(path string) Option {
	return func(c *Cli) {
		c.passwordFile = path
	}
}

// WithIO replaces the terminal IO
func WithIO(rw iocli.IO) Option {
	return func(c *Cli) {
		c.io = rw
	}
}

func New(logger *slog.Logger, backend Backend, lookup Lookup, cache CacheCleaner, sessions storage.SessionStorage, opts ...Option) *Cli {
	c := &Cli{
		io:       iocli.NewStdio(),
		backend:  backend,
		lookup:   lookup,
		cache:    cache,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadSession restores the persisted session cookies into the backend
// client. A session saved for another server or already expired is dropped.
func (c *Cli) LoadSession(ctx context.Context) error {
	session, err := c.sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	if session.ServerURL != c.backend.BaseURL() || session.Expired(c.now()) {
		c.logger.Debug("dropping stale local session", "server", session.ServerURL, "expires_at", session.ExpiresAt)
		c.forgetSession(ctx)
		return nil
	}

	c.backend.Restore(session.SessionToken, session.CSRFToken)
	c.session = session
	return nil
}

// forgetSession удаляет локальную сессию; ошибки только логируются
func (c *Cli) forgetSession(ctx context.Context) {
	c.session = nil
	if err := c.sessions.DeleteSession(ctx); err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		c.logger.Warn("failed to delete local session", "error", err)
	}
}

// requireSession возвращает ошибку с подсказкой, если пользователь не вошел
func (c *Cli) requireSession() error {
	if c.session == nil {
		return errors.New("not authenticated. Please run 'scholarkeeper login' first")
	}
	return nil
}

// handleAuthError превращает 401 в подсказку и забывает протухшую сессию
func (c *Cli) handleAuthError(ctx context.Context, err error) error {
	if errors.Is(err, clientapi.ErrUnauthorized) {
		c.forgetSession(ctx)
		return errors.New("session expired or revoked. Please run 'scholarkeeper login' again")
	}
	return err
}

// getPassword retrieves a password from various sources with priority:
// 1. Environment variable SCHOLARKEEPER_PASSWORD
// 2. File given by -password-file
// 3. Interactive prompt (fallback)
func (c *Cli) getPassword(prompt string) (string, error) {
	if envPassword := os.Getenv(PasswordEnv); envPassword != "" {
		return envPassword, nil
	}

	if c.passwordFile != "" {
		content, err := os.ReadFile(c.passwordFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	return password, nil
}

// interactive сообщает, нужно ли подтверждать пароль повторным вводом
func (c *Cli) interactive() bool {
	return os.Getenv(PasswordEnv) == "" && c.passwordFile == ""
}

// userID берет user id из аргументов или спрашивает его
func (c *Cli) userID(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	userID, err := c.io.ReadInput("User ID: ")
	if err != nil {
		return "", fmt.Errorf("failed to read user id: %w", err)
	}
	if userID == "" {
		return "", fmt.Errorf("user id cannot be empty")
	}
	return userID, nil
}

func PrintUsage(w io.Writer) {
	fmt.Fprint(w, `ScholarKeeper Client

Usage:
  scholarkeeper [OPTIONS] COMMAND [ARGS]

Options:
  -version               Show version information
  -server URL            Server URL (default: http://localhost:8080)
  -db PATH               Path to local database (default: scholarkeeper-client.db)
  -password-file PATH    Path to file containing the password
  -debug                 Verbose logging to stderr

Password Priority (highest to lowest):
  1. SCHOLARKEEPER_PASSWORD environment variable
  2. -password-file (file path)
  3. Interactive prompt (fallback)

Commands:
  signup [user-id]                 Create an account
  login [user-id]                  Log in and store the session locally
  logout                           End the session
  whoami                           Show the authenticated user
  search <query>                   Search scholars by name (cached 10 min)
  show <scholar-id>                Show a scholar profile (cached 20 min)
  favorites                        List favorite scholars
  favorite <scholar-id> <name>     Add a scholar to favorites
  cache clear                      Drop the local lookup cache

Examples:
  scholarkeeper signup alice
  scholarkeeper login alice
  scholarkeeper search "geoffrey hinton"
  scholarkeeper show A5023888391
  scholarkeeper favorite A5023888391 "Geoffrey Hinton"
  scholarkeeper --server https://example.com login alice
`)
}

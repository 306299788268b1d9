// Package session implements the session lifecycle: account signup,
// login, credential verification and logout.
//
// Credentials are self-contained signed tokens, so verification needs no
// session table. Logout additionally puts the credential id on a
// process-local revocation list.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/scholarkeeper/internal/crypto"
	"github.com/iudanet/scholarkeeper/internal/models"
	"github.com/iudanet/scholarkeeper/internal/server/jwt"
	"github.com/iudanet/scholarkeeper/internal/server/metrics"
	"github.com/iudanet/scholarkeeper/internal/server/storage"
	"github.com/iudanet/scholarkeeper/internal/validation"
)

// Credential is a minted session credential handed to the transport layer.
type Credential struct {
	ExpiresAt time.Time
	Token     string
	Identity  models.Identity
}

// Manager issues, verifies and revokes session credentials
type Manager struct {
	users   storage.UserStorage
	tokens  *jwt.Service
	revoked *RevocationList
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithRevocationList sets the revocation list consulted by Verify.
func WithRevocationList(r *RevocationList) Option {
	return func(m *Manager) {
		m.revoked = r
	}
}

// NewManager создает новый менеджер сессий
func NewManager(logger *slog.Logger, users storage.UserStorage, tokens *jwt.Service, opts ...Option) *Manager {
	m := &Manager{
		users:  users,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.revoked == nil {
		m.revoked = NewRevocationList(tokens.TTL(), 0)
	}

	return m
}

// TTL returns the validity window of minted credentials.
func (m *Manager) TTL() time.Duration {
	return m.tokens.TTL()
}

// Signup создает аккаунт. Не аутентифицирует пользователя.
func (m *Manager) Signup(ctx context.Context, userID, password string) error {
	if err := validation.ValidateUsername(userID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     userID,
		PasswordHash: hash,
		CreatedAt:    m.now(),
	}

	if err := m.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			metrics.RecordAuth("signup", "duplicate")
			return ErrDuplicateAccount
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	metrics.RecordAuth("signup", "success")
	m.logger.InfoContext(ctx, "account created",
		slog.String("user_id", userID),
		slog.String("account_id", user.ID))

	return nil
}

// Login проверяет пароль и выпускает новую подписанную сессию
func (m *Manager) Login(ctx context.Context, userID, password string) (*Credential, error) {
	user, err := m.users.GetUserByUsername(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Выравниваем время ответа с веткой неверного пароля
			crypto.CompareDummy(password)
			metrics.RecordAuth("login", "failure")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := crypto.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			metrics.RecordAuth("login", "failure")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	now := m.now()
	token, claims, err := m.tokens.Issue(user.ID, user.Username, now)
	if err != nil {
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}

	if err := m.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// Не критичная ошибка, логируем но не прерываем
		m.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	metrics.RecordAuth("login", "success")
	m.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.Username),
		slog.String("account_id", user.ID))

	return &Credential{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Identity: models.Identity{
			AccountID: user.ID,
			UserID:    user.Username,
		},
	}, nil
}

// Verify проверяет credential и возвращает связанную с ним Identity.
// Чистое чтение: состояние сессии не меняется.
func (m *Manager) Verify(ctx context.Context, token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, ErrMissingCredential
	}

	claims, err := m.tokens.Parse(token, m.now())
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return models.Identity{}, ErrExpiredCredential
		}
		m.logger.DebugContext(ctx, "credential rejected", slog.Any("error", err))
		return models.Identity{}, ErrInvalidCredential
	}

	if m.revoked.IsRevoked(claims.ID) {
		return models.Identity{}, fmt.Errorf("%w: revoked", ErrInvalidCredential)
	}

	return models.Identity{
		AccountID: claims.AccountID(),
		UserID:    claims.UserID,
	}, nil
}

// Logout отзывает credential. Идемпотентна: отсутствующий или уже
// недействительный credential ошибкой не является.
func (m *Manager) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}

	claims, err := m.tokens.Parse(token, m.now())
	if err != nil {
		return
	}

	m.revoked.Revoke(claims.ID, m.now())
	metrics.RecordAuth("logout", "success")
	m.logger.InfoContext(ctx, "user logged out", slog.String("user_id", claims.UserID))
}

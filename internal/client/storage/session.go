package storage

import (
	"context"
	"time"
)

//go:generate moq -out session_mock.go . SessionStorage

// SessionStorage persists the browser-like session state of the CLI
// between invocations.
type SessionStorage interface {
	// SaveSession replaces the stored session
	SaveSession(ctx context.Context, session *SessionData) error

	// GetSession returns ErrSessionNotFound if nobody is logged in
	GetSession(ctx context.Context) (*SessionData, error)

	// DeleteSession removes the stored session (logout)
	DeleteSession(ctx context.Context) error
}

// SessionData - состояние сессии, сохраняемое на клиенте.
// SessionToken и CSRFToken это значения cookie session и csrf_token.
type SessionData struct {
	ExpiresAt    time.Time `json:"expires_at"`
	ServerURL    string    `json:"server_url"`
	UserID       string    `json:"user_id"`
	SessionToken string    `json:"session_token"`
	CSRFToken    string    `json:"csrf_token"`
}

// Expired reports whether the session cookie would already have been
// dropped by the server at the given moment.
func (s *SessionData) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

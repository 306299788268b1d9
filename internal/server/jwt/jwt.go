package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is the value of the "iss" claim of every session credential.
const Issuer = "scholarkeeper"

var (
	// ErrMalformed is returned for tokens that fail signature or format checks
	ErrMalformed = errors.New("malformed or tampered token")

	// ErrExpired is returned for well-formed tokens past their expiry
	ErrExpired = errors.New("token expired")
)

// Claims represents session credential claims
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// AccountID returns the account bound to the credential.
func (c *Claims) AccountID() string {
	return c.Subject
}

// Service provides session credential generation and validation
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a new JWT service
// secret should be a cryptographically secure random string
func NewService(secret []byte, ttl time.Duration) *Service {
	return &Service{
		secret: secret,
		ttl:    ttl,
	}
}

// TTL returns the validity window of issued tokens.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue creates a signed token binding accountID and userID, issued at now.
// The token stays valid for every instant in [now, now+ttl).
// Returns the token, its claims and an error.
func (s *Service) Issue(accountID, userID string, now time.Time) (string, *Claims, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   accountID,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilPrecision(now.Add(s.ttl))),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, claims, nil
}

// Parse validates signature, issuer and expiry of tokenString against now.
// Returns ErrExpired for expired tokens and ErrMalformed for everything else.
func (s *Service) Parse(tokenString string, now time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			// Проверяем что используется правильный алгоритм подписи
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if !token.Valid || claims.Subject == "" || claims.UserID == "" {
		return nil, ErrMalformed
	}

	return claims, nil
}

// ceilPrecision округляет t вверх до точности NumericDate (секунды),
// иначе токен, выпущенный в hh:mm:ss.9, истекал бы раньше now+ttl
func ceilPrecision(t time.Time) time.Time {
	truncated := t.Truncate(jwt.TimePrecision)
	if truncated.Before(t) {
		return truncated.Add(jwt.TimePrecision)
	}
	return truncated
}

package handlers

import (
	"context"

	"github.com/iudanet/scholarkeeper/internal/models"
)

// contextKey тип для ключей контекста
type contextKey string

// identityKey ключ для хранения Identity в контексте
const identityKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom извлекает Identity из контекста запроса
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	if !ok || identity.IsZero() {
		return models.Identity{}, false
	}
	return identity, true
}

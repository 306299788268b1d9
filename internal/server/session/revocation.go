package session

import (
	"time"

	"github.com/maypok86/otter/v2"
)

// RevocationList remembers credential ids invalidated by logout.
// Entries expire after the credential TTL, when the credential
// would stop verifying anyway.
type RevocationList struct {
	cache *otter.Cache[string, time.Time]
}

// NewRevocationList creates a revocation list. With maxSize <= 0 ids leave
// the list only by expiry, so a revoked credential never verifies again.
// A positive maxSize bounds memory: once full, otter may evict or reject
// an id and its credential verifies until exp.
func NewRevocationList(ttl time.Duration, maxSize int) *RevocationList {
	cache := otter.Must(&otter.Options[string, time.Time]{
		MaximumSize:      max(maxSize, 0),
		ExpiryCalculator: otter.ExpiryCreating[string, time.Time](ttl),
	})

	return &RevocationList{cache: cache}
}

// Revoke marks the credential id as revoked.
func (r *RevocationList) Revoke(id string, at time.Time) {
	if id == "" {
		return
	}
	r.cache.Set(id, at)
}

// IsRevoked reports whether the credential id was revoked.
func (r *RevocationList) IsRevoked(id string) bool {
	_, ok := r.cache.GetEntry(id)
	return ok
}

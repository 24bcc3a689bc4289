package auth

import (
	"context"
	"time"

	"github.com/autodoc-au/autodoc/pkg/cache"
)

// Revoker tracks tokens that were logged out before their natural expiry.
// Entries only need to live as long as the token would have.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevoker keeps revoked token ids in the process-local TTL cache. It
// is the default when no Redis is configured; revocations then only bind the
// single process, which matches the single-store deployment.
type MemoryRevoker struct {
	cache *cache.Cache
}

// NewMemoryRevoker creates an in-memory revoker
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{cache: cache.New()}
}

// Revoke marks a token id as revoked until the given time
func (m *MemoryRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil // already expired, nothing to revoke
	}
	m.cache.Set(revocationKey(tokenID), true, ttl)
	return nil
}

// IsRevoked reports whether a token id has been revoked
func (m *MemoryRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, revoked := m.cache.Get(revocationKey(tokenID))
	return revoked, nil
}

func revocationKey(tokenID string) string {
	return "revoked:" + tokenID
}

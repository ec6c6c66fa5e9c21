package cache

import (
	"context"
	"time"

	"github.com/agrishield/identity/domain"
	"github.com/jellydator/ttlcache/v3"
)

// MemoryClaimsCache implements ClaimsCache with ttlcache. Suitable for
// single-instance deployments; entries evict themselves when the token
// they describe expires.
type MemoryClaimsCache struct {
	cache *ttlcache.Cache[string, *domain.IdentityClaims]
}

// NewMemoryClaimsCache creates an in-memory claims cache with
// background cleanup running.
func NewMemoryClaimsCache() *MemoryClaimsCache {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, *domain.IdentityClaims](),
	)
	go cache.Start()

	return &MemoryClaimsCache{cache: cache}
}

// Get implements ClaimsCache.Get.
func (c *MemoryClaimsCache) Get(_ context.Context, fingerprint string) (*domain.IdentityClaims, bool) {
	item := c.cache.Get(fingerprint)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Set implements ClaimsCache.Set.
func (c *MemoryClaimsCache) Set(_ context.Context, fingerprint string, claims *domain.IdentityClaims, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	c.cache.Set(fingerprint, claims, ttl)
	return nil
}

// Close stops the cleanup goroutine.
func (c *MemoryClaimsCache) Close() error {
	c.cache.Stop()
	return nil
}

var _ ClaimsCache = (*MemoryClaimsCache)(nil)

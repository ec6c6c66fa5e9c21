package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agrishield/identity/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ClaimsCache implements cache.ClaimsCache on Redis, for deployments
// running more than one backend instance.
type ClaimsCache struct {
	client *redis.Client
	prefix string
}

// NewClaimsCache creates a Redis-backed claims cache. prefix namespaces
// the keys so the cache can share a Redis with other services.
func NewClaimsCache(client *redis.Client, prefix string) *ClaimsCache {
	return &ClaimsCache{
		client: client,
		prefix: prefix,
	}
}

func (c *ClaimsCache) redisKey(fingerprint string) string {
	return fmt.Sprintf("%s:claims:%s", c.prefix, fingerprint)
}

// Get implements cache.ClaimsCache.Get. Redis errors degrade to a miss:
// the caller falls back to full verification.
func (c *ClaimsCache) Get(ctx context.Context, fingerprint string) (*domain.IdentityClaims, bool) {
	payload, err := c.client.Get(ctx, c.redisKey(fingerprint)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("claims cache read failed")
		}
		return nil, false
	}

	var claims domain.IdentityClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		log.Warn().Err(err).Msg("claims cache entry is not decodable, dropping it")
		c.client.Del(ctx, c.redisKey(fingerprint))
		return nil, false
	}
	return &claims, true
}

// Set implements cache.ClaimsCache.Set.
func (c *ClaimsCache) Set(ctx context.Context, fingerprint string, claims *domain.IdentityClaims, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("failed to marshal claims: %w", err)
	}

	if err := c.client.Set(ctx, c.redisKey(fingerprint), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store claims in Redis: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (c *ClaimsCache) Close() error {
	return c.client.Close()
}

package verifier

import (
	"context"

	"github.com/agrishield/identity/cache"
	"github.com/agrishield/identity/domain"
	"github.com/rs/zerolog/log"
)

// CachingVerifier wraps a TokenVerifier with a verified-claims cache.
// A token seen again within its validity window skips the signature
// check and key fetch. Failed verifications are never cached, so an
// expired or malformed token can never be served from cache.
type CachingVerifier struct {
	inner  domain.TokenVerifier
	claims cache.ClaimsCache
}

// NewCachingVerifier wraps inner with claimsCache.
func NewCachingVerifier(inner domain.TokenVerifier, claimsCache cache.ClaimsCache) *CachingVerifier {
	return &CachingVerifier{
		inner:  inner,
		claims: claimsCache,
	}
}

// Verify implements domain.TokenVerifier.
func (v *CachingVerifier) Verify(ctx context.Context, rawIDToken string) (*domain.IdentityClaims, error) {
	fingerprint := cache.HashToken(rawIDToken)

	if claims, ok := v.claims.Get(ctx, fingerprint); ok {
		log.Debug().Str("subject", claims.Subject).Msg("verified claims cache hit")
		return claims, nil
	}

	claims, err := v.inner.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	if err := v.claims.Set(ctx, fingerprint, claims, claims.ExpiresAt); err != nil {
		// Cache trouble is not a sign-in failure.
		log.Warn().Err(err).Msg("failed to cache verified claims")
	}

	return claims, nil
}

var _ domain.TokenVerifier = (*CachingVerifier)(nil)

package cache

import (
	"context"
	"time"

	"github.com/agrishield/identity/domain"
)

// ClaimsCache stores verified identity claims keyed by a token
// fingerprint (see HashToken), so a token presented twice within its
// validity window skips the cryptographic verification round-trip.
// Only successful verifications are ever cached.
type ClaimsCache interface {
	// Get returns the cached claims for a token fingerprint, or false.
	Get(ctx context.Context, fingerprint string) (*domain.IdentityClaims, bool)

	// Set stores claims under a fingerprint until expiresAt.
	Set(ctx context.Context, fingerprint string, claims *domain.IdentityClaims, expiresAt time.Time) error

	// Close releases cache resources.
	Close() error
}

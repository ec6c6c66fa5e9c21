package domain

import (
	"context"
	"time"
)

// IdentityClaims holds the verified claims extracted from a provider
// ID token. Facts only, no provisioning decisions.
type IdentityClaims struct {
	Subject       string // provider-scoped unique user id (the "sub" claim)
	Email         string
	EmailVerified bool
	Name          string    // display name as asserted by the provider, may be empty
	ExpiresAt     time.Time // token expiry as asserted by the provider
}

// TokenVerifier validates a bearer ID token issued by an external
// identity provider and returns its claims. Implementations must not
// have side effects: a failed verification leaves no trace anywhere.
type TokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*IdentityClaims, error)
}

package verifier

import (
	"context"
	"fmt"

	"github.com/agrishield/identity/domain"
	"github.com/coreos/go-oidc/v3/oidc"
)

// GoogleIssuer is the OIDC issuer for Google-signed ID tokens.
const GoogleIssuer = "https://accounts.google.com"

// GoogleVerifier validates Google ID tokens against the issuer's
// published keys and the configured OAuth client id.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier performs OIDC discovery against Google and returns
// a verifier expecting clientID as the token audience.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	provider, err := oidc.NewProvider(ctx, GoogleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	return &GoogleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify implements domain.TokenVerifier. Any signature, expiry, or
// audience problem comes back as an error; nothing is persisted.
func (g *GoogleVerifier) Verify(ctx context.Context, rawIDToken string) (*domain.IdentityClaims, error) {
	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	return &domain.IdentityClaims{
		Subject:       claims.Sub,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		ExpiresAt:     idToken.Expiry,
	}, nil
}

var _ domain.TokenVerifier = (*GoogleVerifier)(nil)

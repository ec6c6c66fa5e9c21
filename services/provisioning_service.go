package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agrishield/identity/domain"
	"github.com/rs/zerolog/log"
)

// SignInResult is the success payload of a sign-in: the provisioned
// account, whether this call created it, and a fresh session credential.
type SignInResult struct {
	IsNewAccount      bool
	Account           *domain.Account
	SessionCredential string
	ExpiresIn         time.Duration
}

// ProvisioningService consumes a provider-issued bearer token,
// verifies it, creates or refreshes the matching account record, and
// issues an application session credential. Each call is an
// independent, linear pipeline; a failure on any step leaves the
// account store untouched.
type ProvisioningService struct {
	verifier domain.TokenVerifier
	accounts domain.AccountRepository
	sessions *SessionService
	now      func() time.Time
}

// NewProvisioningService creates a ProvisioningService.
func NewProvisioningService(
	verifier domain.TokenVerifier,
	accounts domain.AccountRepository,
	sessions *SessionService,
) *ProvisioningService {
	return &ProvisioningService{
		verifier: verifier,
		accounts: accounts,
		sessions: sessions,
		now:      time.Now,
	}
}

// SignIn runs the provisioning pipeline for a bearer ID token.
func (s *ProvisioningService) SignIn(ctx context.Context, bearerToken string) (*SignInResult, error) {
	if strings.TrimSpace(bearerToken) == "" {
		return nil, invalidRequest("ID Token is required")
	}

	claims, err := s.verifier.Verify(ctx, bearerToken)
	if err != nil {
		log.Warn().Err(err).Msg("ID token verification failed")
		return nil, unauthorized("Invalid or expired ID Token", err)
	}

	// A verified token without a subject or email is a malformed
	// identity assertion, not an ordinary bad token: the caller cannot
	// fix it by re-authenticating.
	if claims.Subject == "" || claims.Email == "" {
		log.Warn().Str("subject", claims.Subject).Msg("verified token is missing required identity claims")
		return nil, invalidRequest("identity assertion is missing subject or email")
	}

	account, isNew, err := s.provisionAccount(ctx, claims)
	if err != nil {
		log.Error().Err(err).Str("subject", claims.Subject).Msg("account provisioning failed")
		return nil, internal("Authentication failed", err)
	}

	credential, err := s.sessions.Issue(account.SubjectID, account.Email)
	if err != nil {
		log.Error().Err(err).Str("subject", account.SubjectID).Msg("session credential issuance failed")
		return nil, internal("Authentication failed", err)
	}

	log.Info().
		Str("subject", account.SubjectID).
		Bool("new_account", isNew).
		Msg("sign-in completed")

	return &SignInResult{
		IsNewAccount:      isNew,
		Account:           account,
		SessionCredential: credential,
		ExpiresIn:         s.sessions.TTL(),
	}, nil
}

// provisionAccount creates the account on first sight of a subject id,
// or refreshes last_login_at and email_verified for a returning one.
func (s *ProvisioningService) provisionAccount(ctx context.Context, claims *domain.IdentityClaims) (*domain.Account, bool, error) {
	loginAt := s.now().UTC()

	account, err := s.accounts.GetBySubject(ctx, claims.Subject)
	switch {
	case err == nil:
		// Returning account: only last_login_at and email_verified move.
		if err := s.accounts.RecordLogin(ctx, account.SubjectID, loginAt, claims.EmailVerified); err != nil {
			return nil, false, err
		}
		account.LastLoginAt = loginAt
		account.EmailVerified = claims.EmailVerified
		return account, false, nil

	case errors.Is(err, domain.ErrAccountNotFound):
		account = &domain.Account{
			SubjectID:     claims.Subject,
			Email:         claims.Email,
			EmailVerified: claims.EmailVerified,
			DisplayName:   deriveDisplayName(claims),
			CreatedAt:     loginAt,
			LastLoginAt:   loginAt,
		}
		createErr := s.accounts.Create(ctx, account)
		if createErr == nil {
			return account, true, nil
		}
		if errors.Is(createErr, domain.ErrAccountExists) {
			// Lost the race against a concurrent first login for the
			// same subject. The other writer's record stands; finish as
			// a returning login.
			log.Info().Str("subject", claims.Subject).Msg("concurrent first login detected, continuing as returning account")
			existing, getErr := s.accounts.GetBySubject(ctx, claims.Subject)
			if getErr != nil {
				return nil, false, getErr
			}
			if err := s.accounts.RecordLogin(ctx, existing.SubjectID, loginAt, claims.EmailVerified); err != nil {
				return nil, false, err
			}
			existing.LastLoginAt = loginAt
			existing.EmailVerified = claims.EmailVerified
			return existing, false, nil
		}
		return nil, false, createErr

	default:
		return nil, false, err
	}
}

// deriveDisplayName picks the provider-asserted name, falling back to
// the email local-part when the provider supplied none.
func deriveDisplayName(claims *domain.IdentityClaims) string {
	if name := strings.TrimSpace(claims.Name); name != "" {
		return name
	}
	if at := strings.Index(claims.Email, "@"); at > 0 {
		return claims.Email[:at]
	}
	return claims.Email
}

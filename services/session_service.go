package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidSessionCredential is returned by Parse for any credential
// that does not carry a valid signature and unexpired claims.
var ErrInvalidSessionCredential = errors.New("invalid session credential")

// SessionClaims are the claims embedded in an application session
// credential: the provider subject id rides in the registered Subject,
// the account email in a private claim.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// SessionService issues and parses the application-scoped session
// credential. Credentials are stateless HS256 JWTs: validity is purely
// a function of the embedded expiry and signature, nothing is stored
// server-side.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionService creates a SessionService signing with secret and
// issuing credentials valid for ttl.
func NewSessionService(secret string, ttl time.Duration) *SessionService {
	return &SessionService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the fixed validity window of issued credentials.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a fresh credential for the given subject and email. Every
// call produces an independent credential; issuing does not invalidate
// previously issued ones.
func (s *SessionService) Issue(subjectID, email string) (string, error) {
	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session credential: %w", err)
	}
	return signed, nil
}

// Parse validates a credential and returns its claims.
func (s *SessionService) Parse(credential string) (*SessionClaims, error) {
	var claims SessionClaims
	token, err := jwt.ParseWithClaims(credential, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSessionCredential, err)
	}
	if !token.Valid {
		return nil, ErrInvalidSessionCredential
	}
	return &claims, nil
}

package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAccountNotFound is returned when no account exists for a subject id.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when a create collides with an existing
	// account for the same subject id or email.
	ErrAccountExists = errors.New("account already exists")
)

// Account is one provisioned identity, keyed by the provider-issued
// subject id. CreatedAt is written once on first sign-in and never
// changes; LastLoginAt moves forward on every successful sign-in.
type Account struct {
	SubjectID     string    `bson:"_id" json:"uid"`
	Email         string    `bson:"email" json:"email"`
	EmailVerified bool      `bson:"email_verified" json:"emailVerified"`
	DisplayName   string    `bson:"display_name" json:"name"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	LastLoginAt   time.Time `bson:"last_login_at" json:"lastLoginAt"`
}

// AccountRepository is the persistence boundary for accounts.
type AccountRepository interface {
	// GetBySubject returns the account for a subject id, or
	// ErrAccountNotFound.
	GetBySubject(ctx context.Context, subjectID string) (*Account, error)

	// Create inserts a new account. Returns ErrAccountExists when an
	// account for the same subject id (or email) is already present.
	Create(ctx context.Context, account *Account) error

	// RecordLogin updates last_login_at and email_verified for an
	// existing account, leaving every other field untouched.
	RecordLogin(ctx context.Context, subjectID string, loginAt time.Time, emailVerified bool) error
}

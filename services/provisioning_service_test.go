package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agrishield/identity/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock Implementations ---

type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(ctx context.Context, rawIDToken string) (*domain.IdentityClaims, error) {
	args := m.Called(ctx, rawIDToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IdentityClaims), args.Error(1)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetBySubject(ctx context.Context, subjectID string) (*domain.Account, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) RecordLogin(ctx context.Context, subjectID string, loginAt time.Time, emailVerified bool) error {
	args := m.Called(ctx, subjectID, loginAt, emailVerified)
	return args.Error(0)
}

// --- Helpers ---

func newTestService(verifier domain.TokenVerifier, repo domain.AccountRepository) (*ProvisioningService, *SessionService) {
	sessions := NewSessionService("test-secret", 7*24*time.Hour)
	return NewProvisioningService(verifier, repo, sessions), sessions
}

func googleClaims() *domain.IdentityClaims {
	return &domain.IdentityClaims{
		Subject:       "u1",
		Email:         "a@x.com",
		EmailVerified: true,
		Name:          "Ada Lovelace",
		ExpiresAt:     time.Now().Add(time.Hour),
	}
}

// --- Tests ---

func TestSignIn_EmptyToken(t *testing.T) {
	verifier := new(MockTokenVerifier)
	repo := new(MockAccountRepository)
	svc, _ := newTestService(verifier, repo)

	for _, token := range []string{"", "   "} {
		result, err := svc.SignIn(context.Background(), token)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, KindInvalidRequest, KindOf(err))
	}

	// No verification, and above all no store traffic.
	verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignIn_VerificationFailure(t *testing.T) {
	verifier := new(MockTokenVerifier)
	repo := new(MockAccountRepository)
	svc, _ := newTestService(verifier, repo)

	verifier.On("Verify", mock.Anything, "bad-token").
		Return(nil, errors.New("token expired at 2026-08-21"))

	result, err := svc.SignIn(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Invalid or expired ID Token", svcErr.Message)
	assert.Contains(t, svcErr.Err.Error(), "token expired")

	repo.AssertNotCalled(t, "GetBySubject", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "RecordLogin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignIn_MalformedAssertion(t *testing.T) {
	tests := []struct {
		name   string
		claims *domain.IdentityClaims
	}{
		{"missing subject", &domain.IdentityClaims{Email: "a@x.com"}},
		{"missing email", &domain.IdentityClaims{Subject: "u1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := new(MockTokenVerifier)
			repo := new(MockAccountRepository)
			svc, _ := newTestService(verifier, repo)

			verifier.On("Verify", mock.Anything, "token").Return(tt.claims, nil)

			_, err := svc.SignIn(context.Background(), "token")
			require.Error(t, err)
			assert.Equal(t, KindInvalidRequest, KindOf(err))
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "RecordLogin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSignIn_NewAccount(t *testing.T) {
	verifier := new(MockTokenVerifier)
	repo := new(MockAccountRepository)
	svc, sessions := newTestService(verifier, repo)

	verifier.On("Verify", mock.Anything, "token").Return(googleClaims(), nil)
	repo.On("GetBySubject", mock.Anything, "u1").Return(nil, domain.ErrAccountNotFound)

	var created *domain.Account
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Account)
		}).
		Return(nil)

	result, err := svc.SignIn(context.Background(), "token")
	require.NoError(t, err)

	assert.True(t, result.IsNewAccount)
	assert.Equal(t, "u1", result.Account.SubjectID)
	assert.Equal(t, "a@x.com", result.Account.Email)
	assert.Equal(t, "Ada Lovelace", result.Account.DisplayName)

	require.NotNil(t, created)
	assert.Equal(t, created.CreatedAt, created.LastLoginAt, "first login stamps created_at == last_login_at")

	// The issued credential embeds subject and email.
	claims, err := sessions.Parse(result.SessionCredential)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, 7*24*time.Hour, result.ExpiresIn)

	repo.AssertNotCalled(t, "RecordLogin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignIn_ReturningAccount(t *testing.T) {
	verifier := new(MockTokenVerifier)
	repo := new(MockAccountRepository)
	svc, _ := newTestService(verifier, repo)

	createdAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	existing := &domain.Account{
		SubjectID:   "u1",
		Email:       "a@x.com",
		DisplayName: "Ada Lovelace",
		CreatedAt:   createdAt,
		LastLoginAt: createdAt,
	}

	verifier.On("Verify", mock.Anything, "token").Return(googleClaims(), nil)
	repo.On("GetBySubject", mock.Anything, "u1").Return(existing, nil)
	repo.On("RecordLogin", mock.Anything, "u1", mock.AnythingOfType("time.Time"), true).Return(nil)

	result, err := svc.SignIn(context.Background(), "token")
	require.NoError(t, err)

	assert.False(t, result.IsNewAccount)
	assert.Equal(t, createdAt, result.Account.CreatedAt, "created_at never changes")
	assert.Equal(t, "a@x.com", result.Account.Email, "email never changes on returning login")
	assert.True(t, !result.Account.LastLoginAt.Before(createdAt), "last_login_at is monotonically non-decreasing")

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignIn_TwiceSameSubject(t *testing.T) {
	// The same still-valid token submitted twice: first call provisions,
	// second call only refreshes last_login_at.
	verifier := new(MockTokenVerifier)
	repo := new(MockAccountRepository)
	svc, _ := newTestService(verifier, repo)

	verifier.On("Verify", mock.Anything, "token").Return(googleClaims(), nil)

	var stored *domain.Account
	repo.On("GetBySubject", mock.Anything, "u1").Return(nil, domain.ErrAccountNotFound).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*domain.Account)
		}).
		Return(nil).Once()

	first, err := svc.SignIn(context.Background(), "token")
	require.NoError(t, err)
	require.True(t, first.IsNewAccount)

	repo.On("GetBySubject", mock.Anything, "u1").Return(stored, nil).Once()
	repo.On("RecordLogin", mock.Anything, "u1", mock.AnythingOfType("time.Time"), true).Return(nil).Once()

	second, err := svc.SignIn(context.Background(), "token")
	require.NoError(t, err)

	assert.False(t, second.IsNewAccount)
	assert.Equal(t, first.Account.SubjectID, second.Account.SubjectID)
	assert.Equal(t, first.Account.Email, second.Account.Email)
	repo.AssertExpectations(t)
}

func TestSignIn_ConcurrentFirstLoginRace(t *testing.T) {
	// Create loses the duplicate-key race: the service re-reads the
	// winner's record and completes as a returning login.
	verifier := new(MockTokenVerifier)
	repo := new(MockAccountRepository)
	svc, _ := newTestService(verifier, repo)

	winner := &domain.Account{
		SubjectID:   "u1",
		Email:       "a@x.com",
		DisplayName: "Ada Lovelace",
		CreatedAt:   time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		LastLoginAt: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
	}

	verifier.On("Verify", mock.Anything, "token").Return(googleClaims(), nil)
	repo.On("GetBySubject", mock.Anything, "u1").Return(nil, domain.ErrAccountNotFound).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).Return(domain.ErrAccountExists).Once()
	repo.On("GetBySubject", mock.Anything, "u1").Return(winner, nil).Once()
	repo.On("RecordLogin", mock.Anything, "u1", mock.AnythingOfType("time.Time"), true).Return(nil).Once()

	result, err := svc.SignIn(context.Background(), "token")
	require.NoError(t, err)
	assert.False(t, result.IsNewAccount)
	assert.Equal(t, winner.CreatedAt, result.Account.CreatedAt)
	repo.AssertExpectations(t)
}

func TestSignIn_StoreFailure(t *testing.T) {
	verifier := new(MockTokenVerifier)
	repo := new(MockAccountRepository)
	svc, _ := newTestService(verifier, repo)

	verifier.On("Verify", mock.Anything, "token").Return(googleClaims(), nil)
	repo.On("GetBySubject", mock.Anything, "u1").Return(nil, errors.New("connection reset"))

	_, err := svc.SignIn(context.Background(), "token")
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Authentication failed", svcErr.Message)
}

func TestDeriveDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		claims domain.IdentityClaims
		want   string
	}{
		{"provider name wins", domain.IdentityClaims{Name: "Ada Lovelace", Email: "a@x.com"}, "Ada Lovelace"},
		{"whitespace name falls back", domain.IdentityClaims{Name: "  ", Email: "ada.l@x.com"}, "ada.l"},
		{"no name uses local part", domain.IdentityClaims{Email: "farmer42@fields.example"}, "farmer42"},
		{"degenerate email passes through", domain.IdentityClaims{Email: "@x.com"}, "@x.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveDisplayName(&tt.claims))
		})
	}
}

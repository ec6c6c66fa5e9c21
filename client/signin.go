package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const signInPath = "/api/auth/google"

// SignedInState is the local session after a successful sign-in.
type SignedInState struct {
	SubjectID         string
	Email             string
	DisplayName       string
	SessionCredential string
	ExpiresIn         string
	IsNewAccount      bool
}

// WelcomeMessage distinguishes a first sign-in from a returning one,
// for surfacing in the UI.
func (s *SignedInState) WelcomeMessage() string {
	name := s.DisplayName
	if name == "" {
		name = s.Email
	}
	if s.IsNewAccount {
		return fmt.Sprintf("Welcome, %s!", name)
	}
	return fmt.Sprintf("Welcome back, %s!", name)
}

// SignInClient orchestrates the full sign-in sequence: provider
// handshake, token pickup, backend exchange, local state transition.
// One attempt may be in flight at a time; a second concurrent call
// fails fast with ErrSignInInProgress instead of racing two handshakes.
type SignInClient struct {
	auth       Authenticator
	backendURL string
	httpClient *http.Client

	inFlight atomic.Bool

	mu    sync.Mutex
	state *SignedInState
}

// NewSignInClient creates a SignInClient talking to the backend at
// backendURL. Pass nil for httpClient to use a default with a sane
// timeout.
func NewSignInClient(auth Authenticator, backendURL string, httpClient *http.Client) *SignInClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &SignInClient{
		auth:       auth,
		backendURL: backendURL,
		httpClient: httpClient,
	}
}

// State returns the current signed-in state, or nil when signed out.
func (c *SignInClient) State() *SignedInState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PerformSignIn runs one sign-in attempt end to end. Outcomes:
// the new SignedInState on success; ErrCancelled when the user backed
// out; ErrSignInInProgress when another attempt is pending; otherwise
// a failure (ErrNoActiveSession, ErrNetwork, *ServerError, or a
// wrapped handshake error). The in-flight guard is always released, so
// a failed attempt can be retried immediately.
func (c *SignInClient) PerformSignIn(ctx context.Context) (*SignedInState, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSignInInProgress
	}
	defer c.inFlight.Store(false)

	if err := c.auth.SignIn(ctx); err != nil {
		if errors.Is(err, ErrCancelled) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("provider handshake failed: %w", err)
	}

	idToken, err := c.auth.CurrentIDToken(ctx)
	if err != nil {
		return nil, err
	}

	state, err := c.exchangeWithBackend(ctx, idToken)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	return state, nil
}

type signInResponseBody struct {
	Success   bool   `json:"success"`
	IsNewUser bool   `json:"isNewUser"`
	Message   string `json:"message"`
	Error     string `json:"error"`
	Data      struct {
		UID       string `json:"uid"`
		Email     string `json:"email"`
		Name      string `json:"name"`
		JWTToken  string `json:"jwtToken"`
		ExpiresIn string `json:"expiresIn"`
	} `json:"data"`
}

// exchangeWithBackend submits the bearer token and maps the response.
func (c *SignInClient) exchangeWithBackend(ctx context.Context, idToken string) (*SignedInState, error) {
	payload, err := json.Marshal(map[string]string{"idToken": idToken})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.backendURL+signInPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	var body signInResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: undecodable response: %v", ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		message := body.Message
		if message == "" {
			message = body.Error
		}
		if message == "" {
			message = "authentication failed"
		}
		return nil, &ServerError{Status: resp.StatusCode, Message: message}
	}

	return &SignedInState{
		SubjectID:         body.Data.UID,
		Email:             body.Data.Email,
		DisplayName:       body.Data.Name,
		SessionCredential: body.Data.JWTToken,
		ExpiresIn:         body.Data.ExpiresIn,
		IsNewAccount:      body.IsNewUser,
	}, nil
}

// SignOut clears the provider session and the local state. The local
// state is cleared unconditionally, before the SDK call, so the UI can
// never be left looking signed in when the remote teardown errors. The
// SDK error, if any, is returned for logging.
func (c *SignInClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	c.state = nil
	c.mu.Unlock()

	return c.auth.SignOut(ctx)
}

package client

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled means the user backed out of the provider handshake.
	// Not a failure: callers should treat it as a no-op.
	ErrCancelled = errors.New("sign-in cancelled by user")

	// ErrSignInInProgress means another sign-in attempt is already in
	// flight; the new attempt was not started.
	ErrSignInInProgress = errors.New("a sign-in attempt is already in progress")

	// ErrNoActiveSession means the handshake reported success but the
	// provider SDK holds no session to take an ID token from.
	ErrNoActiveSession = errors.New("no active provider session after sign-in")

	// ErrNetwork wraps transport failures talking to the backend. The
	// server state is unchanged when this is returned.
	ErrNetwork = errors.New("network error")
)

// ServerError is a non-success response from the backend, carrying the
// HTTP status and the server-reported message.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server rejected sign-in (%d): %s", e.Status, e.Message)
}

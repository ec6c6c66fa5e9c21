package client

import "context"

// Authenticator abstracts the platform identity-provider SDK: the
// interactive handshake, the session it leaves behind, and its local
// teardown. Implementations return ErrCancelled when the user aborts
// the handshake and ErrNoActiveSession when asked for a token without
// a session.
type Authenticator interface {
	// SignIn runs the interactive provider handshake.
	SignIn(ctx context.Context) error

	// CurrentIDToken returns the ID token of the active session.
	CurrentIDToken(ctx context.Context) (string, error)

	// SignOut tears down the provider-side session state.
	SignOut(ctx context.Context) error
}

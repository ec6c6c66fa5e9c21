package client

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// CodePrompter drives the interactive part of the handshake: it
// presents authURL to the user and returns the authorization code they
// obtained, or ErrCancelled if they backed out.
type CodePrompter func(ctx context.Context, authURL string) (string, error)

// GoogleAuthenticator implements Authenticator with the standard
// Google OAuth2 authorization-code flow. It holds at most one session
// (the last exchanged token) and is safe for concurrent use.
type GoogleAuthenticator struct {
	config *oauth2.Config
	prompt CodePrompter

	mu      sync.Mutex
	session *oauth2.Token
}

// NewGoogleAuthenticator creates a GoogleAuthenticator for the given
// OAuth client. The openid, profile, and email scopes are always
// requested so the resulting ID token carries the identity claims the
// backend needs.
func NewGoogleAuthenticator(clientID, clientSecret, redirectURL string, prompt CodePrompter) *GoogleAuthenticator {
	return &GoogleAuthenticator{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		prompt: prompt,
	}
}

// SignIn runs the authorization-code handshake: prompt the user with
// the consent URL, exchange the code they bring back, keep the token
// as the current session.
func (g *GoogleAuthenticator) SignIn(ctx context.Context) error {
	state, err := randomState()
	if err != nil {
		return fmt.Errorf("failed to generate auth state: %w", err)
	}

	authURL := g.config.AuthCodeURL(state, oauth2.AccessTypeOffline)

	code, err := g.prompt(ctx, authURL)
	if err != nil {
		// ErrCancelled passes through untouched so callers can tell a
		// user abort from a genuine failure.
		return err
	}

	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("code exchange failed: %w", err)
	}

	g.mu.Lock()
	g.session = token
	g.mu.Unlock()
	return nil
}

// CurrentIDToken returns the ID token from the current session.
func (g *GoogleAuthenticator) CurrentIDToken(_ context.Context) (string, error) {
	g.mu.Lock()
	session := g.session
	g.mu.Unlock()

	if session == nil {
		return "", ErrNoActiveSession
	}
	idToken, ok := session.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", ErrNoActiveSession
	}
	return idToken, nil
}

// SignOut drops the local session. There is nothing to revoke
// remotely; the session credential the backend issued is stateless.
func (g *GoogleAuthenticator) SignOut(_ context.Context) error {
	g.mu.Lock()
	g.session = nil
	g.mu.Unlock()
	return nil
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

var _ Authenticator = (*GoogleAuthenticator)(nil)

package echo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/agrishield/identity/services"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SignInService is what the HTTP layer needs from the provisioning
// core: one call, one typed result or typed failure.
type SignInService interface {
	SignIn(ctx context.Context, bearerToken string) (*services.SignInResult, error)
}

// Pinger reports storage health for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AuthAPI holds the auth route handlers and their dependencies.
type AuthAPI struct {
	signIn SignInService
	store  Pinger
}

// NewAuthAPI initializes the auth API.
func NewAuthAPI(signIn SignInService, store Pinger) *AuthAPI {
	return &AuthAPI{
		signIn: signIn,
		store:  store,
	}
}

// RegisterRoutes registers the auth routes.
func (a *AuthAPI) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/auth/google", a.GoogleSignInHandler)
	e.GET("/healthz", a.HealthHandler)
}

type googleSignInRequest struct {
	IDToken string `json:"idToken"`
}

type accountPayload struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	JWTToken  string `json:"jwtToken"`
	ExpiresIn string `json:"expiresIn"`
}

type signInResponse struct {
	Success   bool           `json:"success"`
	IsNewUser bool           `json:"isNewUser"`
	Data      accountPayload `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// GoogleSignInHandler handles POST /api/auth/google. It accepts a
// provider-issued ID token, runs the provisioning pipeline, and
// answers 201 for a freshly created account or 200 for a returning
// one; both are successes, the distinction only drives client UX.
func (a *AuthAPI) GoogleSignInHandler(c echo.Context) error {
	var req googleSignInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Success: false,
			Message: "ID Token is required",
		})
	}

	ctx := c.Request().Context()

	result, err := a.signIn.SignIn(ctx, req.IDToken)
	if err != nil {
		return a.respondError(c, err)
	}

	status := http.StatusOK
	if result.IsNewAccount {
		status = http.StatusCreated
	}

	return c.JSON(status, signInResponse{
		Success:   true,
		IsNewUser: result.IsNewAccount,
		Data: accountPayload{
			UID:       result.Account.SubjectID,
			Email:     result.Account.Email,
			Name:      result.Account.DisplayName,
			JWTToken:  result.SessionCredential,
			ExpiresIn: formatExpiry(result.ExpiresIn),
		},
	})
}

// respondError is the single place service error kinds become HTTP
// status codes. Internal detail stays in the logs for the 500 path.
func (a *AuthAPI) respondError(c echo.Context, err error) error {
	var svcErr *services.Error
	errors.As(err, &svcErr)

	switch services.KindOf(err) {
	case services.KindInvalidRequest:
		return c.JSON(http.StatusBadRequest, errorResponse{
			Success: false,
			Message: svcErr.Message,
		})
	case services.KindUnauthorized:
		resp := errorResponse{
			Success: false,
			Message: svcErr.Message,
		}
		if svcErr.Err != nil {
			resp.Error = svcErr.Err.Error()
		}
		return c.JSON(http.StatusUnauthorized, resp)
	default:
		log.Error().Err(err).Msg("sign-in failed with internal error")
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Success: false,
			Message: "Authentication failed",
		})
	}
}

// HealthHandler reports liveness of the service and its store.
func (a *AuthAPI) HealthHandler(c echo.Context) error {
	if err := a.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// formatExpiry renders a validity window the way mobile clients expect
// it: whole days as "7d", anything else as a Go duration string.
func formatExpiry(d time.Duration) string {
	if d > 0 && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
	return d.String()
}

// Package workflow drives the client-side flows behind each screen: login
// and signup, and the three role dashboards. Capability checks here are
// advisory; the server re-checks everything.
package workflow

import (
	"context"

	"github.com/paperdesk/paperdesk/internal/apierrors"
	"github.com/paperdesk/paperdesk/internal/client"
	"github.com/paperdesk/paperdesk/internal/logger"
	"github.com/paperdesk/paperdesk/internal/model"
	"github.com/paperdesk/paperdesk/internal/policy"
	"github.com/paperdesk/paperdesk/internal/service"
	"github.com/paperdesk/paperdesk/internal/session"
)

// AuthAPI is the slice of the API client the auth flow needs.
type AuthAPI interface {
	Signup(ctx context.Context, req client.SignupRequest) (model.Identity, error)
	Login(ctx context.Context, username, password string) (client.LoginResult, error)
	Logout(ctx context.Context, refreshToken string) error
}

// SessionStore is the slice of the session store the workflows need.
type SessionStore interface {
	SetCurrentUser(identity model.Identity, credentials session.Credentials) error
	CurrentUser() model.Identity
	Credentials() (session.Credentials, bool)
	Logout() error
}

// SignupForm carries the fields of the signup screen.
type SignupForm struct {
	Username string
	Email    string
	Password string
	Role     model.Role
}

// Auth handles login, signup and logout.
type Auth struct {
	api     AuthAPI
	session SessionStore
	logger  *logger.Logger
}

// NewAuth creates the auth flow.
func NewAuth(api AuthAPI, session SessionStore, logger *logger.Logger) *Auth {
	return &Auth{api: api, session: session, logger: logger}
}

// Login authenticates, stores the session and returns the dashboard route
// for the account's role.
func (a *Auth) Login(ctx context.Context, username, password string) (policy.Route, error) {
	if username == "" || password == "" {
		return "", apierrors.NewValidation("username and password are required")
	}

	result, err := a.api.Login(ctx, username, password)
	if err != nil {
		return "", err
	}

	err = a.session.SetCurrentUser(result.User, session.Credentials{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
	if err != nil {
		return "", err
	}

	a.logger.Info("logged in", "username", result.User.Username, "role", result.User.Role)

	return policy.LandingRoute(result.User.Role), nil
}

// Signup validates the form locally, then registers the account. The caller
// proceeds to the login screen on success; signup does not authenticate.
func (a *Auth) Signup(ctx context.Context, form SignupForm) (model.Identity, error) {
	if form.Username == "" {
		return model.Identity{}, apierrors.NewValidation("username is required")
	}
	if err := service.ValidateEmail(form.Email); err != nil {
		return model.Identity{}, apierrors.NewValidation("email address %q is not valid", form.Email)
	}
	if len(form.Password) < 8 {
		return model.Identity{}, apierrors.NewValidation("password must be at least 8 characters")
	}
	if !form.Role.Valid() {
		return model.Identity{}, apierrors.NewValidation("unknown role %q", form.Role)
	}

	identity, err := a.api.Signup(ctx, client.SignupRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		Role:     string(form.Role),
	})
	if err != nil {
		return model.Identity{}, err
	}

	a.logger.Info("account registered", "username", identity.Username, "role", identity.Role)

	return identity, nil
}

// Logout revokes the refresh token on the server when one is stored, then
// clears the local session. The local session is cleared even when the
// server call fails so the client never stays half logged in.
func (a *Auth) Logout(ctx context.Context) error {
	if credentials, ok := a.session.Credentials(); ok && credentials.RefreshToken != "" {
		if err := a.api.Logout(ctx, credentials.RefreshToken); err != nil {
			a.logger.Debug("server-side logout failed", "error", err.Error())
		}
	}
	return a.session.Logout()
}

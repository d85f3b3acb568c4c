package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/paperdesk/paperdesk/internal/apierrors"
	"github.com/paperdesk/paperdesk/internal/logger"
	"github.com/paperdesk/paperdesk/internal/model"
)

// SignupParams contains the fields required to register an account.
type SignupParams struct {
	Username string
	Email    string
	Password string
	Role     model.Role
}

// Auth handles account registration and credential verification.
type Auth struct {
	userStore    model.UserStore
	tokenService *TokenService
	bcryptCost   int
	logger       *logger.Logger
}

func NewAuth(userStore model.UserStore, tokenService *TokenService, bcryptCost int, logger *logger.Logger) *Auth {
	return &Auth{
		userStore:    userStore,
		tokenService: tokenService,
		bcryptCost:   bcryptCost,
		logger:       logger,
	}
}

// Signup validates the registration request, rejects duplicate usernames and
// emails, and creates the account with a bcrypt password hash.
func (a *Auth) Signup(ctx context.Context, params SignupParams) (model.User, error) {
	a.logger.Debug("Auth service: starting signup",
		"username", params.Username)

	if err := validateSignup(params); err != nil {
		return model.User{}, err
	}

	if _, err := a.userStore.GetByUsername(ctx, params.Username); err == nil {
		a.logger.Info("Auth service: username already taken",
			"username", params.Username)
		return model.User{}, apierrors.NewUsernameTaken(params.Username)
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	if _, err := a.userStore.GetByEmail(ctx, params.Email); err == nil {
		a.logger.Info("Auth service: email already registered",
			"username", params.Username)
		return model.User{}, apierrors.NewEmailTaken(params.Email)
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), a.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:           uuid.New(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		Role:         params.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := a.userStore.Create(ctx, user)
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"username", params.Username,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: signup completed",
		"username", created.Username,
		"role", created.Role)

	return created, nil
}

// Login verifies credentials and issues an access/refresh token pair.
func (a *Auth) Login(ctx context.Context, username, password string) (model.User, string, string, error) {
	a.logger.Debug("Auth service: starting login",
		"username", username)

	user, err := a.userStore.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, "", "", apierrors.NewInvalidCredentials()
	}
	if err != nil {
		return model.User{}, "", "", fmt.Errorf("failed to get user by username: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		a.logger.Info("Auth service: password mismatch",
			"username", username)
		return model.User{}, "", "", apierrors.NewInvalidCredentials()
	}

	access, refresh, err := a.tokenService.Issue(ctx, user)
	if err != nil {
		return model.User{}, "", "", fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: login completed",
		"username", username,
		"role", user.Role)

	return user, access, refresh, nil
}

// ValidateEmail reports whether the address parses as an email. Shared with
// the client workflow so signup forms are rejected before any network call.
func ValidateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return apierrors.NewValidation("email %q is not a valid address", email)
	}
	return nil
}

func validateSignup(params SignupParams) error {
	if strings.TrimSpace(params.Username) == "" {
		return apierrors.NewValidation("username is required")
	}
	if strings.TrimSpace(params.Email) == "" {
		return apierrors.NewValidation("email is required")
	}
	if err := ValidateEmail(params.Email); err != nil {
		return err
	}
	if len(params.Password) < 8 {
		return apierrors.NewValidation("password must be at least 8 characters")
	}
	if !params.Role.Valid() {
		return apierrors.NewValidation("role %q is not recognized", params.Role)
	}
	return nil
}

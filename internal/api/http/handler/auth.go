package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paperdesk/paperdesk/internal/apierrors"
	"github.com/paperdesk/paperdesk/internal/logger"
	"github.com/paperdesk/paperdesk/internal/model"
	"github.com/paperdesk/paperdesk/internal/service"
)

// AuthService defines user registration and login operations.
type AuthService interface {
	Signup(ctx context.Context, params service.SignupParams) (model.User, error)
	Login(ctx context.Context, username, password string) (model.User, string, string, error)
}

// TokenService defines token refresh and revoke operations.
type TokenService interface {
	Refresh(ctx context.Context, refreshToken string) (accessToken string, newRefreshToken string, err error)
	RevokeByToken(ctx context.Context, refreshToken string) error
}

// Auth handles the authentication endpoints.
type Auth struct {
	authService  AuthService
	tokenService TokenService
	logger       *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, tokenService TokenService, logger *logger.Logger) *Auth {
	return &Auth{
		authService:  authService,
		tokenService: tokenService,
		logger:       logger,
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Signup registers a new account. The created identity is returned; the
// client logs in separately.
func (h *Auth) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apierrors.NewValidation("invalid request body"))
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), service.SignupParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		h.logger.Error("Auth handler: signup failed",
			"username", req.Username,
			"error", err.Error())
		writeError(c, err)
		return
	}

	h.logger.Info("Auth handler: signup completed", "username", user.Username)

	c.JSON(http.StatusCreated, gin.H{"user": user.Identity()})
}

// Login verifies credentials and returns a token pair with the identity.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apierrors.NewValidation("invalid request body"))
		return
	}

	user, accessToken, refreshToken, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: login failed",
			"username", req.Username,
			"error", err.Error())
		writeError(c, err)
		return
	}

	h.logger.Info("Auth handler: login completed", "username", user.Username)

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"user":         user.Identity(),
	})
}

// Refresh rotates a refresh token and returns a new token pair.
func (h *Auth) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		writeError(c, apierrors.NewValidation("refresh token is required"))
		return
	}

	accessToken, refreshToken, err := h.tokenService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Error("Auth handler: token refresh failed", "error", err.Error())
		writeError(c, apierrors.NewInvalidAuthorizationToken())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// Logout revokes the presented refresh token. Revoking an unknown token is
// not an error so logout stays idempotent.
func (h *Auth) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		writeError(c, apierrors.NewValidation("refresh token is required"))
		return
	}

	if err := h.tokenService.RevokeByToken(c.Request.Context(), req.RefreshToken); err != nil {
		h.logger.Debug("Auth handler: logout revoke failed", "error", err.Error())
	}

	c.Status(http.StatusNoContent)
}

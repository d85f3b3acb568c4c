package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paperdesk/paperdesk/internal/api/http/reqctx"
	"github.com/paperdesk/paperdesk/internal/apierrors"
	"github.com/paperdesk/paperdesk/internal/logger"
	"github.com/paperdesk/paperdesk/internal/model"
)

// TokenService resolves user ID from bearer tokens.
type TokenService interface {
	GetUserID(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate validates bearer tokens and injects the caller's identity into
// the request context.
type Authenticate struct {
	tokenService TokenService
	userStore    model.UserStore
	logger       *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, userStore model.UserStore, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, userStore: userStore, logger: logger}
}

// Handler parses the Authorization header, validates the token and resolves
// the account behind it. Requests without a valid token are rejected before
// reaching any handler.
func (m *Authenticate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := m.authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			apiErr, _ := apierrors.AsAPIError(err)
			c.AbortWithStatusJSON(apiErr.HTTPStatus, gin.H{
				"message": apiErr.Message,
				"code":    apiErr.Code,
			})
			return
		}

		c.Request = c.Request.WithContext(reqctx.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

func (m *Authenticate) authenticate(ctx context.Context, authHeader string) (model.Identity, error) {
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" {
		return model.Identity{}, apierrors.NewMissingAuthorizationToken()
	}

	userID, err := m.tokenService.GetUserID(ctx, tokenString)
	if err != nil || userID == uuid.Nil {
		return model.Identity{}, apierrors.NewInvalidAuthorizationToken()
	}

	user, err := m.userStore.GetByID(ctx, userID)
	if err != nil {
		m.logger.Debug("token valid but user lookup failed", "user_id", userID, "error", err)
		return model.Identity{}, apierrors.NewInvalidAuthorizationToken()
	}

	return user.Identity(), nil
}

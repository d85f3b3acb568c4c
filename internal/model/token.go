package model

import (
	"errors"

	"github.com/google/uuid"
)

// TokenManager generates and validates access/refresh tokens. Generated
// tokens carry the account's username and role as informational claims, but
// validation resolves only the account ID; callers resolve the authoritative
// role through the UserStore.
type TokenManager interface {
	GenerateAccessToken(user User) (string, error)
	GenerateRefreshToken(user User) (token string, jti string, err error)
	ParseAccessToken(token string) (uuid.UUID, error)
	ParseRefreshToken(token string) (userID uuid.UUID, jti string, err error)
}

var (
	ErrTokenRevoked  = errors.New("refresh token revoked")
	ErrTokenExpired  = errors.New("refresh token expired")
	ErrTokenMismatch = errors.New("refresh token mismatch")
)

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/paperdesk/paperdesk/internal/model"
	"github.com/paperdesk/paperdesk/internal/testutil"
	"github.com/paperdesk/paperdesk/internal/token"
)

func tokenServiceForTest(userStore model.UserStore, rtStore model.RefreshTokenStore) *TokenService {
	return NewTokenService(token.NewJWT("test-secret"), rtStore, userStore, testutil.MakeNoopLogger())
}

func TestTokenService_IssueAndResolve(t *testing.T) {
	user := model.User{ID: uuid.New(), Username: "alice", Role: model.RoleAuthor}
	rtStore := &MockRefreshTokenStore{}
	rtStore.On("Create", mock.Anything, mock.MatchedBy(func(rt model.RefreshToken) bool {
		return rt.UserID == user.ID && len(rt.TokenHash) == 32 && rt.RevokedAt == nil
	})).Return(nil)

	svc := tokenServiceForTest(&MockUserStore{}, rtStore)
	access, refresh, err := svc.Issue(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	userID, err := svc.GetUserID(context.Background(), access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	rtStore.AssertExpectations(t)
}

func TestTokenService_Refresh_RotatesToken(t *testing.T) {
	user := model.User{ID: uuid.New(), Username: "alice", Role: model.RoleAuthor}
	manager := token.NewJWT("test-secret")

	refresh, jti, err := manager.GenerateRefreshToken(user)
	require.NoError(t, err)

	stored := model.RefreshToken{
		ID:        uuid.New(),
		JTI:       jti,
		UserID:    user.ID,
		TokenHash: hashRefresh(refresh),
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	rtStore := &MockRefreshTokenStore{}
	userStore := &MockUserStore{}
	rtStore.On("GetByJTI", mock.Anything, jti).Return(stored, nil)
	userStore.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	rtStore.On("RevokeByJTI", mock.Anything, jti).Return(nil)
	rtStore.On("Create", mock.Anything, mock.MatchedBy(func(rt model.RefreshToken) bool {
		return rt.RotatedFromJTI != nil && *rt.RotatedFromJTI == jti
	})).Return(nil)

	svc := NewTokenService(manager, rtStore, userStore, testutil.MakeNoopLogger())
	newAccess, newRefresh, err := svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)
	assert.NotEqual(t, refresh, newRefresh)

	rtStore.AssertExpectations(t)
	userStore.AssertExpectations(t)
}

func TestTokenService_Refresh_RejectsBadRecords(t *testing.T) {
	user := model.User{ID: uuid.New(), Username: "alice", Role: model.RoleAuthor}
	manager := token.NewJWT("test-secret")

	refresh, jti, err := manager.GenerateRefreshToken(user)
	require.NoError(t, err)

	now := time.Now()
	revoked := now.Add(-time.Minute)

	tests := []struct {
		name    string
		stored  model.RefreshToken
		wantErr error
	}{
		{
			name: "revoked",
			stored: model.RefreshToken{
				JTI: jti, UserID: user.ID, TokenHash: hashRefresh(refresh),
				ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked,
			},
			wantErr: model.ErrTokenRevoked,
		},
		{
			name: "expired",
			stored: model.RefreshToken{
				JTI: jti, UserID: user.ID, TokenHash: hashRefresh(refresh),
				ExpiresAt: now.Add(-time.Hour),
			},
			wantErr: model.ErrTokenExpired,
		},
		{
			name: "hash mismatch",
			stored: model.RefreshToken{
				JTI: jti, UserID: user.ID, TokenHash: []byte("different"),
				ExpiresAt: now.Add(time.Hour),
			},
			wantErr: model.ErrTokenMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rtStore := &MockRefreshTokenStore{}
			rtStore.On("GetByJTI", mock.Anything, jti).Return(tt.stored, nil)

			svc := NewTokenService(manager, rtStore, &MockUserStore{}, testutil.MakeNoopLogger())
			_, _, err := svc.Refresh(context.Background(), refresh)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokenService_RevokeByToken(t *testing.T) {
	user := model.User{ID: uuid.New(), Username: "alice", Role: model.RoleAuthor}
	manager := token.NewJWT("test-secret")

	refresh, jti, err := manager.GenerateRefreshToken(user)
	require.NoError(t, err)

	rtStore := &MockRefreshTokenStore{}
	rtStore.On("RevokeByJTI", mock.Anything, jti).Return(nil)

	svc := NewTokenService(manager, rtStore, &MockUserStore{}, testutil.MakeNoopLogger())
	require.NoError(t, svc.RevokeByToken(context.Background(), refresh))

	rtStore.AssertExpectations(t)
}

func TestValidateRecord(t *testing.T) {
	now := time.Now()
	hash := hashRefresh("token")

	ok := model.RefreshToken{TokenHash: hash, ExpiresAt: now.Add(time.Hour)}
	assert.NoError(t, validateRecord(ok, hash, now))
}

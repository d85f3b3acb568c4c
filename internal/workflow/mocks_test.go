package workflow

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/paperdesk/paperdesk/internal/client"
	"github.com/paperdesk/paperdesk/internal/model"
	"github.com/paperdesk/paperdesk/internal/session"
)

type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Signup(ctx context.Context, req client.SignupRequest) (model.Identity, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.Identity), args.Error(1)
}

func (m *MockAuthAPI) Login(ctx context.Context, username, password string) (client.LoginResult, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(client.LoginResult), args.Error(1)
}

func (m *MockAuthAPI) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

type MockPaperAPI struct {
	mock.Mock
}

func (m *MockPaperAPI) AllPapers(ctx context.Context) ([]model.Paper, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Paper), args.Error(1)
}

func (m *MockPaperAPI) SearchPapers(ctx context.Context, keyword string) ([]model.Paper, error) {
	args := m.Called(ctx, keyword)
	return args.Get(0).([]model.Paper), args.Error(1)
}

func (m *MockPaperAPI) CreatePaper(ctx context.Context, draft model.PaperDraft, authorUsername string) (model.Paper, error) {
	args := m.Called(ctx, draft, authorUsername)
	return args.Get(0).(model.Paper), args.Error(1)
}

func (m *MockPaperAPI) PapersByAuthor(ctx context.Context, username string) ([]model.Paper, error) {
	args := m.Called(ctx, username)
	return args.Get(0).([]model.Paper), args.Error(1)
}

func (m *MockPaperAPI) PublishPaper(ctx context.Context, id uuid.UUID, committeeUsername string) (model.Paper, error) {
	args := m.Called(ctx, id, committeeUsername)
	return args.Get(0).(model.Paper), args.Error(1)
}

func (m *MockPaperAPI) UnpublishedPapers(ctx context.Context) ([]model.Paper, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Paper), args.Error(1)
}

// newTestSession opens an in-memory session store, optionally pre-logged-in.
func newTestSession(t *testing.T, identity model.Identity) *session.Store {
	t.Helper()
	store, err := session.NewStore("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	if !identity.IsZero() {
		require.NoError(t, store.SetCurrentUser(identity, session.Credentials{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
		}))
	}
	return store
}

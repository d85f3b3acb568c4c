package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/paperdesk/paperdesk/internal/apierrors"
	"github.com/paperdesk/paperdesk/internal/model"
	"github.com/paperdesk/paperdesk/internal/testutil"
)

// MockPaperStore mocks the PaperStore interface
type MockPaperStore struct {
	mock.Mock
}

func (m *MockPaperStore) Create(ctx context.Context, paper model.Paper) (model.Paper, error) {
	args := m.Called(ctx, paper)
	return args.Get(0).(model.Paper), args.Error(1)
}

func (m *MockPaperStore) GetByID(ctx context.Context, id uuid.UUID) (model.Paper, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Paper), args.Error(1)
}

func (m *MockPaperStore) GetByAuthor(ctx context.Context, authorUsername string) ([]model.Paper, error) {
	args := m.Called(ctx, authorUsername)
	return args.Get(0).([]model.Paper), args.Error(1)
}

func (m *MockPaperStore) GetAll(ctx context.Context) ([]model.Paper, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Paper), args.Error(1)
}

func (m *MockPaperStore) GetByPublished(ctx context.Context, published bool) ([]model.Paper, error) {
	args := m.Called(ctx, published)
	return args.Get(0).([]model.Paper), args.Error(1)
}

func (m *MockPaperStore) Search(ctx context.Context, keyword string) ([]model.Paper, error) {
	args := m.Called(ctx, keyword)
	return args.Get(0).([]model.Paper), args.Error(1)
}

func (m *MockPaperStore) MarkPublished(ctx context.Context, id uuid.UUID, publishedBy string, publishedAt time.Time) (model.Paper, error) {
	args := m.Called(ctx, id, publishedBy, publishedAt)
	return args.Get(0).(model.Paper), args.Error(1)
}

func (m *MockPaperStore) SetManuscriptKey(ctx context.Context, id uuid.UUID, key string) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

// MockUserStore mocks the UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

// MockStorage mocks the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func authorUser(username string) model.User {
	return model.User{ID: uuid.New(), Username: username, Email: username + "@example.com", Role: model.RoleAuthor}
}

func committeeUser(username string) model.User {
	return model.User{ID: uuid.New(), Username: username, Email: username + "@example.com", Role: model.RoleCommittee}
}

func TestPaperService_CreatePaper(t *testing.T) {
	tests := []struct {
		name      string
		draft     model.PaperDraft
		author    string
		mockSetup func(*MockPaperStore, *MockUserStore)
		checkErr  func(*testing.T, error)
	}{
		{
			name:   "successful creation",
			draft:  model.PaperDraft{Title: "Graph Sparsification", Abstract: "We study cuts.", Content: "body", Tags: []string{"graphs"}},
			author: "alice",
			mockSetup: func(ps *MockPaperStore, us *MockUserStore) {
				us.On("GetByUsername", mock.Anything, "alice").Return(authorUser("alice"), nil)
				ps.On("Create", mock.Anything, mock.MatchedBy(func(p model.Paper) bool {
					return p.Title == "Graph Sparsification" && p.AuthorUsername == "alice" && !p.Published
				})).Return(model.Paper{ID: uuid.New(), Title: "Graph Sparsification", AuthorUsername: "alice"}, nil)
			},
			checkErr: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name:      "empty title rejected before any store call",
			draft:     model.PaperDraft{Title: "   ", Abstract: "abstract"},
			author:    "alice",
			mockSetup: func(ps *MockPaperStore, us *MockUserStore) {},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apierrors.IsValidation(err))
			},
		},
		{
			name:      "empty abstract rejected before any store call",
			draft:     model.PaperDraft{Title: "title", Abstract: ""},
			author:    "alice",
			mockSetup: func(ps *MockPaperStore, us *MockUserStore) {},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apierrors.IsValidation(err))
			},
		},
		{
			name:   "unknown author",
			draft:  model.PaperDraft{Title: "title", Abstract: "abstract"},
			author: "ghost",
			mockSetup: func(ps *MockPaperStore, us *MockUserStore) {
				us.On("GetByUsername", mock.Anything, "ghost").Return(model.User{}, model.ErrNotFound)
			},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apierrors.IsNotFound(err))
			},
		},
		{
			name:   "student cannot author papers",
			draft:  model.PaperDraft{Title: "title", Abstract: "abstract"},
			author: "stu",
			mockSetup: func(ps *MockPaperStore, us *MockUserStore) {
				us.On("GetByUsername", mock.Anything, "stu").Return(model.User{ID: uuid.New(), Username: "stu", Role: model.RoleStudent}, nil)
			},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apierrors.IsNotFound(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paperStore := &MockPaperStore{}
			userStore := &MockUserStore{}
			tt.mockSetup(paperStore, userStore)

			svc := NewPaper(paperStore, userStore, &MockStorage{}, testutil.MakeNoopLogger())
			_, err := svc.CreatePaper(context.Background(), tt.draft, tt.author)
			tt.checkErr(t, err)

			paperStore.AssertExpectations(t)
			userStore.AssertExpectations(t)
		})
	}
}

func TestPaperService_SearchPapers_EmptyKeywordListsAll(t *testing.T) {
	paperStore := &MockPaperStore{}
	all := []model.Paper{{ID: uuid.New(), Title: "a"}, {ID: uuid.New(), Title: "b"}}
	paperStore.On("GetAll", mock.Anything).Return(all, nil)

	svc := NewPaper(paperStore, &MockUserStore{}, &MockStorage{}, testutil.MakeNoopLogger())

	for _, keyword := range []string{"", "   ", "\t"} {
		papers, err := svc.SearchPapers(context.Background(), keyword)
		require.NoError(t, err)
		assert.Equal(t, all, papers)
	}
	paperStore.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestPaperService_SearchPapers_TrimsKeyword(t *testing.T) {
	paperStore := &MockPaperStore{}
	paperStore.On("Search", mock.Anything, "quantum").Return([]model.Paper{}, nil)

	svc := NewPaper(paperStore, &MockUserStore{}, &MockStorage{}, testutil.MakeNoopLogger())
	_, err := svc.SearchPapers(context.Background(), "  quantum  ")
	require.NoError(t, err)

	paperStore.AssertExpectations(t)
}

func TestPaperService_PublishPaper(t *testing.T) {
	paperID := uuid.New()

	tests := []struct {
		name      string
		committee string
		mockSetup func(*MockPaperStore, *MockUserStore)
		checkErr  func(*testing.T, error)
	}{
		{
			name:      "successful publish",
			committee: "carol",
			mockSetup: func(ps *MockPaperStore, us *MockUserStore) {
				us.On("GetByUsername", mock.Anything, "carol").Return(committeeUser("carol"), nil)
				ps.On("GetByID", mock.Anything, paperID).Return(model.Paper{ID: paperID, Title: "t"}, nil)
				ps.On("MarkPublished", mock.Anything, paperID, "carol", mock.AnythingOfType("time.Time")).
					Return(model.Paper{ID: paperID, Title: "t", Published: true, PublishedBy: "carol"}, nil)
			},
			checkErr: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name:      "paper not found",
			committee: "carol",
			mockSetup: func(ps *MockPaperStore, us *MockUserStore) {
				us.On("GetByUsername", mock.Anything, "carol").Return(committeeUser("carol"), nil)
				ps.On("GetByID", mock.Anything, paperID).Return(model.Paper{}, model.ErrNotFound)
			},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apierrors.IsNotFound(err))
			},
		},
		{
			name:      "already published",
			committee: "carol",
			mockSetup: func(ps *MockPaperStore, us *MockUserStore) {
				us.On("GetByUsername", mock.Anything, "carol").Return(committeeUser("carol"), nil)
				ps.On("GetByID", mock.Anything, paperID).Return(model.Paper{ID: paperID, Published: true, PublishedBy: "dave"}, nil)
			},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apierrors.IsAlreadyPublished(err))
			},
		},
		{
			name:      "lost race surfaces already published",
			committee: "carol",
			mockSetup: func(ps *MockPaperStore, us *MockUserStore) {
				us.On("GetByUsername", mock.Anything, "carol").Return(committeeUser("carol"), nil)
				ps.On("GetByID", mock.Anything, paperID).Return(model.Paper{ID: paperID}, nil)
				ps.On("MarkPublished", mock.Anything, paperID, "carol", mock.AnythingOfType("time.Time")).
					Return(model.Paper{}, model.ErrAlreadyPublished)
			},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apierrors.IsAlreadyPublished(err))
			},
		},
		{
			name:      "committee member not found",
			committee: "ghost",
			mockSetup: func(ps *MockPaperStore, us *MockUserStore) {
				us.On("GetByUsername", mock.Anything, "ghost").Return(model.User{}, model.ErrNotFound)
			},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apierrors.IsNotFound(err))
			},
		},
		{
			name:      "author cannot publish",
			committee: "alice",
			mockSetup: func(ps *MockPaperStore, us *MockUserStore) {
				us.On("GetByUsername", mock.Anything, "alice").Return(authorUser("alice"), nil)
			},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apierrors.IsNotFound(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paperStore := &MockPaperStore{}
			userStore := &MockUserStore{}
			tt.mockSetup(paperStore, userStore)

			svc := NewPaper(paperStore, userStore, &MockStorage{}, testutil.MakeNoopLogger())
			_, err := svc.PublishPaper(context.Background(), paperID, tt.committee)
			tt.checkErr(t, err)

			paperStore.AssertExpectations(t)
			userStore.AssertExpectations(t)
		})
	}
}

func TestPaperService_UploadManuscript(t *testing.T) {
	paperID := uuid.New()

	t.Run("successful upload records key", func(t *testing.T) {
		paperStore := &MockPaperStore{}
		storage := &MockStorage{}
		paperStore.On("GetByID", mock.Anything, paperID).Return(model.Paper{ID: paperID, AuthorUsername: "alice"}, nil)
		storage.On("Upload", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)
		paperStore.On("SetManuscriptKey", mock.Anything, paperID, mock.AnythingOfType("string")).Return(nil)

		svc := NewPaper(paperStore, &MockUserStore{}, storage, testutil.MakeNoopLogger())
		err := svc.UploadManuscript(context.Background(), paperID, bytesReader("pdf bytes"))
		require.NoError(t, err)

		paperStore.AssertExpectations(t)
		storage.AssertExpectations(t)
	})

	t.Run("failed key record deletes uploaded object", func(t *testing.T) {
		paperStore := &MockPaperStore{}
		storage := &MockStorage{}
		paperStore.On("GetByID", mock.Anything, paperID).Return(model.Paper{ID: paperID, AuthorUsername: "alice"}, nil)
		storage.On("Upload", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)
		paperStore.On("SetManuscriptKey", mock.Anything, paperID, mock.AnythingOfType("string")).Return(errors.New("db down"))
		storage.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

		svc := NewPaper(paperStore, &MockUserStore{}, storage, testutil.MakeNoopLogger())
		err := svc.UploadManuscript(context.Background(), paperID, bytesReader("pdf bytes"))
		assert.Error(t, err)

		storage.AssertExpectations(t)
	})

	t.Run("unknown paper", func(t *testing.T) {
		paperStore := &MockPaperStore{}
		paperStore.On("GetByID", mock.Anything, paperID).Return(model.Paper{}, model.ErrNotFound)

		svc := NewPaper(paperStore, &MockUserStore{}, &MockStorage{}, testutil.MakeNoopLogger())
		err := svc.UploadManuscript(context.Background(), paperID, bytesReader("x"))
		assert.True(t, apierrors.IsNotFound(err))
	})
}

func TestPaperService_DownloadManuscript_NoFile(t *testing.T) {
	paperID := uuid.New()
	paperStore := &MockPaperStore{}
	paperStore.On("GetByID", mock.Anything, paperID).Return(model.Paper{ID: paperID}, nil)

	svc := NewPaper(paperStore, &MockUserStore{}, &MockStorage{}, testutil.MakeNoopLogger())
	_, err := svc.DownloadManuscript(context.Background(), paperID)
	assert.True(t, apierrors.IsNotFound(err))
}

func bytesReader(s string) io.Reader {
	return strings.NewReader(s)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paperdesk/paperdesk/internal/apierrors"
	"github.com/paperdesk/paperdesk/internal/logger"
	"github.com/paperdesk/paperdesk/internal/model"
)

// Paper implements the paper lifecycle: creation by authors, role-filtered
// listings, keyword search, the single publish transition and manuscript
// file handling.
type Paper struct {
	paperStore model.PaperStore
	userStore  model.UserStore
	storage    model.Storage
	logger     *logger.Logger
}

func NewPaper(
	paperStore model.PaperStore,
	userStore model.UserStore,
	storage model.Storage,
	logger *logger.Logger,
) *Paper {
	return &Paper{
		paperStore: paperStore,
		userStore:  userStore,
		storage:    storage,
		logger:     logger,
	}
}

// CreatePaper validates the draft, resolves the author and stores the paper
// unpublished. The author must exist and hold the AUTHOR role.
func (s *Paper) CreatePaper(ctx context.Context, draft model.PaperDraft, authorUsername string) (model.Paper, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return model.Paper{}, apierrors.NewValidation("title is required")
	}
	if strings.TrimSpace(draft.Abstract) == "" {
		return model.Paper{}, apierrors.NewValidation("abstract is required")
	}

	author, err := s.userStore.GetByUsername(ctx, authorUsername)
	if errors.Is(err, model.ErrNotFound) {
		return model.Paper{}, apierrors.NewAuthorNotFound(authorUsername)
	}
	if err != nil {
		return model.Paper{}, fmt.Errorf("failed to get author: %w", err)
	}
	if author.Role != model.RoleAuthor {
		return model.Paper{}, apierrors.NewAuthorNotFound(authorUsername)
	}

	paper := model.Paper{
		ID:             uuid.New(),
		Title:          draft.Title,
		Abstract:       draft.Abstract,
		Content:        draft.Content,
		AuthorUsername: author.Username,
		Tags:           draft.Tags,
	}

	created, err := s.paperStore.Create(ctx, paper)
	if err != nil {
		return model.Paper{}, fmt.Errorf("failed to create paper: %w", err)
	}

	s.logger.Info("Paper service: paper created",
		"paper_id", created.ID,
		"title", created.Title,
		"author", created.AuthorUsername)

	return created, nil
}

// GetPapersByAuthor returns every paper owned by the author, published or not.
func (s *Paper) GetPapersByAuthor(ctx context.Context, authorUsername string) ([]model.Paper, error) {
	if _, err := s.userStore.GetByUsername(ctx, authorUsername); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, apierrors.NewAuthorNotFound(authorUsername)
		}
		return nil, fmt.Errorf("failed to get author: %w", err)
	}

	papers, err := s.paperStore.GetByAuthor(ctx, authorUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to get papers by author: %w", err)
	}
	return papers, nil
}

// GetAllPapers returns every paper regardless of status, newest first.
func (s *Paper) GetAllPapers(ctx context.Context) ([]model.Paper, error) {
	papers, err := s.paperStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all papers: %w", err)
	}
	return papers, nil
}

// GetUnpublishedPapers returns the committee's pending queue.
func (s *Paper) GetUnpublishedPapers(ctx context.Context) ([]model.Paper, error) {
	papers, err := s.paperStore.GetByPublished(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get unpublished papers: %w", err)
	}
	return papers, nil
}

// GetPublishedPapers returns only published papers.
func (s *Paper) GetPublishedPapers(ctx context.Context) ([]model.Paper, error) {
	papers, err := s.paperStore.GetByPublished(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get published papers: %w", err)
	}
	return papers, nil
}

// GetPaper returns a single paper by ID.
func (s *Paper) GetPaper(ctx context.Context, paperID uuid.UUID) (model.Paper, error) {
	paper, err := s.paperStore.GetByID(ctx, paperID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Paper{}, apierrors.NewPaperNotFound(paperID.String())
	}
	if err != nil {
		return model.Paper{}, fmt.Errorf("failed to get paper: %w", err)
	}
	return paper, nil
}

// SearchPapers matches the keyword case-insensitively against title,
// abstract and tags. An empty keyword lists everything.
func (s *Paper) SearchPapers(ctx context.Context, keyword string) ([]model.Paper, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.GetAllPapers(ctx)
	}

	papers, err := s.paperStore.Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("failed to search papers: %w", err)
	}
	return papers, nil
}

// PublishPaper moves a paper from unpublished to published exactly once,
// recording the committee member who published it.
func (s *Paper) PublishPaper(ctx context.Context, paperID uuid.UUID, committeeUsername string) (model.Paper, error) {
	committee, err := s.userStore.GetByUsername(ctx, committeeUsername)
	if errors.Is(err, model.ErrNotFound) {
		return model.Paper{}, apierrors.NewCommitteeNotFound(committeeUsername)
	}
	if err != nil {
		return model.Paper{}, fmt.Errorf("failed to get committee member: %w", err)
	}
	if committee.Role != model.RoleCommittee {
		return model.Paper{}, apierrors.NewCommitteeNotFound(committeeUsername)
	}

	paper, err := s.paperStore.GetByID(ctx, paperID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Paper{}, apierrors.NewPaperNotFound(paperID.String())
	}
	if err != nil {
		return model.Paper{}, fmt.Errorf("failed to get paper: %w", err)
	}
	if paper.Published {
		return model.Paper{}, apierrors.NewAlreadyPublished(paperID.String())
	}

	published, err := s.paperStore.MarkPublished(ctx, paperID, committee.Username, time.Now())
	if err != nil {
		// The publish transition is guarded in SQL as well; a lost race
		// surfaces as the same already-published error.
		if errors.Is(err, model.ErrAlreadyPublished) {
			return model.Paper{}, apierrors.NewAlreadyPublished(paperID.String())
		}
		if errors.Is(err, model.ErrNotFound) {
			return model.Paper{}, apierrors.NewPaperNotFound(paperID.String())
		}
		return model.Paper{}, fmt.Errorf("failed to publish paper: %w", err)
	}

	s.logger.Info("Paper service: paper published",
		"paper_id", published.ID,
		"title", published.Title,
		"published_by", committee.Username)

	return published, nil
}

// UploadManuscript stores the manuscript file for a paper and records its
// object key.
func (s *Paper) UploadManuscript(ctx context.Context, paperID uuid.UUID, reader io.Reader) error {
	paper, err := s.paperStore.GetByID(ctx, paperID)
	if errors.Is(err, model.ErrNotFound) {
		return apierrors.NewPaperNotFound(paperID.String())
	}
	if err != nil {
		return fmt.Errorf("failed to get paper: %w", err)
	}

	key := manuscriptKey(paper)
	if err := s.storage.Upload(ctx, key, reader); err != nil {
		return fmt.Errorf("failed to upload manuscript: %w", err)
	}

	if err := s.paperStore.SetManuscriptKey(ctx, paperID, key); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Error("Paper service: failed to delete orphaned manuscript",
				"key", key,
				"error", delErr.Error())
		}
		return fmt.Errorf("failed to record manuscript key: %w", err)
	}

	s.logger.Info("Paper service: manuscript uploaded",
		"paper_id", paperID,
		"key", key)

	return nil
}

// DownloadManuscript streams the manuscript file of a paper.
func (s *Paper) DownloadManuscript(ctx context.Context, paperID uuid.UUID) (io.ReadCloser, error) {
	paper, err := s.paperStore.GetByID(ctx, paperID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apierrors.NewPaperNotFound(paperID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}
	if paper.ManuscriptKey == "" {
		return nil, apierrors.New(http.StatusNotFound, apierrors.CodeNotFound, fmt.Sprintf("paper %s has no manuscript", paperID))
	}

	reader, err := s.storage.Download(ctx, paper.ManuscriptKey)
	if err != nil {
		return nil, fmt.Errorf("failed to download manuscript: %w", err)
	}
	return reader, nil
}

func manuscriptKey(paper model.Paper) string {
	return fmt.Sprintf("author-%s/paper-%s/manuscript-%s", paper.AuthorUsername, paper.ID, uuid.New())
}

package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/paperdesk/paperdesk/internal/apierrors"
	"github.com/paperdesk/paperdesk/internal/logger"
	"github.com/paperdesk/paperdesk/internal/model"
	"github.com/paperdesk/paperdesk/internal/policy"
)

// ErrSubmissionInFlight is returned when a draft is submitted while an
// earlier submission has not finished.
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// PaperAPI is the slice of the API client the dashboards need.
type PaperAPI interface {
	AllPapers(ctx context.Context) ([]model.Paper, error)
	SearchPapers(ctx context.Context, keyword string) ([]model.Paper, error)
	CreatePaper(ctx context.Context, draft model.PaperDraft, authorUsername string) (model.Paper, error)
	PapersByAuthor(ctx context.Context, username string) ([]model.Paper, error)
	PublishPaper(ctx context.Context, id uuid.UUID, committeeUsername string) (model.Paper, error)
	UnpublishedPapers(ctx context.Context) ([]model.Paper, error)
}

// AuthorDashboard drives the author's screen: their own papers plus draft
// submission.
type AuthorDashboard struct {
	api     PaperAPI
	session SessionStore
	logger  *logger.Logger

	mu         sync.Mutex
	submitting bool
	papers     []model.Paper
}

// NewAuthorDashboard creates the author dashboard flow.
func NewAuthorDashboard(api PaperAPI, session SessionStore, logger *logger.Logger) *AuthorDashboard {
	return &AuthorDashboard{api: api, session: session, logger: logger}
}

// Refresh reloads the author's papers from the server.
func (d *AuthorDashboard) Refresh(ctx context.Context) ([]model.Paper, error) {
	identity := d.session.CurrentUser()
	if identity.IsZero() {
		return nil, apierrors.NewMissingAuthorizationToken()
	}

	papers, err := d.api.PapersByAuthor(ctx, identity.Username)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.papers = papers
	d.mu.Unlock()
	return papers, nil
}

// Papers returns the last loaded list.
func (d *AuthorDashboard) Papers() []model.Paper {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.papers
}

// SubmitDraft validates the draft locally, submits it and reloads the
// author's list so the new paper shows up immediately. Only one submission
// may be in flight at a time.
func (d *AuthorDashboard) SubmitDraft(ctx context.Context, title, abstract, content, rawTags string) (model.Paper, error) {
	title = strings.TrimSpace(title)
	abstract = strings.TrimSpace(abstract)
	if title == "" {
		return model.Paper{}, apierrors.NewValidation("title is required")
	}
	if abstract == "" {
		return model.Paper{}, apierrors.NewValidation("abstract is required")
	}

	identity := d.session.CurrentUser()
	if identity.IsZero() {
		return model.Paper{}, apierrors.NewMissingAuthorizationToken()
	}
	if !policy.CanPerform(identity.Role, policy.CapCreatePaper) {
		return model.Paper{}, apierrors.NewForbidden(string(policy.CapCreatePaper))
	}

	d.mu.Lock()
	if d.submitting {
		d.mu.Unlock()
		return model.Paper{}, ErrSubmissionInFlight
	}
	d.submitting = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.submitting = false
		d.mu.Unlock()
	}()

	draft := model.PaperDraft{
		Title:    title,
		Abstract: abstract,
		Content:  content,
		Tags:     model.ParseTags(rawTags),
	}

	paper, err := d.api.CreatePaper(ctx, draft, identity.Username)
	if err != nil {
		return model.Paper{}, err
	}

	d.logger.Info("draft submitted", "paper_id", paper.ID, "title", paper.Title)

	if _, err := d.Refresh(ctx); err != nil {
		// The paper was created; a failed reload should not look like a
		// failed submission.
		d.logger.Debug("reload after submission failed", "error", err.Error())
	}

	return paper, nil
}

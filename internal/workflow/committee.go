package workflow

import (
	"context"

	"github.com/google/uuid"

	"github.com/paperdesk/paperdesk/internal/apierrors"
	"github.com/paperdesk/paperdesk/internal/logger"
	"github.com/paperdesk/paperdesk/internal/model"
	"github.com/paperdesk/paperdesk/internal/policy"
)

// ConfirmFunc asks the user to confirm an action. Returning false cancels
// it.
type ConfirmFunc func(prompt string) bool

// CommitteeDashboard drives the committee screen: the pending queue next to
// the full list, and the publish action.
type CommitteeDashboard struct {
	api     PaperAPI
	session SessionStore
	logger  *logger.Logger

	pending []model.Paper
	all     []model.Paper
}

// NewCommitteeDashboard creates the committee dashboard flow.
func NewCommitteeDashboard(api PaperAPI, session SessionStore, logger *logger.Logger) *CommitteeDashboard {
	return &CommitteeDashboard{api: api, session: session, logger: logger}
}

// Refresh reloads the pending queue and the full list together, so the two
// panels never show states from different moments.
func (d *CommitteeDashboard) Refresh(ctx context.Context) error {
	pending, err := d.api.UnpublishedPapers(ctx)
	if err != nil {
		return err
	}
	all, err := d.api.AllPapers(ctx)
	if err != nil {
		return err
	}

	d.pending = pending
	d.all = all
	return nil
}

// Pending returns the last loaded pending queue.
func (d *CommitteeDashboard) Pending() []model.Paper {
	return d.pending
}

// All returns the last loaded full list.
func (d *CommitteeDashboard) All() []model.Paper {
	return d.all
}

// Publish marks a paper as published after explicit confirmation, then
// refreshes both lists. A declined confirmation is not an error; the zero
// paper signals nothing happened.
func (d *CommitteeDashboard) Publish(ctx context.Context, paperID uuid.UUID, confirm ConfirmFunc) (model.Paper, error) {
	identity := d.session.CurrentUser()
	if identity.IsZero() {
		return model.Paper{}, apierrors.NewMissingAuthorizationToken()
	}
	if !policy.CanPerform(identity.Role, policy.CapPublishPaper) {
		return model.Paper{}, apierrors.NewForbidden(string(policy.CapPublishPaper))
	}

	if confirm != nil && !confirm("Publish this paper?") {
		return model.Paper{}, nil
	}

	paper, err := d.api.PublishPaper(ctx, paperID, identity.Username)
	if err != nil {
		return model.Paper{}, err
	}

	d.logger.Info("paper published", "paper_id", paper.ID, "committee", identity.Username)

	if err := d.Refresh(ctx); err != nil {
		d.logger.Debug("refresh after publish failed", "error", err.Error())
	}

	return paper, nil
}

package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paperdesk/paperdesk/internal/api/http/reqctx"
	"github.com/paperdesk/paperdesk/internal/apierrors"
	"github.com/paperdesk/paperdesk/internal/logger"
	"github.com/paperdesk/paperdesk/internal/model"
	"github.com/paperdesk/paperdesk/internal/policy"
)

// PaperService defines paper lifecycle operations.
type PaperService interface {
	CreatePaper(ctx context.Context, draft model.PaperDraft, authorUsername string) (model.Paper, error)
	GetPaper(ctx context.Context, paperID uuid.UUID) (model.Paper, error)
	GetPapersByAuthor(ctx context.Context, authorUsername string) ([]model.Paper, error)
	GetAllPapers(ctx context.Context) ([]model.Paper, error)
	GetUnpublishedPapers(ctx context.Context) ([]model.Paper, error)
	GetPublishedPapers(ctx context.Context) ([]model.Paper, error)
	SearchPapers(ctx context.Context, keyword string) ([]model.Paper, error)
	PublishPaper(ctx context.Context, paperID uuid.UUID, committeeUsername string) (model.Paper, error)
	UploadManuscript(ctx context.Context, paperID uuid.UUID, reader io.Reader) error
	DownloadManuscript(ctx context.Context, paperID uuid.UUID) (io.ReadCloser, error)
}

// Paper handles the paper endpoints. Every route sits behind the
// authentication middleware; role checks happen here against the policy
// tables, so client-side checks are advisory only.
type Paper struct {
	paperService PaperService
	logger       *logger.Logger
}

// NewPaper creates a new Paper handler.
func NewPaper(paperService PaperService, logger *logger.Logger) *Paper {
	return &Paper{
		paperService: paperService,
		logger:       logger,
	}
}

// identity pulls the authenticated identity from the request. The
// authentication middleware guarantees it is present; a missing identity
// means the route was wired without the middleware.
func (h *Paper) identity(c *gin.Context) (model.Identity, bool) {
	identity, ok := reqctx.IdentityFrom(c.Request.Context())
	if !ok {
		writeError(c, apierrors.NewMissingAuthorizationToken())
		return model.Identity{}, false
	}
	return identity, true
}

func (h *Paper) requireCapability(c *gin.Context, capability policy.Capability) (model.Identity, bool) {
	identity, ok := h.identity(c)
	if !ok {
		return model.Identity{}, false
	}
	if !policy.CanPerform(identity.Role, capability) {
		writeError(c, apierrors.NewForbidden(string(capability)))
		return model.Identity{}, false
	}
	return identity, true
}

func paperID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, apierrors.NewValidation("invalid paper id"))
		return uuid.Nil, false
	}
	return id, true
}

// All returns every paper regardless of status.
func (h *Paper) All(c *gin.Context) {
	if _, ok := h.requireCapability(c, policy.CapViewAllPapers); !ok {
		return
	}

	papers, err := h.paperService.GetAllPapers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, papers)
}

// Search filters papers by keyword. An empty keyword returns everything.
func (h *Paper) Search(c *gin.Context) {
	if _, ok := h.requireCapability(c, policy.CapSearchPapers); !ok {
		return
	}

	papers, err := h.paperService.SearchPapers(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, papers)
}

// Create submits a new paper. The authorUsername query parameter must match
// the authenticated caller.
func (h *Paper) Create(c *gin.Context) {
	identity, ok := h.requireCapability(c, policy.CapCreatePaper)
	if !ok {
		return
	}

	authorUsername := c.Query("authorUsername")
	if authorUsername == "" {
		authorUsername = identity.Username
	}
	if authorUsername != identity.Username {
		writeError(c, apierrors.NewForbidden("submit papers for another author"))
		return
	}

	var draft model.PaperDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		writeError(c, apierrors.NewValidation("invalid request body"))
		return
	}

	paper, err := h.paperService.CreatePaper(c.Request.Context(), draft, authorUsername)
	if err != nil {
		h.logger.Error("Paper handler: create failed",
			"author", authorUsername,
			"error", err.Error())
		writeError(c, err)
		return
	}

	h.logger.Info("Paper handler: paper created",
		"paper_id", paper.ID,
		"author", authorUsername)

	c.JSON(http.StatusCreated, paper)
}

// ByAuthor returns the papers submitted by one author.
func (h *Paper) ByAuthor(c *gin.Context) {
	if _, ok := h.requireCapability(c, policy.CapViewAllPapers); !ok {
		return
	}

	papers, err := h.paperService.GetPapersByAuthor(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, papers)
}

// Publish marks a paper as published. The committeeUsername query parameter
// must match the authenticated caller.
func (h *Paper) Publish(c *gin.Context) {
	identity, ok := h.requireCapability(c, policy.CapPublishPaper)
	if !ok {
		return
	}

	id, ok := paperID(c)
	if !ok {
		return
	}

	committeeUsername := c.Query("committeeUsername")
	if committeeUsername == "" {
		committeeUsername = identity.Username
	}
	if committeeUsername != identity.Username {
		writeError(c, apierrors.NewForbidden("publish papers as another committee member"))
		return
	}

	paper, err := h.paperService.PublishPaper(c.Request.Context(), id, committeeUsername)
	if err != nil {
		h.logger.Error("Paper handler: publish failed",
			"paper_id", id,
			"committee", committeeUsername,
			"error", err.Error())
		writeError(c, err)
		return
	}

	h.logger.Info("Paper handler: paper published",
		"paper_id", paper.ID,
		"committee", committeeUsername)

	c.JSON(http.StatusOK, paper)
}

// Unpublished returns the pending queue for committee review.
func (h *Paper) Unpublished(c *gin.Context) {
	if _, ok := h.requireCapability(c, policy.CapPublishPaper); !ok {
		return
	}

	papers, err := h.paperService.GetUnpublishedPapers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, papers)
}

// Published returns only published papers.
func (h *Paper) Published(c *gin.Context) {
	if _, ok := h.requireCapability(c, policy.CapViewAllPapers); !ok {
		return
	}

	papers, err := h.paperService.GetPublishedPapers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, papers)
}

// UploadManuscript stores the manuscript file for one of the caller's own
// papers.
func (h *Paper) UploadManuscript(c *gin.Context) {
	identity, ok := h.requireCapability(c, policy.CapCreatePaper)
	if !ok {
		return
	}

	id, ok := paperID(c)
	if !ok {
		return
	}

	paper, err := h.paperService.GetPaper(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if paper.AuthorUsername != identity.Username {
		writeError(c, apierrors.NewForbidden("upload manuscripts for another author"))
		return
	}

	if err := h.paperService.UploadManuscript(c.Request.Context(), id, c.Request.Body); err != nil {
		h.logger.Error("Paper handler: manuscript upload failed",
			"paper_id", id,
			"error", err.Error())
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DownloadManuscript streams a stored manuscript back to the caller.
func (h *Paper) DownloadManuscript(c *gin.Context) {
	if _, ok := h.requireCapability(c, policy.CapViewAllPapers); !ok {
		return
	}

	id, ok := paperID(c)
	if !ok {
		return
	}

	reader, err := h.paperService.DownloadManuscript(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.logger.Error("Paper handler: manuscript stream interrupted",
			"paper_id", id,
			"error", err.Error())
	}
}

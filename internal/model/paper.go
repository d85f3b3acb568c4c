package model

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaperStore defines persistence operations for papers.
type PaperStore interface {
	Create(ctx context.Context, paper Paper) (Paper, error)
	GetByID(ctx context.Context, id uuid.UUID) (Paper, error)
	GetByAuthor(ctx context.Context, authorUsername string) ([]Paper, error)
	GetAll(ctx context.Context) ([]Paper, error)
	GetByPublished(ctx context.Context, published bool) ([]Paper, error)
	Search(ctx context.Context, keyword string) ([]Paper, error)
	MarkPublished(ctx context.Context, id uuid.UUID, publishedBy string, publishedAt time.Time) (Paper, error)
	SetManuscriptKey(ctx context.Context, id uuid.UUID, key string) error
}

// Paper represents a submitted paper. The store assigns ID and CreatedAt;
// AuthorUsername is fixed at creation. Published and PublishedBy move
// together: a paper is published iff PublishedBy is set, and the transition
// happens at most once.
type Paper struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Abstract       string     `json:"abstract"`
	Content        string     `json:"content,omitempty"`
	AuthorUsername string     `json:"authorUsername"`
	Tags           []string   `json:"tags,omitempty"`
	Published      bool       `json:"published"`
	PublishedBy    string     `json:"publishedBy,omitempty"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty"`
	ManuscriptKey  string     `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"-"`
}

// PaperDraft carries the author-supplied fields of a new paper.
type PaperDraft struct {
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
}

// ParseTags splits a raw comma-separated tag string into trimmed tags,
// dropping empty results. Order is preserved and duplicates are kept.
func ParseTags(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

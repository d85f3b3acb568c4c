package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/paperdesk/paperdesk/internal/model"
)

var _ model.PaperStore = (*PaperRepository)(nil)

type PaperRepository struct {
	db *Connection
}

func NewPaperRepository(db *Connection) *PaperRepository {
	return &PaperRepository{
		db: db,
	}
}

const paperColumns = `id, title, abstract, content, author_username, tags, published, published_by, published_at, manuscript_key, created_at, updated_at`

func (r *PaperRepository) Create(ctx context.Context, paper model.Paper) (model.Paper, error) {
	query := `
		INSERT INTO papers (id, title, abstract, content, author_username, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + paperColumns

	row := r.db.QueryRow(ctx, query,
		paper.ID, paper.Title, paper.Abstract, paper.Content, paper.AuthorUsername, paper.Tags,
	)
	saved, err := scanPaper(row)
	if err != nil {
		return model.Paper{}, fmt.Errorf("failed to create paper: %w", err)
	}

	return saved, nil
}

func (r *PaperRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Paper, error) {
	query := `SELECT ` + paperColumns + ` FROM papers WHERE id = $1`

	paper, err := scanPaper(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Paper{}, model.ErrNotFound
		}
		return model.Paper{}, err
	}

	return paper, nil
}

func (r *PaperRepository) GetByAuthor(ctx context.Context, authorUsername string) ([]model.Paper, error) {
	query := `SELECT ` + paperColumns + ` FROM papers WHERE author_username = $1 ORDER BY created_at DESC`
	return r.getMany(ctx, query, authorUsername)
}

func (r *PaperRepository) GetAll(ctx context.Context) ([]model.Paper, error) {
	query := `SELECT ` + paperColumns + ` FROM papers ORDER BY created_at DESC`
	return r.getMany(ctx, query)
}

func (r *PaperRepository) GetByPublished(ctx context.Context, published bool) ([]model.Paper, error) {
	query := `SELECT ` + paperColumns + ` FROM papers WHERE published = $1 ORDER BY created_at DESC`
	return r.getMany(ctx, query, published)
}

func (r *PaperRepository) Search(ctx context.Context, keyword string) ([]model.Paper, error) {
	query := `
		SELECT ` + paperColumns + `
		FROM papers
		WHERE title ILIKE '%' || $1 || '%'
		   OR abstract ILIKE '%' || $1 || '%'
		   OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC`
	return r.getMany(ctx, query, keyword)
}

// MarkPublished flips the published flag exactly once; the WHERE clause makes
// a concurrent second publish lose cleanly.
func (r *PaperRepository) MarkPublished(ctx context.Context, id uuid.UUID, publishedBy string, publishedAt time.Time) (model.Paper, error) {
	query := `
		UPDATE papers
		SET published = TRUE, published_by = $2, published_at = $3, updated_at = NOW()
		WHERE id = $1 AND NOT published
		RETURNING ` + paperColumns

	paper, err := scanPaper(r.db.QueryRow(ctx, query, id, publishedBy, publishedAt))
	if err == nil {
		return paper, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Paper{}, fmt.Errorf("failed to mark paper published: %w", err)
	}

	// No row updated: either the paper does not exist or it is already
	// published.
	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return model.Paper{}, getErr
	}
	if existing.Published {
		return model.Paper{}, model.ErrAlreadyPublished
	}
	return model.Paper{}, model.ErrNotFound
}

func (r *PaperRepository) SetManuscriptKey(ctx context.Context, id uuid.UUID, key string) error {
	const query = `UPDATE papers SET manuscript_key = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id, key)
	if err != nil {
		return fmt.Errorf("failed to set manuscript key: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *PaperRepository) getMany(ctx context.Context, query string, args ...any) ([]model.Paper, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var papers []model.Paper
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, paper)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return papers, nil
}

func scanPaper(row pgx.Row) (model.Paper, error) {
	var (
		paper       model.Paper
		publishedBy *string
	)
	err := row.Scan(
		&paper.ID, &paper.Title, &paper.Abstract, &paper.Content, &paper.AuthorUsername,
		&paper.Tags, &paper.Published, &publishedBy, &paper.PublishedAt, &paper.ManuscriptKey,
		&paper.CreatedAt, &paper.UpdatedAt,
	)
	if err != nil {
		return model.Paper{}, err
	}
	if publishedBy != nil {
		paper.PublishedBy = *publishedBy
	}
	return paper, nil
}

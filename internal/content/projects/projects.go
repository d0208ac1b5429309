// Package projects manages the public portfolio entries.
package projects

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-cms/lumina-cms/internal/shared"
)

// Project is a portfolio entry shown on the public site.
type Project struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Client      string    `json:"client"`
	Year        int       `json:"year"`
	ImagePath   string    `json:"image_path"`
	Published   bool      `json:"published"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `id, title, slug, description, client, year, image_path, published, created_by, created_at, updated_at`

func scan(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.Client, &p.Year,
		&p.ImagePath, &p.Published, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns projects, optionally restricted to published ones.
func (r *Repository) List(ctx context.Context, publishedOnly bool) ([]Project, error) {
	query := `SELECT ` + columns + ` FROM projects`
	if publishedOnly {
		query += ` WHERE published`
	}
	query += ` ORDER BY year DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Project
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// GetBySlug fetches one published project for the public detail page.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (Project, error) {
	p, err := scan(r.pool.QueryRow(ctx,
		`SELECT `+columns+` FROM projects WHERE slug = $1 AND published`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, shared.ErrNotFound
	}
	return p, err
}

// Create inserts a project. Slugs are unique; duplicates conflict.
func (r *Repository) Create(ctx context.Context, p Project) (Project, error) {
	created, err := scan(r.pool.QueryRow(ctx, `
		INSERT INTO projects (title, slug, description, client, year, image_path, published, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING `+columns,
		p.Title, p.Slug, p.Description, p.Client, p.Year, p.ImagePath, p.Published, p.CreatedBy))
	if err != nil {
		return Project{}, classify(err)
	}
	return created, nil
}

// Update modifies an existing project.
func (r *Repository) Update(ctx context.Context, p Project) (Project, error) {
	updated, err := scan(r.pool.QueryRow(ctx, `
		UPDATE projects SET title = $2, slug = $3, description = $4, client = $5, year = $6,
			image_path = $7, published = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+columns,
		p.ID, p.Title, p.Slug, p.Description, p.Client, p.Year, p.ImagePath, p.Published))
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, shared.ErrNotFound
	}
	if err != nil {
		return Project{}, classify(err)
	}
	return updated, nil
}

// Delete removes a project.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrConflict
	}
	return err
}

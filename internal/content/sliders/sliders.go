// Package sliders manages the homepage slider entries.
package sliders

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-cms/lumina-cms/internal/shared"
)

// Slider is a homepage carousel entry.
type Slider struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	ImagePath string    `json:"image_path"`
	SortOrder int       `json:"sort_order"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `id, title, subtitle, image_path, sort_order, created_by, created_at, updated_at`

// List returns all sliders in display order.
func (r *Repository) List(ctx context.Context) ([]Slider, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM sliders ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Slider
	for rows.Next() {
		var s Slider
		if err := rows.Scan(&s.ID, &s.Title, &s.Subtitle, &s.ImagePath, &s.SortOrder, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Create inserts a slider stamped with the author.
func (r *Repository) Create(ctx context.Context, s Slider) (Slider, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sliders (title, subtitle, image_path, sort_order, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING `+columns,
		s.Title, s.Subtitle, s.ImagePath, s.SortOrder, s.CreatedBy,
	).Scan(&s.ID, &s.Title, &s.Subtitle, &s.ImagePath, &s.SortOrder, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Update modifies an existing slider.
func (r *Repository) Update(ctx context.Context, s Slider) (Slider, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE sliders SET title = $2, subtitle = $3, image_path = $4, sort_order = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+columns,
		s.ID, s.Title, s.Subtitle, s.ImagePath, s.SortOrder,
	).Scan(&s.ID, &s.Title, &s.Subtitle, &s.ImagePath, &s.SortOrder, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Slider{}, shared.ErrNotFound
	}
	return s, err
}

// Delete removes a slider.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sliders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

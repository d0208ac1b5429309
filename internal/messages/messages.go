// Package messages handles contact-message intake and management.
package messages

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-cms/lumina-cms/internal/shared"
)

// Message is an inbound contact-form submission.
type Message struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// RepositoryPort defines data access methods for messages.
type RepositoryPort interface {
	Insert(ctx context.Context, m Message) (Message, error)
	List(ctx context.Context) ([]Message, error)
	Get(ctx context.Context, id int64) (Message, error)
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `id, name, email, subject, body, created_at`

// Insert stores a new message.
func (r *Repository) Insert(ctx context.Context, m Message) (Message, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, subject, body, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING `+columns,
		m.Name, m.Email, m.Subject, m.Body,
	).Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.CreatedAt)
	return m, err
}

// List returns all messages, newest first.
func (r *Repository) List(ctx context.Context) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM contact_messages ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Get fetches one message.
func (r *Repository) Get(ctx context.Context, id int64) (Message, error) {
	var m Message
	err := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM contact_messages WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Message{}, shared.ErrNotFound
	}
	return m, err
}

// Delete removes a message.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)

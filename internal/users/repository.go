package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-cms/lumina-cms/internal/platform/db"
	"github.com/lumina-cms/lumina-cms/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, name, email, passwordHash string) (*User, error)
	Update(ctx context.Context, id int64, name, email, avatar string) (*User, error)
	SetActive(ctx context.Context, id int64, active bool) error
	DeleteCascade(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, name, email, is_active, COALESCE(avatar, ''), created_at, updated_at`

// List returns all users.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.IsActive, &user.Avatar, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, user)
	}
	return list, rows.Err()
}

// Get fetches one user by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*User, error) {
	user := &User{}
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.IsActive, &user.Avatar, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create inserts a new active user.
func (r *Repository) Create(ctx context.Context, name, email, passwordHash string) (*User, error) {
	user := &User{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, true, now(), now())
		RETURNING `+userColumns,
		name, email, passwordHash,
	).Scan(&user.ID, &user.Name, &user.Email, &user.IsActive, &user.Avatar, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return user, nil
}

// Update modifies profile fields of an existing user.
func (r *Repository) Update(ctx context.Context, id int64, name, email, avatar string) (*User, error) {
	user := &User{}
	err := r.pool.QueryRow(ctx, `
		UPDATE users SET name = $2, email = $3, avatar = NULLIF($4, ''), updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, name, email, avatar,
	).Scan(&user.ID, &user.Name, &user.Email, &user.IsActive, &user.Avatar, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, classify(err)
	}
	return user, nil
}

// SetActive toggles account status. Deactivation takes effect on the next
// authorization check once the cached principal is invalidated.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteCascade removes the user, its role links and its authored content in
// one transaction. The cascade is deliberate application logic, not a
// foreign-key ON DELETE.
func (r *Repository) DeleteCascade(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return err
		}
		for _, table := range []string{"sliders", "projects", "services", "gallery_items", "offices", "team_members"} {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE created_by = $1`, id); err != nil {
				return err
			}
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrConflict
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)

package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-cms/lumina-cms/internal/platform/db"
	"github.com/lumina-cms/lumina-cms/internal/shared"
)

// Invalidator evicts cached principals after a graph write. Satisfied by
// authz.CachedStore; a nil Invalidator is a no-op.
type Invalidator interface {
	Invalidate(ctx context.Context, userIDs ...int64)
}

// Service orchestrates role and permission management: every write to the
// role-permission-user graph goes through here.
type Service struct {
	pool        *pgxpool.Pool
	invalidator Invalidator
}

// NewService constructs a Service backed by the provided pool.
func NewService(pool *pgxpool.Pool, invalidator Invalidator) *Service {
	return &Service{pool: pool, invalidator: invalidator}
}

// ListRoles returns all roles ordered by name.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, created_at, updated_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetRole fetches a role by ID, including its assigned permission names.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, []string, error) {
	var role Role
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at, updated_at FROM roles WHERE id = $1`, id,
	).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, nil, shared.ErrNotFound
		}
		return Role{}, nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT p.name FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1 ORDER BY p.name`, id)
	if err != nil {
		return Role{}, nil, err
	}
	defer rows.Close()
	var perms []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return Role{}, nil, err
		}
		perms = append(perms, name)
	}
	return role, perms, rows.Err()
}

// CreateRole inserts a new role. Duplicate names conflict.
func (s *Service) CreateRole(ctx context.Context, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name required", shared.ErrConflict)
	}
	var role Role
	err := s.pool.QueryRow(ctx, `
		INSERT INTO roles (name, description, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		RETURNING id, name, description, created_at, updated_at`,
		name, strings.TrimSpace(description),
	).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return Role{}, classifyPgError(err)
	}
	return role, nil
}

// UpdateRole updates name and description of an existing role.
func (s *Service) UpdateRole(ctx context.Context, id int64, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name required", shared.ErrConflict)
	}
	var role Role
	err := s.pool.QueryRow(ctx, `
		UPDATE roles SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, name, description, created_at, updated_at`,
		id, name, strings.TrimSpace(description),
	).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, classifyPgError(err)
	}
	return role, nil
}

// DeleteRole removes a role along with its permission and user links, in one
// transaction, and invalidates every affected user's cached principal.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	var affected []int64
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return err
		}
		// RETURNING collects the affected users inside the transaction, so
		// an assignment racing the delete cannot escape invalidation.
		rows, err := tx.Query(ctx, `DELETE FROM user_roles WHERE role_id = $1 RETURNING user_id`, id)
		if err != nil {
			return err
		}
		affected, err = collectIDs(rows)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, affected...)
	return nil
}

// ListPermissions returns the full permission registry ordered by name.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description FROM permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.Description); err != nil {
			return nil, err
		}
		perm.Title = PermissionTitle(perm.Name)
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}

// SyncRegistry upserts the closed permission registry into storage. Run at
// startup so role editors always see the full set.
func (s *Service) SyncRegistry(ctx context.Context) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		for _, name := range shared.AllPermissions() {
			if _, err := tx.Exec(ctx, `
				INSERT INTO permissions (name, description)
				VALUES ($1, $2)
				ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description`,
				name, PermissionTitle(name)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplacePermissions atomically replaces a role's permission set. Delete and
// reinsert happen in one transaction so a concurrent authorization read never
// observes the role with partial permissions.
func (s *Service) ReplacePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	var affected []int64
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`, roleID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return shared.ErrNotFound
		}
		rows, err := tx.Query(ctx, `SELECT user_id FROM user_roles WHERE role_id = $1`, roleID)
		if err != nil {
			return err
		}
		affected, err = collectIDs(rows)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return err
		}
		for _, permID := range dedupeIDs(permissionIDs) {
			if _, err := tx.Exec(ctx,
				`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`,
				roleID, permID); err != nil {
				return classifyPgError(err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, affected...)
	return nil
}

// AssignRole links a role to a user. Assigning the same pair twice is a
// conflict, not an upsert.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`,
		userID, roleID)
	if err != nil {
		return classifyPgError(err)
	}
	s.invalidate(ctx, userID)
	return nil
}

// RemoveRole unlinks a role from a user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	s.invalidate(ctx, userID)
	return nil
}

func collectIDs(rows pgx.Rows) ([]int64, error) {
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Service) invalidate(ctx context.Context, userIDs ...int64) {
	if s.invalidator != nil && len(userIDs) > 0 {
		s.invalidator.Invalidate(ctx, userIDs...)
	}
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// PostgreSQL error codes surfaced as domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", shared.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", shared.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPrincipalNotFound indicates the token referenced a user that no longer
// exists. It maps to a 401 deny, not a fault.
var ErrPrincipalNotFound = errors.New("authz: principal not found")

// Store resolves a user ID into a Principal. Implemented by Resolver and by
// the caching wrapper around it.
type Store interface {
	Resolve(ctx context.Context, userID int64) (*Principal, error)
}

// Resolver loads the user → roles → permissions graph from PostgreSQL.
type Resolver struct {
	pool *pgxpool.Pool
}

// NewResolver constructs a Resolver backed by the provided pool.
func NewResolver(pool *pgxpool.Pool) *Resolver {
	return &Resolver{pool: pool}
}

// Resolve loads the full authorization graph for a user. Any error other than
// ErrPrincipalNotFound is a store fault and must surface as such, never as a
// deny.
func (r *Resolver) Resolve(ctx context.Context, userID int64) (*Principal, error) {
	principal := &Principal{UserID: userID}
	err := r.pool.QueryRow(ctx,
		`SELECT name, email, is_active FROM users WHERE id = $1`, userID,
	).Scan(&principal.Name, &principal.Email, &principal.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("authz: load user: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.name, COALESCE(p.name, '')
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		LEFT JOIN role_permissions rp ON rp.role_id = r.id
		LEFT JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1
		ORDER BY r.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("authz: load roles: %w", err)
	}
	defer rows.Close()

	var current *Role
	for rows.Next() {
		var (
			roleID   int64
			roleName string
			permName string
		)
		if err := rows.Scan(&roleID, &roleName, &permName); err != nil {
			return nil, fmt.Errorf("authz: scan role row: %w", err)
		}
		if current == nil || current.ID != roleID {
			principal.Roles = append(principal.Roles, Role{ID: roleID, Name: roleName})
			current = &principal.Roles[len(principal.Roles)-1]
		}
		if permName != "" {
			current.Permissions = append(current.Permissions, permName)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("authz: iterate roles: %w", err)
	}

	return principal, nil
}

var _ Store = (*Resolver)(nil)

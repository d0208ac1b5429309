package rbac

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/lumina-cms/lumina-cms/internal/shared"
)

func TestClassifyUniqueViolationIsConflict(t *testing.T) {
	err := classifyPgError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "user_roles_pkey"})
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestClassifyForeignKeyViolationIsNotFound(t *testing.T) {
	err := classifyPgError(&pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "role_permissions_permission_id_fkey"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestClassifyPassesThroughOtherErrors(t *testing.T) {
	err := classifyPgError(assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDedupeIDsPreservesOrder(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, dedupeIDs([]int64{3, 1, 3, 2, 1}))
	assert.Empty(t, dedupeIDs(nil))
}

func TestPermissionTitle(t *testing.T) {
	assert.Equal(t, "User Create", PermissionTitle(shared.PermUserCreate))
	assert.Equal(t, "System Backup", PermissionTitle(shared.PermSystemBackup))
}

package shared

// Permission names form a closed registry shared by the authorization engine
// and the management endpoints. Handlers reference these constants instead of
// free-floating literals so a typo fails to compile rather than silently never
// matching.
const (
	PermUserList   = "user:list"
	PermUserCreate = "user:create"
	PermUserRead   = "user:read"
	PermUserUpdate = "user:update"
	PermUserDelete = "user:delete"

	PermRoleList   = "role:list"
	PermRoleCreate = "role:create"
	PermRoleUpdate = "role:update"
	PermRoleDelete = "role:delete"
	PermRoleAssign = "role:assign"

	PermPermissionList  = "permission:list"
	PermPermissionGrant = "permission:grant"

	PermSliderCreate = "slider:create"
	PermSliderUpdate = "slider:update"
	PermSliderDelete = "slider:delete"

	PermProjectCreate = "project:create"
	PermProjectUpdate = "project:update"
	PermProjectDelete = "project:delete"

	PermServiceCreate = "service:create"
	PermServiceUpdate = "service:update"
	PermServiceDelete = "service:delete"

	PermGalleryCreate = "gallery:create"
	PermGalleryDelete = "gallery:delete"

	PermOfficeCreate = "office:create"
	PermOfficeUpdate = "office:update"
	PermOfficeDelete = "office:delete"

	PermTeamCreate = "team:create"
	PermTeamUpdate = "team:update"
	PermTeamDelete = "team:delete"

	PermMessageList   = "message:list"
	PermMessageDelete = "message:delete"

	PermSystemInfo    = "system:info"
	PermSystemBackup  = "system:backup"
	PermSystemRestore = "system:restore"
)

// AllPermissions enumerates the full registry in a stable order. The startup
// sync routine upserts these into the permissions table.
func AllPermissions() []string {
	return []string{
		PermUserList, PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete,
		PermRoleList, PermRoleCreate, PermRoleUpdate, PermRoleDelete, PermRoleAssign,
		PermPermissionList, PermPermissionGrant,
		PermSliderCreate, PermSliderUpdate, PermSliderDelete,
		PermProjectCreate, PermProjectUpdate, PermProjectDelete,
		PermServiceCreate, PermServiceUpdate, PermServiceDelete,
		PermGalleryCreate, PermGalleryDelete,
		PermOfficeCreate, PermOfficeUpdate, PermOfficeDelete,
		PermTeamCreate, PermTeamUpdate, PermTeamDelete,
		PermMessageList, PermMessageDelete,
		PermSystemInfo, PermSystemBackup, PermSystemRestore,
	}
}

// KnownPermission reports whether name belongs to the registry.
func KnownPermission(name string) bool {
	for _, p := range AllPermissions() {
		if p == name {
			return true
		}
	}
	return false
}

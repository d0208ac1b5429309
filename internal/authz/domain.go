// Package authz implements the authorization core: resolving a request's
// bearer token into a live principal and deciding ALLOW or DENY against a
// route's declared requirement.
package authz

import "sort"

// Role is a named bundle of permissions as held by a principal.
type Role struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// Principal is the runtime subject of an authorization decision: a user row
// plus its resolved roles and permissions, recomputed from storage per
// request (or served from the short-TTL cache).
type Principal struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
	Roles  []Role `json:"roles"`
}

// Permissions flattens the role graph into a set of permission names.
// Duplicates across roles collapse; zero roles yield an empty set.
func (p *Principal) Permissions() map[string]struct{} {
	set := make(map[string]struct{})
	for _, role := range p.Roles {
		for _, perm := range role.Permissions {
			set[perm] = struct{}{}
		}
	}
	return set
}

// PermissionList returns the aggregated permissions sorted for stable output.
func (p *Principal) PermissionList() []string {
	set := p.Permissions()
	list := make([]string, 0, len(set))
	for perm := range set {
		list = append(list, perm)
	}
	sort.Strings(list)
	return list
}

// RoleNames returns the names of the principal's roles.
func (p *Principal) RoleNames() []string {
	names := make([]string, 0, len(p.Roles))
	for _, role := range p.Roles {
		names = append(names, role.Name)
	}
	return names
}

package rbac

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// PermissionTitle renders a resource:action permission name as a
// human-readable label for the admin UI, e.g. "user:create" → "User Create".
func PermissionTitle(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, ":", " "))
}

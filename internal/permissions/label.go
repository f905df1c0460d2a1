package permissions

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Label renders a permission name as a human-readable label for the
// role-management UI, e.g. "view_products_by_id" becomes
// "View Products By Id".
func Label(permission string) string {
	return titleCaser.String(strings.ReplaceAll(permission, "_", " "))
}

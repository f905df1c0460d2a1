// Package permissions is the single source of truth for the permission
// names the application recognizes and for the baseline grants of the
// built-in roles. Handlers reference these names as literals when mounting
// routes; the authorization engine consults the catalog when it evaluates a
// built-in role.
package permissions

import "strings"

// Built-in role names. Roles seeded under these names carry the baseline
// grants returned by Defaults.
const (
	RoleAdmin     = "admin"
	RoleAssistant = "assistant"
	RoleEmployee  = "employee"
)

// all enumerates every recognized permission, grouped by resource. The
// admin baseline is defined as this exact list; TestAdminMatchesCatalog
// guards against the two drifting apart.
var all = []string{
	"view_roles",
	"view_roles_by_id",
	"create_roles",
	"update_roles",
	"delete_roles",

	"view_users",
	"view_users_by_id",
	"create_users",
	"update_users",
	"delete_users",

	"view_categories",
	"view_categories_by_id",
	"create_categories",
	"update_categories",
	"delete_categories",

	"view_products",
	"view_products_by_id",
	"create_products",
	"update_products",
	"delete_products",
	"export_products",

	"view_providers",
	"view_providers_by_id",
	"create_providers",
	"update_providers",
	"delete_providers",

	"view_purchases",
	"view_purchases_by_id",
	"create_purchases",
	"delete_purchases",
	"export_purchases",

	"view_branches",
	"view_branches_by_id",
	"create_branches",
	"update_branches",
	"delete_branches",

	"view_customers",
	"view_customers_by_id",
	"create_customers",
	"update_customers",
	"delete_customers",

	"view_sales",
	"view_sales_by_id",
	"create_sales",
	"delete_sales",
	"export_sales",
	"generate_invoice_sales",
}

var assistantDefaults = []string{
	"view_roles",
	"view_roles_by_id",
	"view_users",
	"view_users_by_id",
	"view_categories",
	"view_categories_by_id",
	"create_categories",
	"update_categories",
	"view_products",
	"view_products_by_id",
	"create_products",
	"update_products",
	"export_products",
	"view_providers",
	"view_providers_by_id",
	"create_providers",
	"update_providers",
	"view_purchases",
	"view_purchases_by_id",
	"create_purchases",
	"export_purchases",
	"view_branches",
	"view_branches_by_id",
	"view_customers",
	"view_customers_by_id",
	"create_customers",
	"update_customers",
	"view_sales",
	"view_sales_by_id",
	"create_sales",
	"export_sales",
	"generate_invoice_sales",
}

// employeeDefaults deliberately excludes product mutation; employees sell,
// they do not maintain the catalog.
var employeeDefaults = []string{
	"view_categories",
	"view_categories_by_id",
	"view_products",
	"view_products_by_id",
	"view_customers",
	"view_customers_by_id",
	"create_customers",
	"view_sales",
	"view_sales_by_id",
	"create_sales",
	"generate_invoice_sales",
}

var known = buildIndex(all)

func buildIndex(perms []string) map[string]struct{} {
	idx := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		idx[p] = struct{}{}
	}
	return idx
}

// All returns every recognized permission name in catalog order.
func All() []string {
	out := make([]string, len(all))
	copy(out, all)
	return out
}

// IsKnown reports whether the permission name is part of the catalog.
func IsKnown(permission string) bool {
	_, ok := known[permission]
	return ok
}

// IsBuiltIn reports whether the normalized role name is one of the fixed
// built-in roles.
func IsBuiltIn(roleName string) bool {
	switch roleName {
	case RoleAdmin, RoleAssistant, RoleEmployee:
		return true
	}
	return false
}

// Defaults returns the baseline permission set for a built-in role name.
// Unknown role names get an empty set; custom roles rely entirely on their
// stored permission list.
func Defaults(roleName string) []string {
	var src []string
	switch roleName {
	case RoleAdmin:
		src = all
	case RoleAssistant:
		src = assistantDefaults
	case RoleEmployee:
		src = employeeDefaults
	default:
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Contains reports whether the permission is a member of the given set.
func Contains(set []string, permission string) bool {
	for _, p := range set {
		if p == permission {
			return true
		}
	}
	return false
}

// Unknown returns the subset of perms that are not part of the catalog.
func Unknown(perms []string) []string {
	var bad []string
	for _, p := range perms {
		if !IsKnown(strings.TrimSpace(p)) {
			bad = append(bad, p)
		}
	}
	return bad
}

package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminMatchesCatalog(t *testing.T) {
	assert.Equal(t, All(), Defaults(RoleAdmin))
}

func TestDefaultsAreSubsetsOfCatalog(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleAssistant, RoleEmployee} {
		for _, p := range Defaults(role) {
			assert.True(t, IsKnown(p), "role %s grants unknown permission %s", role, p)
		}
	}
}

func TestDefaultsUnknownRole(t *testing.T) {
	assert.Empty(t, Defaults("cashier"))
	assert.Empty(t, Defaults(""))
}

func TestDefaultsReturnsCopy(t *testing.T) {
	first := Defaults(RoleEmployee)
	require.NotEmpty(t, first)
	first[0] = "tampered"
	assert.NotContains(t, Defaults(RoleEmployee), "tampered")
}

func TestEmployeeCannotMutateProducts(t *testing.T) {
	set := Defaults(RoleEmployee)
	for _, p := range []string{"create_products", "update_products", "delete_products"} {
		assert.False(t, Contains(set, p), "employee must not hold %s", p)
	}
	assert.True(t, Contains(set, "create_sales"))
	assert.True(t, Contains(set, "view_products"))
}

func TestIsBuiltIn(t *testing.T) {
	assert.True(t, IsBuiltIn(RoleAdmin))
	assert.True(t, IsBuiltIn(RoleAssistant))
	assert.True(t, IsBuiltIn(RoleEmployee))
	assert.False(t, IsBuiltIn("Admin"))
	assert.False(t, IsBuiltIn("cashier"))
}

func TestUnknown(t *testing.T) {
	bad := Unknown([]string{"view_sales", "fly_to_moon", "create_products"})
	assert.Equal(t, []string{"fly_to_moon"}, bad)
}

func TestNoDuplicatePermissions(t *testing.T) {
	seen := make(map[string]struct{})
	for _, p := range All() {
		_, dup := seen[p]
		require.False(t, dup, "duplicate permission %s", p)
		seen[p] = struct{}{}
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "View Products By Id", Label("view_products_by_id"))
	assert.Equal(t, "Generate Invoice Sales", Label("generate_invoice_sales"))
}

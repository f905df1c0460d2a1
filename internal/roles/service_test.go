package roles

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	byID   map[int64]*Role
	byName map[string]*Role
	nextID int64

	findErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		byID:   make(map[int64]*Role),
		byName: make(map[string]*Role),
		nextID: 1,
	}
}

func (m *mockStore) seed(name string, isDefault bool, perms []string) Role {
	role := Role{
		ID:          m.nextID,
		Name:        name,
		IsDefault:   isDefault,
		Permissions: append([]string{}, perms...),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.nextID++
	m.byID[role.ID] = &role
	m.byName[role.Name] = &role
	return role
}

func (m *mockStore) List(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(m.byID))
	for _, r := range m.byID {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockStore) FindByID(ctx context.Context, id int64) (Role, error) {
	if m.findErr != nil {
		return Role{}, m.findErr
	}
	r, ok := m.byID[id]
	if !ok {
		return Role{}, ErrNotFound
	}
	return *r, nil
}

func (m *mockStore) FindByName(ctx context.Context, name string) (Role, error) {
	r, ok := m.byName[name]
	if !ok {
		return Role{}, ErrNotFound
	}
	return *r, nil
}

func (m *mockStore) Create(ctx context.Context, name string, isDefault bool, perms []string) (Role, error) {
	if _, exists := m.byName[name]; exists {
		return Role{}, ErrDuplicateName
	}
	return m.seed(name, isDefault, perms), nil
}

func (m *mockStore) Update(ctx context.Context, id int64, name string, perms []string) (Role, error) {
	r, ok := m.byID[id]
	if !ok {
		return Role{}, ErrNotFound
	}
	if other, exists := m.byName[name]; exists && other.ID != id {
		return Role{}, ErrDuplicateName
	}
	delete(m.byName, r.Name)
	r.Name = name
	m.byName[name] = r
	r.Permissions = append([]string{}, perms...)
	return *r, nil
}

func (m *mockStore) Delete(ctx context.Context, id int64) error {
	r, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.byName, r.Name)
	delete(m.byID, id)
	return nil
}

func TestCreateNormalizesName(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)

	role, err := svc.Create(context.Background(), "  Cashier ", []string{"view_sales", "create_sales"})
	require.NoError(t, err)
	assert.Equal(t, "cashier", role.Name)
	assert.False(t, role.IsDefault)
}

func TestCreateDeduplicatesPermissions(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)

	role, err := svc.Create(context.Background(), "cashier", []string{"view_sales", "view_sales", "create_sales"})
	require.NoError(t, err)
	assert.Equal(t, []string{"view_sales", "create_sales"}, role.Permissions)
}

func TestCreateDuplicateCaseInsensitive(t *testing.T) {
	store := newMockStore()
	store.seed("admin", true, nil)
	svc := NewService(store)

	_, err := svc.Create(context.Background(), " Admin ", nil)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestCreateRejectsUnknownPermissions(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)

	_, err := svc.Create(context.Background(), "cashier", []string{"view_sales", "launch_rockets"})
	assert.ErrorIs(t, err, ErrUnknownPerms)
}

func TestRenameBuiltInFails(t *testing.T) {
	store := newMockStore()
	admin := store.seed("admin", true, nil)
	svc := NewService(store)

	_, err := svc.Rename(context.Background(), admin.ID, "root")
	assert.ErrorIs(t, err, ErrImmutableName)
}

func TestRenameCustomRole(t *testing.T) {
	store := newMockStore()
	cashier := store.seed("cashier", false, []string{"view_sales"})
	svc := NewService(store)

	role, err := svc.Rename(context.Background(), cashier.ID, " Till Operator ")
	require.NoError(t, err)
	assert.Equal(t, "till operator", role.Name)
}

func TestDeleteBuiltInFails(t *testing.T) {
	store := newMockStore()
	employee := store.seed("employee", true, nil)
	svc := NewService(store)

	err := svc.Delete(context.Background(), employee.ID)
	assert.ErrorIs(t, err, ErrProtectedRole)
}

func TestDeleteCustomRole(t *testing.T) {
	store := newMockStore()
	cashier := store.seed("cashier", false, nil)
	svc := NewService(store)

	require.NoError(t, svc.Delete(context.Background(), cashier.ID))
	_, err := svc.Get(context.Background(), cashier.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMissingRole(t *testing.T) {
	svc := NewService(newMockStore())
	assert.ErrorIs(t, svc.Delete(context.Background(), 99), ErrNotFound)
}

func TestSetPermissionsAllowedOnBuiltIn(t *testing.T) {
	store := newMockStore()
	employee := store.seed("employee", true, nil)
	svc := NewService(store)

	role, err := svc.SetPermissions(context.Background(), employee.ID, []string{"export_sales", "export_sales", "view_branches"})
	require.NoError(t, err)
	assert.Equal(t, []string{"export_sales", "view_branches"}, role.Permissions)
}

func TestSetPermissionsUnknown(t *testing.T) {
	store := newMockStore()
	cashier := store.seed("cashier", false, nil)
	svc := NewService(store)

	_, err := svc.SetPermissions(context.Background(), cashier.ID, []string{"nope"})
	assert.ErrorIs(t, err, ErrUnknownPerms)
}

func ptr[T any](v T) *T { return &v }

func TestUpdateAppliesBothFieldsTogether(t *testing.T) {
	store := newMockStore()
	cashier := store.seed("cashier", false, []string{"view_sales"})
	svc := NewService(store)

	role, err := svc.Update(context.Background(), cashier.ID, UpdateParams{
		Name:        ptr(" Till Operator "),
		Permissions: ptr([]string{"view_sales", "create_sales"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "till operator", role.Name)
	assert.Equal(t, []string{"view_sales", "create_sales"}, role.Permissions)
}

func TestUpdateInvalidPermissionsLeavesNameUntouched(t *testing.T) {
	store := newMockStore()
	cashier := store.seed("cashier", false, []string{"view_sales"})
	svc := NewService(store)

	_, err := svc.Update(context.Background(), cashier.ID, UpdateParams{
		Name:        ptr("till operator"),
		Permissions: ptr([]string{"nope"}),
	})
	assert.ErrorIs(t, err, ErrUnknownPerms)

	role, err := svc.Get(context.Background(), cashier.ID)
	require.NoError(t, err)
	assert.Equal(t, "cashier", role.Name)
	assert.Equal(t, []string{"view_sales"}, role.Permissions)
}

func TestUpdateWithNoFieldsIsANoOp(t *testing.T) {
	store := newMockStore()
	cashier := store.seed("cashier", false, []string{"view_sales"})
	svc := NewService(store)

	role, err := svc.Update(context.Background(), cashier.ID, UpdateParams{})
	require.NoError(t, err)
	assert.Equal(t, "cashier", role.Name)
}

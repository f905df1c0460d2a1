package users

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockStore struct {
	users  map[int64]User
	nextID int64
}

func newMockStore() *mockStore {
	return &mockStore{users: make(map[int64]User), nextID: 1}
}

func (m *mockStore) List(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockStore) FindByID(_ context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *mockStore) FindByEmail(_ context.Context, email string) (User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *mockStore) Create(_ context.Context, u User) (User, error) {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return User{}, ErrDuplicateEmail
		}
	}
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	return u, nil
}

func (m *mockStore) Update(_ context.Context, u User) (User, error) {
	if _, ok := m.users[u.ID]; !ok {
		return User{}, ErrNotFound
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestCreateHashesPasswordAndNormalizesEmail(t *testing.T) {
	svc := NewService(newMockStore())

	u, err := svc.Create(context.Background(), CreateParams{
		Email:    "  Jane@Example.COM ",
		Name:     " Jane ",
		Password: "secret-password",
		RoleID:   2,
		IsActive: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, "Jane", u.Name)
	assert.NotEqual(t, "secret-password", u.PasswordHash)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$2"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret-password")))
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(newMockStore())

	_, err := svc.Create(context.Background(), CreateParams{Email: "a@b.com", Password: "password-1"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateParams{Email: "a@b.com", Password: "password-2"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), CreateParams{
		Email:    "a@b.com",
		Name:     "Original",
		Password: "password-1",
		RoleID:   2,
		IsActive: true,
	})
	require.NoError(t, err)
	originalHash := created.PasswordHash

	updated, err := svc.Update(context.Background(), created.ID, UpdateParams{
		Name:     ptr("Renamed"),
		IsActive: ptr(false),
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "a@b.com", updated.Email)
	assert.Equal(t, int64(2), updated.RoleID)
	assert.Equal(t, originalHash, updated.PasswordHash)
}

func TestUpdateRehashesPassword(t *testing.T) {
	svc := NewService(newMockStore())

	created, err := svc.Create(context.Background(), CreateParams{Email: "a@b.com", Password: "password-1"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateParams{Password: ptr("password-2")})
	require.NoError(t, err)

	assert.NotEqual(t, created.PasswordHash, updated.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("password-2")))
}

func TestUpdateUnknownUser(t *testing.T) {
	svc := NewService(newMockStore())
	_, err := svc.Update(context.Background(), 99, UpdateParams{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

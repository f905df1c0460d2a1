package authz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backstock/backstock/internal/roles"
	"github.com/backstock/backstock/internal/users"
)

type stubRoleStore struct {
	byID   map[int64]roles.Role
	byName map[string]roles.Role
	err    error
}

func (s *stubRoleStore) FindByID(ctx context.Context, id int64) (roles.Role, error) {
	if s.err != nil {
		return roles.Role{}, s.err
	}
	role, ok := s.byID[id]
	if !ok {
		return roles.Role{}, roles.ErrNotFound
	}
	return role, nil
}

func (s *stubRoleStore) FindByName(ctx context.Context, name string) (roles.Role, error) {
	if s.err != nil {
		return roles.Role{}, s.err
	}
	role, ok := s.byName[name]
	if !ok {
		return roles.Role{}, roles.ErrNotFound
	}
	return role, nil
}

type stubUserStore struct {
	byID map[int64]users.User
	err  error
}

func (s *stubUserStore) FindByID(ctx context.Context, id int64) (users.User, error) {
	if s.err != nil {
		return users.User{}, s.err
	}
	u, ok := s.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func newTestResolver(t *testing.T) (*Resolver, *TokenManager, *stubRoleStore, *stubUserStore, *Revoker) {
	t.Helper()
	tokens, err := NewTokenManager("test-secret", "backstock", time.Hour)
	require.NoError(t, err)

	employee := roles.Role{ID: 3, Name: "employee", IsDefault: true}
	roleStore := &stubRoleStore{
		byID:   map[int64]roles.Role{3: employee},
		byName: map[string]roles.Role{"employee": employee},
	}
	userStore := &stubUserStore{
		byID: map[int64]users.User{7: {ID: 7, Email: "kim@backstock.local", RoleID: 3, IsActive: true}},
	}

	mr := miniredis.RunT(t)
	revoker := NewRevoker(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	return NewResolver(tokens, roleStore, userStore, revoker), tokens, roleStore, userStore, revoker
}

func TestAuthenticateMissingHeader(t *testing.T) {
	resolver, _, _, _, _ := newTestResolver(t)
	_, err := resolver.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestAuthenticateGarbledToken(t *testing.T) {
	resolver, _, _, _, _ := newTestResolver(t)
	_, err := resolver.Authenticate(context.Background(), "Bearer not.a.token")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestAuthenticateWrongSecret(t *testing.T) {
	resolver, _, _, _, _ := newTestResolver(t)
	other, err := NewTokenManager("different-secret", "backstock", time.Hour)
	require.NoError(t, err)
	token, _, err := other.Issue(7, "3")
	require.NoError(t, err)

	_, authErr := resolver.Authenticate(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, authErr, ErrInvalidCredential)
}

func TestAuthenticateRoleByID(t *testing.T) {
	resolver, tokens, _, _, _ := newTestResolver(t)
	token, _, err := tokens.Issue(7, "3")
	require.NoError(t, err)

	identity, err := resolver.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), identity.SubjectID)
	assert.Equal(t, "employee", identity.Role.Name)
	assert.True(t, identity.Active)
}

func TestAuthenticateRoleByName(t *testing.T) {
	resolver, tokens, _, _, _ := newTestResolver(t)
	token, _, err := tokens.Issue(7, " Employee ")
	require.NoError(t, err)

	identity, err := resolver.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "employee", identity.Role.Name)
}

func TestAuthenticateWithoutBearerPrefix(t *testing.T) {
	resolver, tokens, _, _, _ := newTestResolver(t)
	token, _, err := tokens.Issue(7, "3")
	require.NoError(t, err)

	_, authErr := resolver.Authenticate(context.Background(), token)
	assert.NoError(t, authErr)
}

func TestAuthenticateRoleNotFound(t *testing.T) {
	resolver, tokens, _, _, _ := newTestResolver(t)
	token, _, err := tokens.Issue(7, "manager")
	require.NoError(t, err)

	_, authErr := resolver.Authenticate(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, authErr, ErrRoleNotFound)
}

func TestAuthenticateUserNotFound(t *testing.T) {
	resolver, tokens, _, _, _ := newTestResolver(t)
	token, _, err := tokens.Issue(99, "3")
	require.NoError(t, err)

	_, authErr := resolver.Authenticate(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, authErr, ErrUserNotFound)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	resolver, tokens, _, userStore, _ := newTestResolver(t)
	userStore.byID[7] = users.User{ID: 7, RoleID: 3, IsActive: false}
	token, _, err := tokens.Issue(7, "3")
	require.NoError(t, err)

	_, authErr := resolver.Authenticate(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, authErr, ErrAccountInactive)
}

func TestAuthenticateRevokedToken(t *testing.T) {
	resolver, tokens, _, _, revoker := newTestResolver(t)
	token, claims, err := tokens.Issue(7, "3")
	require.NoError(t, err)

	require.NoError(t, revoker.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))

	_, authErr := resolver.Authenticate(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, authErr, ErrInvalidCredential)
}

func TestAuthenticateStoreFailureIsNotARoleDenial(t *testing.T) {
	resolver, tokens, roleStore, _, _ := newTestResolver(t)
	roleStore.err = errors.New("connection refused")
	token, _, err := tokens.Issue(7, "3")
	require.NoError(t, err)

	_, authErr := resolver.Authenticate(context.Background(), "Bearer "+token)
	require.Error(t, authErr)
	assert.NotErrorIs(t, authErr, ErrRoleNotFound)
	assert.NotErrorIs(t, authErr, ErrInvalidCredential)
}

func TestParseRoleRef(t *testing.T) {
	ref, err := ParseRoleRef("42")
	require.NoError(t, err)
	assert.True(t, ref.ByID())
	assert.Equal(t, int64(42), ref.ID)

	ref, err = ParseRoleRef(" Cashier ")
	require.NoError(t, err)
	assert.False(t, ref.ByID())
	assert.Equal(t, "cashier", ref.Name)

	_, err = ParseRoleRef("  ")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestExpiredTokenRejected(t *testing.T) {
	resolver, _, _, _, _ := newTestResolver(t)
	shortLived, err := NewTokenManager("test-secret", "backstock", time.Millisecond)
	require.NoError(t, err)
	token, _, err := shortLived.Issue(7, "3")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, authErr := resolver.Authenticate(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, authErr, ErrInvalidCredential)
}

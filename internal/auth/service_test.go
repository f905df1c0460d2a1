package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/backstock/backstock/internal/authz"
	"github.com/backstock/backstock/internal/users"
)

type mockSessionRepo struct {
	sessions map[string]Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]Session)}
}

func (m *mockSessionRepo) CreateSession(ctx context.Context, s Session) error {
	m.sessions[s.TokenID] = s
	return nil
}

func (m *mockSessionRepo) DeleteSessionByTokenID(ctx context.Context, tokenID string) error {
	delete(m.sessions, tokenID)
	return nil
}

func (m *mockSessionRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	for id, s := range m.sessions {
		if s.ExpiresAt.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

type mockUserStore struct {
	byEmail map[string]users.User
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (users.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func newTestService(t *testing.T) (*Service, *mockSessionRepo, *authz.Revoker) {
	t.Helper()
	tokens, err := authz.NewTokenManager("test-secret", "backstock", time.Hour)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	store := &mockUserStore{byEmail: map[string]users.User{
		"kim@backstock.local": {ID: 7, Email: "kim@backstock.local", Name: "Kim", RoleID: 3, IsActive: true, PasswordHash: string(hash)},
		"off@backstock.local": {ID: 8, Email: "off@backstock.local", RoleID: 3, IsActive: false, PasswordHash: string(hash)},
	}}

	mr := miniredis.RunT(t)
	revoker := authz.NewRevoker(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	repo := newMockSessionRepo()
	return NewService(repo, store, tokens, revoker, slog.Default()), repo, revoker
}

func TestLoginSuccess(t *testing.T) {
	svc, repo, _ := newTestService(t)

	result, err := svc.Login(context.Background(), " Kim@Backstock.local ", "correct horse", "127.0.0.1", "test")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, int64(7), result.User.ID)
	assert.Len(t, repo.sessions, 1)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "kim@backstock.local", "wrong", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "ghost@backstock.local", "correct horse", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "off@backstock.local", "correct horse", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, repo, revoker := newTestService(t)

	result, err := svc.Login(context.Background(), "kim@backstock.local", "correct horse", "", "")
	require.NoError(t, err)

	var tokenID string
	for id := range repo.sessions {
		tokenID = id
	}
	require.NotEmpty(t, tokenID)

	require.NoError(t, svc.Logout(context.Background(), "Bearer "+result.Token))
	assert.Empty(t, repo.sessions)

	revoked, err := revoker.IsRevoked(context.Background(), tokenID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLogoutGarbledToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	assert.Error(t, svc.Logout(context.Background(), "Bearer nope"))
}

package auth

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/backstock/backstock/internal/authz"
	"github.com/backstock/backstock/internal/users"
)

// UserStore is the user lookup surface login needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (users.User, error)
}

// Service wraps authentication business rules: credential verification,
// token issuance and revocation.
type Service struct {
	repo    Repository
	users   UserStore
	tokens  *authz.TokenManager
	revoker *authz.Revoker
	logger  *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, userStore UserStore, tokens *authz.TokenManager, revoker *authz.Revoker, logger *slog.Logger) *Service {
	return &Service{repo: repo, users: userStore, tokens: tokens, revoker: revoker, logger: logger}
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      users.User
}

// Login validates email/password credentials and issues an access token
// whose claims carry the user's ID and role reference. Inactive accounts
// fail exactly like wrong passwords.
func (s *Service) Login(ctx context.Context, email, password, ip, userAgent string) (LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(user.ID, strconv.FormatInt(user.RoleID, 10))
	if err != nil {
		return LoginResult{}, err
	}

	session := Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenID:   claims.ID,
		CreatedAt: claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		IP:        ip,
		UserAgent: userAgent,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		// Auditing must not block a valid login.
		s.logger.Warn("record session", slog.Any("error", err), slog.Int64("user_id", user.ID))
	}

	return LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Logout revokes the presented token until its natural expiry and removes
// its session audit row.
func (s *Service) Logout(ctx context.Context, authorization string) error {
	raw := strings.TrimPrefix(strings.TrimSpace(authorization), "Bearer ")
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return err
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	if err := s.repo.DeleteSessionByTokenID(ctx, claims.ID); err != nil {
		s.logger.Warn("delete session", slog.Any("error", err), slog.String("token_id", claims.ID))
	}
	return nil
}

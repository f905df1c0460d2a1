package users

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Service handles user account business logic.
type Service struct {
	store Store
}

// NewService builds a Service instance.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// Get fetches a user by identifier.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.store.FindByID(ctx, id)
}

// CreateParams carries the fields accepted at account creation.
type CreateParams struct {
	Email    string
	Name     string
	Password string
	RoleID   int64
	IsActive bool
}

// Create registers a user with a bcrypt password hash.
func (s *Service) Create(ctx context.Context, p CreateParams) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.store.Create(ctx, User{
		Email:        strings.ToLower(strings.TrimSpace(p.Email)),
		Name:         strings.TrimSpace(p.Name),
		RoleID:       p.RoleID,
		IsActive:     p.IsActive,
		PasswordHash: string(hash),
	})
}

// UpdateParams carries the mutable fields of an account. Nil means keep.
type UpdateParams struct {
	Email    *string
	Name     *string
	Password *string
	RoleID   *int64
	IsActive *bool
}

// Update applies partial changes to a user record. A role change or
// deactivation takes effect on the user's next request; identities are
// resolved fresh every time.
func (s *Service) Update(ctx context.Context, id int64, p UpdateParams) (User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if p.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*p.Email))
	}
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.RoleID != nil {
		u.RoleID = *p.RoleID
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		u.PasswordHash = string(hash)
	}
	return s.store.Update(ctx, u)
}

// Delete removes a user account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

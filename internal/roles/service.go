package roles

import (
	"context"
	"fmt"

	"github.com/backstock/backstock/internal/permissions"
)

// Service enforces role management rules on top of the Store.
type Service struct {
	store Store
}

// NewService builds a Service instance.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns all roles.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.store.List(ctx)
}

// Get fetches a role by identifier.
func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	return s.store.FindByID(ctx, id)
}

// Create registers a custom role. Names are normalized before storage so
// uniqueness cannot be bypassed by case or whitespace. Roles created here
// are never default roles; the built-in set is seeded out of band.
func (s *Service) Create(ctx context.Context, name string, perms []string) (Role, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return Role{}, fmt.Errorf("%w: role name required", ErrUnknownPerms)
	}
	if err := validatePermissions(perms); err != nil {
		return Role{}, err
	}
	return s.store.Create(ctx, normalized, false, dedupe(perms))
}

// UpdateParams carries the mutable role fields. Nil means keep.
type UpdateParams struct {
	Name        *string
	Permissions *[]string
}

// Update applies a rename and/or a permission-list replacement. All
// validation runs up front and both fields go to the store as a single
// write, so a request carrying both can never half-apply. Built-in roles
// keep their name forever; their stored permissions may change, since
// stored grants supplement the catalog baseline and never shrink it.
func (s *Service) Update(ctx context.Context, id int64, p UpdateParams) (Role, error) {
	role, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Role{}, err
	}
	if p.Name == nil && p.Permissions == nil {
		return role, nil
	}

	name := role.Name
	if p.Name != nil {
		if role.IsDefault {
			return Role{}, ErrImmutableName
		}
		name = NormalizeName(*p.Name)
		if name == "" {
			return Role{}, fmt.Errorf("%w: role name required", ErrUnknownPerms)
		}
	}

	perms := role.Permissions
	if p.Permissions != nil {
		if err := validatePermissions(*p.Permissions); err != nil {
			return Role{}, err
		}
		perms = dedupe(*p.Permissions)
	}

	return s.store.Update(ctx, id, name, perms)
}

// Rename changes a role's name.
func (s *Service) Rename(ctx context.Context, id int64, name string) (Role, error) {
	return s.Update(ctx, id, UpdateParams{Name: &name})
}

// SetPermissions replaces the stored permission list.
func (s *Service) SetPermissions(ctx context.Context, id int64, perms []string) (Role, error) {
	return s.Update(ctx, id, UpdateParams{Permissions: &perms})
}

// Delete removes a custom role. Built-in roles cannot be deleted.
func (s *Service) Delete(ctx context.Context, id int64) error {
	role, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsDefault {
		return ErrProtectedRole
	}
	return s.store.Delete(ctx, id)
}

func validatePermissions(perms []string) error {
	if bad := permissions.Unknown(perms); len(bad) > 0 {
		return fmt.Errorf("%w: %v", ErrUnknownPerms, bad)
	}
	return nil
}

func dedupe(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

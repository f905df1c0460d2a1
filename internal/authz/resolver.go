package authz

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/backstock/backstock/internal/roles"
	"github.com/backstock/backstock/internal/users"
)

// RoleStore is the narrow role lookup surface the resolver needs.
type RoleStore interface {
	FindByID(ctx context.Context, id int64) (roles.Role, error)
	FindByName(ctx context.Context, name string) (roles.Role, error)
}

// UserStore is the narrow user lookup surface the resolver needs.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (users.User, error)
}

// Resolver turns a bearer credential into an Identity. It is the only
// place the credential is parsed; everything downstream sees the resolved
// Identity. Resolution never mutates state and never caches across
// requests.
type Resolver struct {
	tokens  *TokenManager
	roles   RoleStore
	users   UserStore
	revoker *Revoker
}

// NewResolver constructs a Resolver.
func NewResolver(tokens *TokenManager, roleStore RoleStore, userStore UserStore, revoker *Revoker) *Resolver {
	return &Resolver{tokens: tokens, roles: roleStore, users: userStore, revoker: revoker}
}

// Authenticate validates the Authorization header value and resolves the
// embedded subject and role reference. Every failure is typed; a store
// outage surfaces as its own error, never as a denial and never as an
// allow.
func (r *Resolver) Authenticate(ctx context.Context, authorization string) (Identity, error) {
	raw := strings.TrimSpace(authorization)
	if raw == "" {
		return Identity{}, ErrMissingCredential
	}
	raw = strings.TrimPrefix(raw, "Bearer ")

	claims, err := r.tokens.Parse(raw)
	if err != nil {
		return Identity{}, err
	}
	subjectID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || subjectID <= 0 {
		return Identity{}, fmt.Errorf("%w: malformed subject", ErrInvalidCredential)
	}
	ref, err := ParseRoleRef(claims.Role)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: missing role reference", ErrInvalidCredential)
	}

	if r.revoker != nil && claims.ID != "" {
		revoked, err := r.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Identity{}, err
		}
		if revoked {
			return Identity{}, fmt.Errorf("%w: token revoked", ErrInvalidCredential)
		}
	}

	role, err := r.resolveRole(ctx, ref)
	if err != nil {
		return Identity{}, err
	}

	user, err := r.users.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Identity{}, ErrUserNotFound
		}
		return Identity{}, err
	}
	if !user.IsActive {
		return Identity{}, ErrAccountInactive
	}

	return Identity{SubjectID: subjectID, Role: role, Active: user.IsActive}, nil
}

// resolveRole is the single resolution path for both reference variants.
func (r *Resolver) resolveRole(ctx context.Context, ref RoleRef) (roles.Role, error) {
	var (
		role roles.Role
		err  error
	)
	if ref.ByID() {
		role, err = r.roles.FindByID(ctx, ref.ID)
	} else {
		role, err = r.roles.FindByName(ctx, ref.Name)
	}
	if err != nil {
		if errors.Is(err, roles.ErrNotFound) {
			return roles.Role{}, ErrRoleNotFound
		}
		return roles.Role{}, err
	}
	return role, nil
}

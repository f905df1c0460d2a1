// Package authz implements bearer-token authentication and role-based
// authorization. Every protected request passes through two guards in
// order: Authenticate resolves the credential into an Identity, Require
// checks that identity against a single permission from the catalog.
package authz

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/backstock/backstock/internal/roles"
)

// Identity is the per-request result of authenticating a credential. It is
// never persisted and is rebuilt fresh on every request; a role or account
// change therefore takes effect on the very next call.
type Identity struct {
	SubjectID int64
	Role      roles.Role
	Active    bool
}

var (
	ErrMissingCredential = errors.New("authz: no token provided")
	ErrInvalidCredential = errors.New("authz: invalid token")
	ErrRoleNotFound      = errors.New("authz: role not found")
	ErrUserNotFound      = errors.New("authz: user not found")
	ErrAccountInactive   = errors.New("authz: account is inactive")
)

// PermissionError reports a denied permission check together with the
// permission that was required and the role that was evaluated. Role names
// are not secret; disclosing them keeps denials debuggable for operators.
type PermissionError struct {
	Required string
	Role     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("authz: permission %q denied for role %q", e.Required, e.Role)
}

// RoleRef is the tagged role reference carried in a credential: either a
// store identifier or a role name. Credentials issued across revisions of
// the token format embed one or the other; both resolve through the same
// path.
type RoleRef struct {
	ID   int64
	Name string
}

// ByID reports whether the reference carries a store identifier.
func (r RoleRef) ByID() bool { return r.ID > 0 }

// ParseRoleRef classifies a raw role claim. An all-digit value is treated
// as a store identifier, anything else as a role name in normalized form.
func ParseRoleRef(raw string) (RoleRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RoleRef{}, ErrInvalidCredential
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
		return RoleRef{ID: id}, nil
	}
	return RoleRef{Name: roles.NormalizeName(raw)}, nil
}

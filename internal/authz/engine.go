package authz

import "github.com/backstock/backstock/internal/permissions"

// decision is the outcome of a single policy evaluator.
type decision int

const (
	abstain decision = iota
	allow
	deny
)

// policy evaluates one source of truth for a permission check. Evaluators
// run in order; the first non-abstain outcome wins and the fallthrough is
// an explicit deny.
type policy func(Identity, string) (decision, error)

// Engine decides allow/deny for a resolved identity and a required
// permission. It is stateless per call: the only input state is the role
// resolved fresh by the Resolver, so a permission edit takes effect on the
// next request.
type Engine struct {
	policies []policy
}

// NewEngine builds the engine with the fixed precedence: inactive-account
// lockout, superuser role, catalog defaults for built-in roles, then the
// role's stored permission list. Catalog defaults and stored grants are
// additive; a built-in role may carry supplementary stored permissions.
func NewEngine() *Engine {
	return &Engine{
		policies: []policy{
			denyInactiveAccount,
			allowSuperuser,
			allowCatalogDefault,
			allowStoredGrant,
		},
	}
}

// Authorize returns nil to allow. Denials are typed: ErrAccountInactive for
// locked accounts, *PermissionError otherwise.
func (e *Engine) Authorize(identity Identity, permission string) error {
	for _, p := range e.policies {
		outcome, err := p(identity, permission)
		switch outcome {
		case allow:
			return nil
		case deny:
			return err
		}
	}
	return &PermissionError{Required: permission, Role: identity.Role.Name}
}

// denyInactiveAccount re-asserts the account-status check even though the
// Resolver already blocks inactive accounts; the two steps may be wired
// separately within one request.
func denyInactiveAccount(identity Identity, _ string) (decision, error) {
	if !identity.Active {
		return deny, ErrAccountInactive
	}
	return abstain, nil
}

func allowSuperuser(identity Identity, _ string) (decision, error) {
	if identity.Role.Name == permissions.RoleAdmin {
		return allow, nil
	}
	return abstain, nil
}

func allowCatalogDefault(identity Identity, permission string) (decision, error) {
	if !permissions.IsBuiltIn(identity.Role.Name) {
		return abstain, nil
	}
	if permissions.Contains(permissions.Defaults(identity.Role.Name), permission) {
		return allow, nil
	}
	return abstain, nil
}

func allowStoredGrant(identity Identity, permission string) (decision, error) {
	if permissions.Contains(identity.Role.Permissions, permission) {
		return allow, nil
	}
	return abstain, nil
}

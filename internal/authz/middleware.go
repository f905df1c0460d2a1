package authz

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/backstock/backstock/internal/platform/httpx"
)

// Guard wires the two authorization steps as composable HTTP middleware.
// Authenticate runs once per protected subtree; Require is parameterized
// per endpoint with a literal permission name from the catalog.
type Guard struct {
	Resolver *Resolver
	Engine   *Engine
	Logger   *slog.Logger
}

type denialResponse struct {
	Message  string `json:"message"`
	Required string `json:"required"`
	Role     string `json:"role"`
}

// Authenticate resolves the bearer credential into an Identity and stores
// it in the request context, or rejects with 401.
func (g Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.Resolver.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			g.respondAuthError(w, err)
			return
		}
		ctx := ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require checks the authenticated identity against one permission. A
// denial responds 403 and discloses the required permission and the
// evaluated role; a store failure responds 500 and is never coerced into
// an allow.
func (g Guard) Require(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"message": "No token provided"})
				return
			}
			if err := g.Engine.Authorize(identity, permission); err != nil {
				g.respondDenial(w, err, permission, identity.Role.Name)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g Guard) respondAuthError(w http.ResponseWriter, err error) {
	message := ""
	switch {
	case errors.Is(err, ErrMissingCredential):
		message = "No token provided"
	case errors.Is(err, ErrInvalidCredential):
		message = "Invalid token"
	case errors.Is(err, ErrRoleNotFound):
		message = "Role not found"
	case errors.Is(err, ErrUserNotFound):
		message = "User not found"
	case errors.Is(err, ErrAccountInactive):
		message = "Account is inactive"
	default:
		if g.Logger != nil {
			g.Logger.Error("authenticate", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusUnauthorized, map[string]string{"message": message})
}

func (g Guard) respondDenial(w http.ResponseWriter, err error, permission, roleName string) {
	var permErr *PermissionError
	switch {
	case errors.As(err, &permErr):
		httpx.JSON(w, http.StatusForbidden, denialResponse{
			Message:  "You do not have permission to perform this action",
			Required: permErr.Required,
			Role:     permErr.Role,
		})
	case errors.Is(err, ErrAccountInactive):
		httpx.JSON(w, http.StatusForbidden, denialResponse{
			Message:  "Account is inactive",
			Required: permission,
			Role:     roleName,
		})
	default:
		if g.Logger != nil {
			g.Logger.Error("authorize", slog.Any("error", err), slog.String("permission", permission))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

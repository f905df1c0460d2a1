package authz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backstock/backstock/internal/roles"
	"github.com/backstock/backstock/internal/users"
)

func newTestGuard(t *testing.T) (Guard, *TokenManager, *stubUserStore) {
	t.Helper()
	tokens, err := NewTokenManager("test-secret", "backstock", time.Hour)
	require.NoError(t, err)

	employee := roles.Role{ID: 3, Name: "employee", IsDefault: true}
	cashier := roles.Role{ID: 9, Name: "cashier", Permissions: []string{"view_sales", "create_sales"}}
	roleStore := &stubRoleStore{
		byID:   map[int64]roles.Role{3: employee, 9: cashier},
		byName: map[string]roles.Role{"employee": employee, "cashier": cashier},
	}
	userStore := &stubUserStore{
		byID: map[int64]users.User{7: {ID: 7, RoleID: 3, IsActive: true}},
	}

	guard := Guard{
		Resolver: NewResolver(tokens, roleStore, userStore, nil),
		Engine:   NewEngine(),
	}
	return guard, tokens, userStore
}

func protectedRouter(guard Guard, permission string) http.Handler {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(guard.Authenticate)
		r.With(guard.Require(permission)).Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func TestGuardMissingToken(t *testing.T) {
	guard, _, _ := newTestGuard(t)
	router := protectedRouter(guard, "view_sales")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "No token provided", body["message"])
}

func TestGuardInvalidToken(t *testing.T) {
	guard, _, _ := newTestGuard(t)
	router := protectedRouter(guard, "view_sales")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Invalid token", body["message"])
}

func TestGuardAllowsGrantedPermission(t *testing.T) {
	guard, tokens, _ := newTestGuard(t)
	router := protectedRouter(guard, "create_sales")

	token, _, err := tokens.Issue(7, "3")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGuardDeniedPayload(t *testing.T) {
	guard, tokens, _ := newTestGuard(t)
	router := protectedRouter(guard, "delete_products")

	token, _, err := tokens.Issue(7, "3")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	var body denialResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "delete_products", body.Required)
	assert.Equal(t, "employee", body.Role)
}

func TestGuardInactiveAccountAtAuthentication(t *testing.T) {
	guard, tokens, userStore := newTestGuard(t)
	userStore.byID[7] = users.User{ID: 7, RoleID: 3, IsActive: false}
	router := protectedRouter(guard, "view_sales")

	token, _, err := tokens.Issue(7, "3")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Account is inactive", body["message"])
}

func TestRequireRechecksAccountStatus(t *testing.T) {
	// The resolver blocks inactive accounts, but an identity cached within
	// the request must still be re-checked at the authorization step.
	guard, _, _ := newTestGuard(t)
	identity := Identity{SubjectID: 7, Role: roles.Role{ID: 1, Name: "admin", IsDefault: true}, Active: false}

	handler := guard.Require("view_sales")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ContextWithIdentity(context.Background(), identity))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestGuardRoleNotFound(t *testing.T) {
	guard, tokens, _ := newTestGuard(t)
	router := protectedRouter(guard, "view_sales")

	token, _, err := tokens.Issue(7, "supervisor")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Role not found", body["message"])
}

func TestGuardCustomRoleDeniedOutsideStoredGrants(t *testing.T) {
	guard, tokens, userStore := newTestGuard(t)
	userStore.byID[8] = users.User{ID: 8, RoleID: 9, IsActive: true}
	router := protectedRouter(guard, "view_products")

	token, _, err := tokens.Issue(8, "cashier")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	var body denialResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "view_products", body.Required)
	assert.Equal(t, "cashier", body.Role)
}

package roles

import (
	"fmt"
	"strings"
	"time"

	"github.com/backstock/backstock/internal/platform/httpx"
)

// Role is a named grouping of permissions. Built-in roles (admin, assistant,
// employee) are seeded with IsDefault set; they can never be renamed or
// deleted, though their stored permission list may be extended to supplement
// the catalog baseline.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	IsDefault   bool      `json:"is_default"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Sentinel errors wrap the httpx sentinels so handlers map them to HTTP
// statuses without extra translation.
var (
	ErrNotFound      = fmt.Errorf("role: %w", httpx.ErrNotFound)
	ErrDuplicateName = fmt.Errorf("role name already taken: %w", httpx.ErrDuplicate)
	ErrImmutableName = fmt.Errorf("built-in role cannot be renamed: %w", httpx.ErrImmutable)
	ErrProtectedRole = fmt.Errorf("built-in role cannot be deleted: %w", httpx.ErrProtected)
	ErrUnknownPerms  = fmt.Errorf("unknown permissions: %w", httpx.ErrValidation)
)

// NormalizeName lowercases and trims a role name. Names are stored and
// compared exclusively in this form, so " Admin " collides with "admin".
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

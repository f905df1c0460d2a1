package users

import (
	"fmt"
	"time"

	"github.com/backstock/backstock/internal/platform/httpx"
)

// User represents a back-office account. Inactive accounts fail
// authentication and authorization regardless of credentials.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	RoleID       int64     `json:"role_id"`
	IsActive     bool      `json:"is_active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	ErrNotFound       = fmt.Errorf("user: %w", httpx.ErrNotFound)
	ErrDuplicateEmail = fmt.Errorf("email already registered: %w", httpx.ErrDuplicate)
)

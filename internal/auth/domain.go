package auth

import (
	"fmt"
	"time"

	"github.com/backstock/backstock/internal/platform/httpx"
)

// Session is an audit record of an issued access token. It plays no part
// in authorization decisions; tokens are verified cryptographically and
// checked against the revocation list instead.
type Session struct {
	ID        string
	UserID    int64
	TokenID   string
	CreatedAt time.Time
	ExpiresAt time.Time
	IP        string
	UserAgent string
}

// ErrInvalidCredentials covers unknown email, wrong password and inactive
// account alike; login failures are deliberately indistinguishable.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", httpx.ErrUnauthorized)

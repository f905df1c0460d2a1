package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations for session auditing.
type Repository interface {
	CreateSession(ctx context.Context, s Session) error
	DeleteSessionByTokenID(ctx context.Context, tokenID string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CreateSession persists a new login session for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, s Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, token_id, created_at, expires_at, ip, ua)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.TokenID,
		pgtype.Timestamptz{Time: s.CreatedAt.UTC(), Valid: true},
		pgtype.Timestamptz{Time: s.ExpiresAt.UTC(), Valid: true},
		pgtype.Text{String: s.IP, Valid: s.IP != ""},
		pgtype.Text{String: s.UserAgent, Valid: s.UserAgent != ""},
	)
	return err
}

// DeleteSessionByTokenID removes the session row for a revoked token.
func (r *PGRepository) DeleteSessionByTokenID(ctx context.Context, tokenID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token_id = $1`, tokenID)
	return err
}

// DeleteExpiredSessions purges session rows whose token expired before the
// given instant. Called from the background worker.
func (r *PGRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`,
		pgtype.Timestamptz{Time: before.UTC(), Valid: true})
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Repository = (*PGRepository)(nil)

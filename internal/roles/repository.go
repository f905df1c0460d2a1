package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store defines persistence operations for roles. The database uniqueness
// constraint on the normalized name is the authority for duplicate
// detection; a constraint violation surfaces as ErrDuplicateName.
type Store interface {
	List(ctx context.Context) ([]Role, error)
	FindByID(ctx context.Context, id int64) (Role, error)
	FindByName(ctx context.Context, name string) (Role, error)
	Create(ctx context.Context, name string, isDefault bool, perms []string) (Role, error)
	Update(ctx context.Context, id int64, name string, perms []string) (Role, error)
	Delete(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = `id, name, is_default, permissions, created_at, updated_at`

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.IsDefault, &role.Permissions, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrNotFound
		}
		return Role{}, err
	}
	if role.Permissions == nil {
		role.Permissions = []string{}
	}
	return role, nil
}

// List returns all roles ordered by name.
func (r *Repository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// FindByID fetches a role by identifier.
func (r *Repository) FindByID(ctx context.Context, id int64) (Role, error) {
	return scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
}

// FindByName fetches a role by its normalized name. Callers normalize
// before lookup; comparison against the stored form is exact.
func (r *Repository) FindByName(ctx context.Context, name string) (Role, error) {
	return scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name))
}

// Create inserts a new role. The unique index on name turns a concurrent
// duplicate insert into ErrDuplicateName rather than a silent overwrite.
func (r *Repository) Create(ctx context.Context, name string, isDefault bool, perms []string) (Role, error) {
	if perms == nil {
		perms = []string{}
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO roles (name, is_default, permissions, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())
		 RETURNING `+roleColumns,
		name, isDefault, perms)
	role, err := scanRole(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Role{}, ErrDuplicateName
		}
		return Role{}, err
	}
	return role, nil
}

// Update writes the role's name and permission list in one statement, so
// a request changing both can never half-apply.
func (r *Repository) Update(ctx context.Context, id int64, name string, perms []string) (Role, error) {
	if perms == nil {
		perms = []string{}
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE roles SET name = $2, permissions = $3, updated_at = now() WHERE id = $1 RETURNING `+roleColumns,
		id, name, perms)
	role, err := scanRole(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Role{}, ErrDuplicateName
		}
		return Role{}, err
	}
	return role, nil
}

// Delete removes a role by identifier.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Store = (*Repository)(nil)

package providers

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backstock/backstock/internal/platform/httpx"
	"github.com/backstock/backstock/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Provider, int, error)
	Get(ctx context.Context, id int64) (Provider, error)
	Create(ctx context.Context, p Provider) (Provider, error)
	Update(ctx context.Context, id int64, p Provider) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const providerColumns = `id, name, email, phone, address`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Provider, int, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM providers WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		query += ` AND (name ILIKE $1 OR email ILIKE $1)`
		countQuery += ` AND (name ILIKE $1 OR email ILIKE $1)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name`
	if filters.Limit > 0 {
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filters.Limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Provider
	for rows.Next() {
		var p Provider
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Address); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Provider, error) {
	var p Provider
	err := r.pool.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return Provider{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Provider) (Provider, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO providers (name, email, phone, address) VALUES ($1, $2, $3, $4) RETURNING id`,
		p.Name, p.Email, p.Phone, p.Address).Scan(&p.ID)
	return p, err
}

func (r *repository) Update(ctx context.Context, id int64, p Provider) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE providers SET name = $2, email = $3, phone = $4, address = $5 WHERE id = $1`,
		id, p.Name, p.Email, p.Phone, p.Address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM providers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

package purchases

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backstock/backstock/internal/platform/db"
	"github.com/backstock/backstock/internal/platform/httpx"
	"github.com/backstock/backstock/internal/shared"
)

// ErrStockConsumed is returned when deleting a purchase would take product
// stock below zero because the received units were already sold.
var ErrStockConsumed = fmt.Errorf("%w: received stock already consumed", httpx.ErrProtected)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Purchase, int, error)
	Get(ctx context.Context, id int64) (Purchase, error)
	// Create inserts the purchase with its items and increments product
	// stock in a single transaction.
	Create(ctx context.Context, purchase Purchase) (Purchase, error)
	// Delete removes the purchase and takes back the stock it added.
	Delete(ctx context.Context, id int64) error
	All(ctx context.Context) ([]Purchase, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const purchaseColumns = `id, provider_id, branch_id, user_id, total, created_at`

func scanPurchase(row pgx.Row) (Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.ProviderID, &p.BranchID, &p.UserID, &p.Total, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Purchase, int, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM purchases WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		clause := ` AND provider_id IN (SELECT id FROM providers WHERE name ILIKE $1)`
		query += clause
		countQuery += clause
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "DESC"
	if filters.SortDir == "asc" {
		dir = "ASC"
	}
	query += " ORDER BY created_at " + dir
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

	var out []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Purchase, error) {
	purchase, err := scanPurchase(r.pool.QueryRow(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id))
	if err != nil {
		return Purchase{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, purchase_id, product_id, quantity, unit_cost, subtotal
		 FROM purchase_items WHERE purchase_id = $1 ORDER BY id`, id)
	if err != nil {
		return Purchase{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var it PurchaseItem
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.ProductID, &it.Quantity, &it.UnitCost, &it.Subtotal); err != nil {
			return Purchase{}, err
		}
		purchase.Items = append(purchase.Items, it)
	}
	return purchase, rows.Err()
}

func (r *repository) Create(ctx context.Context, purchase Purchase) (Purchase, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO purchases (provider_id, branch_id, user_id, total, created_at)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			purchase.ProviderID, purchase.BranchID, purchase.UserID, purchase.Total, purchase.CreatedAt,
		).Scan(&purchase.ID)
		if err != nil {
			return err
		}

		for i := range purchase.Items {
			item := &purchase.Items[i]
			item.PurchaseID = purchase.ID

			if _, err := tx.Exec(ctx,
				`UPDATE products SET stock = stock + $2 WHERE id = $1`,
				item.ProductID, item.Quantity); err != nil {
				return err
			}

			if err := tx.QueryRow(ctx,
				`INSERT INTO purchase_items (purchase_id, product_id, quantity, unit_cost, subtotal)
				 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
				item.PurchaseID, item.ProductID, item.Quantity, item.UnitCost, item.Subtotal,
			).Scan(&item.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}
	return purchase, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT product_id, quantity FROM purchase_items WHERE purchase_id = $1`, id)
		if err != nil {
			return err
		}
		type unstock struct {
			productID int64
			quantity  int
		}
		var unstocks []unstock
		for rows.Next() {
			var us unstock
			if err := rows.Scan(&us.productID, &us.quantity); err != nil {
				rows.Close()
				return err
			}
			unstocks = append(unstocks, us)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, us := range unstocks {
			tag, err := tx.Exec(ctx,
				`UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
				us.productID, us.quantity)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w for product %d", ErrStockConsumed, us.productID)
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM purchase_items WHERE purchase_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		return nil
	})
}

func (r *repository) All(ctx context.Context) ([]Purchase, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+purchaseColumns+` FROM purchases ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

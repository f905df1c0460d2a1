package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backstock/backstock/internal/platform/db"
	"github.com/backstock/backstock/internal/platform/httpx"
	"github.com/backstock/backstock/internal/shared"
)

// ErrInsufficientStock is returned when a line item asks for more units
// than the product has on hand.
var ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", httpx.ErrValidation)

// ErrDuplicateInvoice is returned when the invoice number is already taken.
var ErrDuplicateInvoice = fmt.Errorf("%w: invoice number already exists", httpx.ErrDuplicate)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Sale, int, error)
	Get(ctx context.Context, id int64) (Sale, error)
	// Create inserts the sale with its items and decrements product stock
	// in a single transaction. The whole sale fails if any line cannot be
	// covered by stock on hand.
	Create(ctx context.Context, sale Sale) (Sale, error)
	// Delete removes the sale and restores the stock its items consumed.
	Delete(ctx context.Context, id int64) error
	All(ctx context.Context) ([]Sale, error)
	NextInvoiceNumber(ctx context.Context) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const saleColumns = `id, invoice_number, customer_id, branch_id, user_id, total, created_at`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.InvoiceNumber, &s.CustomerID, &s.BranchID, &s.UserID, &s.Total, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, httpx.ErrNotFound
	}
	return s, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Sale, int, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM sales WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		query += ` AND invoice_number ILIKE $1`
		countQuery += ` AND invoice_number ILIKE $1`
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

	var out []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Sale, error) {
	sale, err := scanSale(r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		return Sale{}, err
	}
	items, err := r.itemsFor(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	sale.Items = items
	return sale, nil
}

func (r *repository) itemsFor(ctx context.Context, saleID int64) ([]SaleItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, sale_id, product_id, quantity, unit_price, subtotal
		 FROM sale_items WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SaleItem
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) Create(ctx context.Context, sale Sale) (Sale, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO sales (invoice_number, customer_id, branch_id, user_id, total, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			sale.InvoiceNumber, sale.CustomerID, sale.BranchID, sale.UserID, sale.Total, sale.CreatedAt,
		).Scan(&sale.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateInvoice
			}
			return err
		}

		for i := range sale.Items {
			item := &sale.Items[i]
			item.SaleID = sale.ID

			// Guarded decrement: the WHERE clause refuses to take stock
			// below zero, so a zero row count means not enough on hand.
			tag, err := tx.Exec(ctx,
				`UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
				item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w for product %d", ErrInsufficientStock, item.ProductID)
			}

			if err := tx.QueryRow(ctx,
				`INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, subtotal)
				 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
				item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal,
			).Scan(&item.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	return sale, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT product_id, quantity FROM sale_items WHERE sale_id = $1`, id)
		if err != nil {
			return err
		}
		type restock struct {
			productID int64
			quantity  int
		}
		var restocks []restock
		for rows.Next() {
			var rs restock
			if err := rows.Scan(&rs.productID, &rs.quantity); err != nil {
				rows.Close()
				return err
			}
			restocks = append(restocks, rs)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, rs := range restocks {
			if _, err := tx.Exec(ctx,
				`UPDATE products SET stock = stock + $2 WHERE id = $1`,
				rs.productID, rs.quantity); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		return nil
	})
}

func (r *repository) All(ctx context.Context) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// NextInvoiceNumber proposes the next invoice number in the VTA-daily
// format: a date prefix plus a per-day counter.
func (r *repository) NextInvoiceNumber(ctx context.Context) (string, error) {
	today := time.Now().UTC().Format("20060102")
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sales WHERE invoice_number LIKE $1`,
		"VTA-"+today+"-%").Scan(&count)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("VTA-%s-%04d", today, count+1), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package sales

import "time"

// Sale is a completed invoice. Line items are captured at the price in
// effect when the sale was recorded; later price changes never rewrite
// history.
type Sale struct {
	ID            int64      `json:"id"`
	InvoiceNumber string     `json:"invoice_number"`
	CustomerID    int64      `json:"customer_id"`
	BranchID      int64      `json:"branch_id"`
	UserID        int64      `json:"user_id"`
	Total         float64    `json:"total"`
	CreatedAt     time.Time  `json:"created_at"`
	Items         []SaleItem `json:"items,omitempty"`
}

type SaleItem struct {
	ID        int64   `json:"id"`
	SaleID    int64   `json:"sale_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// CreateSaleInput is the request payload for recording a sale.
type CreateSaleInput struct {
	InvoiceNumber string           `json:"invoice_number" validate:"required"`
	CustomerID    int64            `json:"customer_id" validate:"required,gt=0"`
	BranchID      int64            `json:"branch_id" validate:"required,gt=0"`
	Items         []CreateSaleItem `json:"items" validate:"required,min=1,dive"`
}

type CreateSaleItem struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

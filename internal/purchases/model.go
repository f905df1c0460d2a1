package purchases

import "time"

// Purchase is a goods receipt from a provider. Recording one increases the
// stock of every product it lists.
type Purchase struct {
	ID         int64          `json:"id"`
	ProviderID int64          `json:"provider_id"`
	BranchID   int64          `json:"branch_id"`
	UserID     int64          `json:"user_id"`
	Total      float64        `json:"total"`
	CreatedAt  time.Time      `json:"created_at"`
	Items      []PurchaseItem `json:"items,omitempty"`
}

type PurchaseItem struct {
	ID         int64   `json:"id"`
	PurchaseID int64   `json:"purchase_id"`
	ProductID  int64   `json:"product_id"`
	Quantity   int     `json:"quantity"`
	UnitCost   float64 `json:"unit_cost"`
	Subtotal   float64 `json:"subtotal"`
}

// CreatePurchaseInput is the request payload for recording a purchase.
type CreatePurchaseInput struct {
	ProviderID int64                `json:"provider_id" validate:"required,gt=0"`
	BranchID   int64                `json:"branch_id" validate:"required,gt=0"`
	Items      []CreatePurchaseItem `json:"items" validate:"required,min=1,dive"`
}

type CreatePurchaseItem struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitCost  float64 `json:"unit_cost" validate:"gte=0"`
}

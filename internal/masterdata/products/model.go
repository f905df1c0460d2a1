package products

// Product is a sellable stock item. Stock moves through purchases and
// sales; it is never edited directly through this module.
type Product struct {
	ID         int64   `json:"id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	CategoryID int64   `json:"category_id"`
	ProviderID int64   `json:"provider_id"`
	Price      float64 `json:"price"`
	Stock      int     `json:"stock"`
	MinStock   int     `json:"min_stock"`
}

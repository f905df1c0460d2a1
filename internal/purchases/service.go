package purchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/backstock/backstock/internal/masterdata/products"
	"github.com/backstock/backstock/internal/platform/httpx"
	"github.com/backstock/backstock/internal/shared"
)

// ProductCatalog is the slice of the product repository the purchases
// service needs: existence checks for received items.
type ProductCatalog interface {
	Get(ctx context.Context, id int64) (products.Product, error)
}

type Service struct {
	repo    Repository
	catalog ProductCatalog
	now     func() time.Time
}

func NewService(repo Repository, catalog ProductCatalog) *Service {
	return &Service{repo: repo, catalog: catalog, now: time.Now}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Purchase, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Purchase, error) {
	return s.repo.Get(ctx, id)
}

// Create verifies every received product exists, totals the receipt and
// records it. Stock is incremented by the repository inside the same
// transaction as the insert.
func (s *Service) Create(ctx context.Context, userID int64, input CreatePurchaseInput) (Purchase, error) {
	purchase := Purchase{
		ProviderID: input.ProviderID,
		BranchID:   input.BranchID,
		UserID:     userID,
		CreatedAt:  s.now().UTC(),
	}

	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return Purchase{}, fmt.Errorf("%w: quantity must be positive", httpx.ErrValidation)
		}
		if line.UnitCost < 0 {
			return Purchase{}, fmt.Errorf("%w: unit cost cannot be negative", httpx.ErrValidation)
		}
		if _, err := s.catalog.Get(ctx, line.ProductID); err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				return Purchase{}, fmt.Errorf("%w: product %d does not exist", httpx.ErrValidation, line.ProductID)
			}
			return Purchase{}, err
		}
		item := PurchaseItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
			Subtotal:  line.UnitCost * float64(line.Quantity),
		}
		purchase.Total += item.Subtotal
		purchase.Items = append(purchase.Items, item)
	}

	return s.repo.Create(ctx, purchase)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Export returns every purchase for the CSV download.
func (s *Service) Export(ctx context.Context) ([]Purchase, error) {
	return s.repo.All(ctx)
}

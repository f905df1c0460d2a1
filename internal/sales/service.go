package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/backstock/backstock/internal/masterdata/products"
	"github.com/backstock/backstock/internal/platform/httpx"
	"github.com/backstock/backstock/internal/shared"
)

// ProductCatalog is the slice of the product repository the sales service
// needs: price lookup at sale time.
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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Sale, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	return s.repo.Get(ctx, id)
}

// Create prices each line item from the current product catalog, totals the
// invoice and records it. Stock is decremented by the repository inside the
// same transaction as the insert.
func (s *Service) Create(ctx context.Context, userID int64, input CreateSaleInput) (Sale, error) {
	sale := Sale{
		InvoiceNumber: input.InvoiceNumber,
		CustomerID:    input.CustomerID,
		BranchID:      input.BranchID,
		UserID:        userID,
		CreatedAt:     s.now().UTC(),
	}

	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return Sale{}, fmt.Errorf("%w: quantity must be positive", httpx.ErrValidation)
		}
		product, err := s.catalog.Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				return Sale{}, fmt.Errorf("%w: product %d does not exist", httpx.ErrValidation, line.ProductID)
			}
			return Sale{}, err
		}
		item := SaleItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			Subtotal:  product.Price * float64(line.Quantity),
		}
		sale.Total += item.Subtotal
		sale.Items = append(sale.Items, item)
	}

	return s.repo.Create(ctx, sale)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Export returns every sale for the CSV download.
func (s *Service) Export(ctx context.Context) ([]Sale, error) {
	return s.repo.All(ctx)
}

// NextInvoiceNumber proposes an invoice number for a new sale.
func (s *Service) NextInvoiceNumber(ctx context.Context) (string, error) {
	return s.repo.NextInvoiceNumber(ctx)
}

package sales

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backstock/backstock/internal/masterdata/products"
	"github.com/backstock/backstock/internal/platform/httpx"
	"github.com/backstock/backstock/internal/shared"
)

type mockRepo struct {
	sales  map[int64]Sale
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{sales: make(map[int64]Sale), nextID: 1}
}

func (m *mockRepo) List(_ context.Context, _ shared.ListFilters) ([]Sale, int, error) {
	var out []Sale
	for _, s := range m.sales {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return Sale{}, httpx.ErrNotFound
	}
	return s, nil
}

func (m *mockRepo) Create(_ context.Context, sale Sale) (Sale, error) {
	sale.ID = m.nextID
	m.nextID++
	m.sales[sale.ID] = sale
	return sale, nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.sales[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.sales, id)
	return nil
}

func (m *mockRepo) All(_ context.Context) ([]Sale, error) {
	var out []Sale
	for _, s := range m.sales {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockRepo) NextInvoiceNumber(_ context.Context) (string, error) {
	return "VTA-20240101-0001", nil
}

type mockCatalog map[int64]products.Product

func (m mockCatalog) Get(_ context.Context, id int64) (products.Product, error) {
	p, ok := m[id]
	if !ok {
		return products.Product{}, httpx.ErrNotFound
	}
	return p, nil
}

func fixedService(repo Repository, catalog ProductCatalog) *Service {
	svc := NewService(repo, catalog)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreatePricesLinesFromCatalog(t *testing.T) {
	catalog := mockCatalog{
		1: {ID: 1, Code: "A-1", Price: 10.50},
		2: {ID: 2, Code: "B-2", Price: 3.25},
	}
	svc := fixedService(newMockRepo(), catalog)

	sale, err := svc.Create(context.Background(), 7, CreateSaleInput{
		InvoiceNumber: "VTA-20240101-0001",
		CustomerID:    1,
		BranchID:      1,
		Items: []CreateSaleItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 4},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), sale.UserID)
	assert.InDelta(t, 34.0, sale.Total, 0.001)
	require.Len(t, sale.Items, 2)
	assert.InDelta(t, 21.0, sale.Items[0].Subtotal, 0.001)
	assert.InDelta(t, 10.50, sale.Items[0].UnitPrice, 0.001)
}

func TestCreateRejectsUnknownProduct(t *testing.T) {
	svc := fixedService(newMockRepo(), mockCatalog{})

	_, err := svc.Create(context.Background(), 1, CreateSaleInput{
		InvoiceNumber: "VTA-20240101-0001",
		CustomerID:    1,
		BranchID:      1,
		Items:         []CreateSaleItem{{ProductID: 99, Quantity: 1}},
	})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsNonPositiveQuantity(t *testing.T) {
	catalog := mockCatalog{1: {ID: 1, Price: 5}}
	svc := fixedService(newMockRepo(), catalog)

	_, err := svc.Create(context.Background(), 1, CreateSaleInput{
		InvoiceNumber: "VTA-20240101-0001",
		CustomerID:    1,
		BranchID:      1,
		Items:         []CreateSaleItem{{ProductID: 1, Quantity: 0}},
	})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteUnknownSale(t *testing.T) {
	svc := fixedService(newMockRepo(), mockCatalog{})
	err := svc.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestWriteCSVIncludesHeaderAndRows(t *testing.T) {
	data, err := WriteCSV([]Sale{{
		InvoiceNumber: "VTA-20240101-0001",
		CustomerID:    1,
		BranchID:      2,
		UserID:        3,
		Total:         34,
		CreatedAt:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, err)
	assert.Contains(t, string(data), "invoice_number,customer_id,branch_id,user_id,total,created_at")
	assert.Contains(t, string(data), "VTA-20240101-0001,1,2,3,34.00,2024-01-01T12:00:00Z")
}

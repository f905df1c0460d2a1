package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backstock/backstock/internal/platform/httpx"
	"github.com/backstock/backstock/internal/shared"
)

type mockRepo struct {
	products map[int64]Product
	nextID   int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{products: make(map[int64]Product), nextID: 1}
}

func (m *mockRepo) List(_ context.Context, _ shared.ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, httpx.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) Create(_ context.Context, p Product) (Product, error) {
	p.ID = m.nextID
	m.nextID++
	m.products[p.ID] = p
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, id int64, p Product) error {
	if _, ok := m.products[id]; !ok {
		return httpx.ErrNotFound
	}
	p.ID = id
	m.products[id] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockRepo) All(_ context.Context) ([]Product, error) {
	var out []Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func TestCreateValidatesFields(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []struct {
		name    string
		product Product
	}{
		{"missing code", Product{Name: "Widget", Price: 1}},
		{"missing name", Product{Code: "W-1", Price: 1}},
		{"negative price", Product{Code: "W-1", Name: "Widget", Price: -1}},
		{"negative min stock", Product{Code: "W-1", Name: "Widget", Price: 1, MinStock: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.product)
			assert.ErrorIs(t, err, httpx.ErrValidation)
		})
	}
}

func TestCreateAcceptsValidProduct(t *testing.T) {
	svc := NewService(newMockRepo())

	p, err := svc.Create(context.Background(), Product{Code: "W-1", Name: "Widget", Price: 9.99, MinStock: 3})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
}

func TestWriteCSVRendersHeaderAndRows(t *testing.T) {
	data, err := WriteCSV([]Product{
		{Code: "W-1", Name: "Widget", Price: 9.99, Stock: 12, MinStock: 3},
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), "code,name,price,stock,min_stock")
	assert.Contains(t, string(data), "W-1,Widget,9.99,12,3")
}

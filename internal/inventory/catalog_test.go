package inventory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/store"
)

func newTestCatalog(products ...domain.Product) *Catalog {
	seed := domain.NewSnapshot()
	seed.Products = append(seed.Products, products...)
	return NewCatalog(store.NewWriter(store.NewMemoryStore(seed)))
}

func TestFindProduct(t *testing.T) {
	snap := domain.NewSnapshot()
	snap.Products = []domain.Product{{ProductID: "p-1", Name: "Mug", Quantity: 3}}

	got := FindProduct(snap, "p-1")
	require.NotNil(t, got)
	got.Quantity = 0
	assert.Equal(t, 3, snap.Products[0].Quantity, "returned product must be a copy")

	assert.Nil(t, FindProduct(snap, "missing"))
}

func TestReplaceProducts(t *testing.T) {
	snap := domain.NewSnapshot()
	snap.Products = []domain.Product{
		{ProductID: "p-1", Quantity: 3},
		{ProductID: "p-2", Quantity: 5},
	}

	ReplaceProducts(snap, []domain.Product{
		{ProductID: "p-2", Quantity: 1},
		{ProductID: "ghost", Quantity: 9},
	})

	assert.Equal(t, 3, snap.Products[0].Quantity)
	assert.Equal(t, 1, snap.Products[1].Quantity)
	assert.Len(t, snap.Products, 2)
}

func TestCatalog_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns an id and persists", func(t *testing.T) {
		c := newTestCatalog()

		p, err := c.Create(ctx, domain.Product{Name: " Mug ", Quantity: 5, Price: decimal.RequireFromString("19.99")})
		require.NoError(t, err)
		assert.NotEmpty(t, p.ProductID)
		assert.Equal(t, "Mug", p.Name)

		stored, err := c.Get(ctx, p.ProductID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, 5, stored.Quantity)
	})

	t.Run("rejects invalid products", func(t *testing.T) {
		c := newTestCatalog()

		tests := []struct {
			name    string
			product domain.Product
		}{
			{"missing name", domain.Product{Quantity: 1}},
			{"negative quantity", domain.Product{Name: "Mug", Quantity: -1}},
			{"negative price", domain.Product{Name: "Mug", Price: decimal.NewFromInt(-1)}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := c.Create(ctx, tt.product)
				assert.ErrorIs(t, err, ErrInvalidProduct)
			})
		}

		products, err := c.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}

func TestCatalog_Update(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(domain.Product{ProductID: "p-1", Name: "Mug", Quantity: 3, Price: decimal.NewFromInt(10)})

	name := "Big Mug"
	qty := 15
	p, err := c.Update(ctx, "p-1", domain.ProductPatch{Name: &name, Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", p.Name)
	assert.Equal(t, 15, p.Quantity)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(10)), "untouched fields survive")

	_, err = c.Update(ctx, "missing", domain.ProductPatch{Name: &name})
	assert.ErrorIs(t, err, ErrProductNotFound)

	negative := -4
	_, err = c.Update(ctx, "p-1", domain.ProductPatch{Quantity: &negative})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	stored, err := c.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 15, stored.Quantity)
}

func TestCatalog_Delete(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(
		domain.Product{ProductID: "p-1", Name: "Mug"},
		domain.Product{ProductID: "p-2", Name: "Cup"},
	)

	removed, err := c.Delete(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Mug", removed.Name)

	products, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p-2", products[0].ProductID)

	_, err = c.Delete(ctx, "p-1")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePrice(t *testing.T) {
	s := &ProductService{minPrice: decimal.NewFromInt(5000)}

	tests := []struct {
		price string
		valid bool
	}{
		{"5000", true},
		{"9999.99", true},
		{"4999.99", false},
		{"5000.001", false},
		{"10000", false},
	}
	for _, tc := range tests {
		t.Run(tc.price, func(t *testing.T) {
			fields := s.ValidatePrice(decimal.RequireFromString(tc.price))
			if tc.valid {
				assert.Empty(t, fields)
			} else {
				assert.Contains(t, fields, "price")
			}
		})
	}
}

func TestProductCreateAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Books")
	promo, err := f.promotions.Create(ctx, "Summer sale")
	require.NoError(t, err)

	product, err := f.products.Create(ctx, ProductInput{
		Title:        "Go in Action",
		Description:  "A book",
		Price:        decimal.RequireFromString("7500.50"),
		CategoryID:   cat.ID,
		PromotionIDs: []uint{promo.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "go-in-action", product.Slug)
	require.Len(t, product.Promotions, 1)
	assert.Equal(t, "Books", product.Category.Title)

	updated, err := f.products.Update(ctx, product.ID, ProductInput{
		Title:      "Go in Action 2",
		Slug:       "custom",
		Price:      decimal.RequireFromString("8000"),
		CategoryID: cat.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "custom", updated.Slug)
	assert.Empty(t, updated.Promotions)

	_, err = f.products.Create(ctx, ProductInput{
		Title:        "Cheap",
		Price:        decimal.NewFromInt(10),
		CategoryID:   999,
		PromotionIDs: []uint{42},
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "price")
	assert.Contains(t, verr.Fields, "category_id")
	assert.Contains(t, verr.Fields, "promotion_ids")
}

func TestProductDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.register(t, "admin", true)
	user := f.register(t, "alice", false)
	cat := f.category(t, "Books")
	protected := f.product(t, cat.ID, "Protected", "10.00")
	require.Equal(t, models.ProtectedProductID, protected.ID)
	p := f.product(t, cat.ID, "A", "10.00")

	for _, caller := range []Caller{{}, user, staff} {
		err := f.products.Delete(ctx, caller, protected.ID)
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
		assert.ErrorIs(t, err, ErrProtectedProduct)
	}

	assert.ErrorIs(t, f.products.Delete(ctx, Caller{}, p.ID), ErrUnauthenticated)
	assert.ErrorIs(t, f.products.Delete(ctx, user, p.ID), ErrForbidden)

	cartID := f.cartWith(t, map[uint]int{p.ID: 2, protected.ID: 1})
	require.NoError(t, f.products.Delete(ctx, staff, p.ID))

	_, err := f.products.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	items, err := f.carts.ListItems(ctx, cartID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, protected.ID, items[0].ProductID)

	assert.ErrorIs(t, f.products.Delete(ctx, staff, p.ID), ErrNotFound)
}

func TestProductList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	books := f.category(t, "Books")
	games := f.category(t, "Games")
	f.product(t, books.ID, "Alpha book", "30.00")
	f.product(t, books.ID, "Beta book", "10.00")
	f.product(t, games.ID, "Gamma game", "20.00")

	page, err := f.products.List(ctx, repositories.ProductFilter{CategoryID: &books.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Count)

	gt := decimal.RequireFromString("15")
	lt := decimal.RequireFromString("25")
	page, err = f.products.List(ctx, repositories.ProductFilter{PriceGT: &gt, PriceLT: &lt})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Gamma game", page.Products[0].Title)

	page, err = f.products.List(ctx, repositories.ProductFilter{Search: "BOOK"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Count)

	page, err = f.products.List(ctx, repositories.ProductFilter{Ordering: "-price", Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Count)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "Alpha book", page.Products[0].Title)
	assert.Equal(t, "Gamma game", page.Products[1].Title)

	page, err = f.products.List(ctx, repositories.ProductFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Gamma game", page.Products[0].Title)

	_, err = f.products.List(ctx, repositories.ProductFilter{Ordering: "title"})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryProductCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.register(t, "admin", true)
	books := f.category(t, "Books")
	empty := f.category(t, "Empty")
	f.product(t, books.ID, "Protected", "10.00")
	p := f.product(t, books.ID, "A", "10.00")
	f.product(t, books.ID, "B", "10.00")

	list, err := f.categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.EqualValues(t, 3, list[0].ProductCount)
	assert.EqualValues(t, 0, list[1].ProductCount)

	require.NoError(t, f.products.Delete(ctx, staff, p.ID))
	one, err := f.categories.Get(ctx, books.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, one.ProductCount)

	err = f.categories.Delete(ctx, books.ID)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	require.NoError(t, f.categories.Delete(ctx, empty.ID))
	_, err = f.categories.Get(ctx, empty.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryCreateUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.categories.Create(ctx, "  ")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	created, err := f.categories.Create(ctx, "Toys")
	require.NoError(t, err)
	updated, err := f.categories.Update(ctx, created.ID, "Games")
	require.NoError(t, err)
	assert.Equal(t, "Games", updated.Title)

	_, err = f.categories.Update(ctx, 999, "Nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPromotionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	promo, err := f.promotions.Create(ctx, "Sale")
	require.NoError(t, err)
	promo, err = f.promotions.Update(ctx, promo.ID, "Big sale")
	require.NoError(t, err)
	assert.Equal(t, "Big sale", promo.Title)

	all, err := f.promotions.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, f.promotions.Delete(ctx, promo.ID))
	assert.ErrorIs(t, f.promotions.Delete(ctx, promo.ID), ErrNotFound)
}

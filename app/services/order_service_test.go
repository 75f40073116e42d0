package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrder_SnapshotsCartIntoOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.register(t, "alice", false)

	cat := f.category(t, "Books")
	a := f.product(t, cat.ID, "A", "10.00")
	b := f.product(t, cat.ID, "B", "5.00")
	cartID := f.cartWith(t, map[uint]int{a.ID: 2, b.ID: 1})

	cart, err := f.carts.GetCart(ctx, cartID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	order, err := f.orders.PlaceOrder(ctx, caller, cartID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, order.PaymentStatus)
	assert.Equal(t, models.StatusPending, order.DeliveryStatus)
	assert.Regexp(t, `^ORD-\d{8}-[0-9a-f]{8}$`, order.Code)
	assert.Equal(t, caller.UserID, order.Customer.UserID)
	assert.Equal(t, "25.00", OrderTotal(order).StringFixed(2))

	require.Len(t, order.Items, 2)
	got := map[uint]models.OrderItem{}
	for _, item := range order.Items {
		got[item.ProductID] = item
	}
	assert.Equal(t, 2, got[a.ID].Quantity)
	assert.True(t, got[a.ID].Price.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, 1, got[b.ID].Quantity)
	assert.True(t, got[b.ID].Price.Equal(decimal.RequireFromString("5.00")))

	_, err = f.carts.GetCart(ctx, cartID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, count(t, f.db, &models.CartItem{}))
}

func TestPlaceOrder_PriceChangeDoesNotTouchPlacedOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.register(t, "bob", false)
	cat := f.category(t, "Books")
	p := f.product(t, cat.ID, "A", "10.00")

	order, err := f.orders.PlaceOrder(ctx, caller, f.cartWith(t, map[uint]int{p.ID: 3}))
	require.NoError(t, err)

	otherCart := f.cartWith(t, map[uint]int{p.ID: 3})
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", p.ID).Update("price", "12.50").Error)

	reloaded, err := f.orders.GetOrder(ctx, caller, order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Items[0].Price.Equal(decimal.RequireFromString("10.00")))

	cart, err := f.carts.GetCart(ctx, otherCart)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.Items[0].Product.Price.Equal(decimal.RequireFromString("12.50")))
}

func TestPlaceOrder_MissingOrEmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caller := f.register(t, "carol", false)

	_, err := f.orders.PlaceOrder(ctx, caller, "00000000-0000-0000-0000-000000000000")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "cart_id")
	assert.ErrorIs(t, err, ErrCartNotFound)

	empty, err := f.carts.CreateCart(ctx)
	require.NoError(t, err)
	_, err = f.orders.PlaceOrder(ctx, caller, empty.ID)
	assert.ErrorIs(t, err, ErrCartEmpty)

	assert.Zero(t, count(t, f.db, &models.Order{}))
	assert.Zero(t, count(t, f.db, &models.OrderItem{}))

	_, err = f.carts.GetCart(ctx, empty.ID)
	assert.NoError(t, err, "empty cart must survive the failed placement")
}

func TestPlaceOrder_RequiresAuthentication(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Books")
	p := f.product(t, cat.ID, "A", "10.00")

	_, err := f.orders.PlaceOrder(context.Background(), Caller{}, f.cartWith(t, map[uint]int{p.ID: 1}))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestPlaceOrder_ConcurrentPlacementsOnOneCart(t *testing.T) {
	f := newFixture(t)
	caller := f.register(t, "dave", false)
	cat := f.category(t, "Books")
	p := f.product(t, cat.ID, "A", "10.00")
	cartID := f.cartWith(t, map[uint]int{p.ID: 2})

	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orders.PlaceOrder(context.Background(), caller, cartID)
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrCartNotFound)
	}
	assert.Equal(t, 1, succeeded)
	assert.EqualValues(t, 1, count(t, f.db, &models.Order{}))
	assert.EqualValues(t, 1, count(t, f.db, &models.OrderItem{}))
}

func TestOrders_ScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", false)
	bob := f.register(t, "bob", false)
	staff := f.register(t, "admin", true)
	cat := f.category(t, "Books")
	p := f.product(t, cat.ID, "A", "10.00")

	order, err := f.orders.PlaceOrder(ctx, alice, f.cartWith(t, map[uint]int{p.ID: 1}))
	require.NoError(t, err)

	_, err = f.orders.GetOrder(ctx, bob, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	bobs, err := f.orders.ListOrders(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobs)

	alices, err := f.orders.ListOrders(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, alices, 1)

	all, err := f.orders.ListOrders(ctx, staff)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.orders.ListOrders(ctx, Caller{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", false)
	staff := f.register(t, "admin", true)
	cat := f.category(t, "Books")
	p := f.product(t, cat.ID, "A", "10.00")
	order, err := f.orders.PlaceOrder(ctx, alice, f.cartWith(t, map[uint]int{p.ID: 1}))
	require.NoError(t, err)

	completed := models.StatusCompleted
	_, err = f.orders.UpdateStatus(ctx, alice, order.ID, OrderStatusInput{PaymentStatus: &completed})
	assert.ErrorIs(t, err, ErrForbidden)

	bogus := "shipped"
	_, err = f.orders.UpdateStatus(ctx, staff, order.ID, OrderStatusInput{DeliveryStatus: &bogus})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "delivery_status")

	updated, err := f.orders.UpdateStatus(ctx, staff, order.ID, OrderStatusInput{PaymentStatus: &completed})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.PaymentStatus)
	assert.Equal(t, models.StatusPending, updated.DeliveryStatus)

	_, err = f.orders.UpdateStatus(ctx, staff, 9999, OrderStatusInput{PaymentStatus: &completed})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOrder_RejectedWhileItemsExist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", false)
	staff := f.register(t, "admin", true)
	cat := f.category(t, "Books")
	p := f.product(t, cat.ID, "A", "10.00")
	order, err := f.orders.PlaceOrder(ctx, alice, f.cartWith(t, map[uint]int{p.ID: 1}))
	require.NoError(t, err)

	err = f.orders.DeleteOrder(ctx, staff, order.ID)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.EqualValues(t, 1, count(t, f.db, &models.Order{}))

	assert.ErrorIs(t, f.orders.DeleteOrder(ctx, alice, order.ID), ErrForbidden)
	assert.ErrorIs(t, f.orders.DeleteOrder(ctx, staff, 9999), ErrNotFound)
}

func TestPlaceOrder_KeepsDeletedProductsReadable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice", false)
	staff := f.register(t, "admin", true)
	cat := f.category(t, "Books")
	f.product(t, cat.ID, "Protected", "10.00")
	p := f.product(t, cat.ID, "A", "10.00")
	order, err := f.orders.PlaceOrder(ctx, alice, f.cartWith(t, map[uint]int{p.ID: 1}))
	require.NoError(t, err)

	require.NoError(t, f.products.Delete(ctx, staff, p.ID))

	reloaded, err := f.orders.GetOrder(ctx, alice, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", reloaded.Items[0].Product.Title)
}

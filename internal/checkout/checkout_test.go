package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConf(t *testing.T, store Store) *Conf {
	t.Helper()
	conf, err := NewConf(store)
	require.NoError(t, err)
	return conf
}

func TestPlaceOrder_Success(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, decimal.RequireFromString("10.00"), 5)
	store.addCart(100, 7)
	store.addLine(7, 1, 3)

	conf := newTestConf(t, store)
	checkoutTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conf.now = func() time.Time { return checkoutTime }

	placed, err := conf.PlaceOrder(context.Background(), 100, "card")

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("30.00").Equal(placed.Total), "total = %s", placed.Total)

	// Stock decremented, cart cleared.
	assert.Equal(t, 2, store.state.stock[1])
	assert.Empty(t, store.state.lines[7])

	// One order with the computed total and the Paid status.
	order, ok := store.state.orders[placed.OrderID]
	require.True(t, ok)
	assert.Equal(t, StatusPaid, order.Status)
	assert.True(t, order.Total.Equal(placed.Total))
	assert.Equal(t, int64(100), order.CustomerID)
	assert.Equal(t, checkoutTime.AddDate(0, 0, 4), order.EstimatedDelivery)

	// One line with the snapshot unit price.
	lines := store.state.orderLines[placed.OrderID]
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("10.00").Equal(lines[0].UnitPrice))

	// One payment matching the order total.
	require.Len(t, store.state.payments, 1)
	payment := store.state.payments[0]
	assert.Equal(t, placed.OrderID, payment.OrderID)
	assert.Equal(t, "card", payment.Method)
	assert.Equal(t, PaymentStatusSuccess, payment.Status)
	assert.True(t, payment.Amount.Equal(placed.Total))
}

func TestPlaceOrder_TotalOverMultipleLines(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, decimal.RequireFromString("19.99"), 10)
	store.addProduct(2, decimal.RequireFromString("0.01"), 10)
	store.addCart(100, 7)
	store.addLine(7, 1, 3)
	store.addLine(7, 2, 1)

	conf := newTestConf(t, store)
	placed, err := conf.PlaceOrder(context.Background(), 100, "card")

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("59.98").Equal(placed.Total), "total = %s", placed.Total)
	require.Len(t, store.state.orderLines[placed.OrderID], 2)
}

func TestPlaceOrder_DefaultPaymentMethod(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, decimal.RequireFromString("5.00"), 1)
	store.addCart(100, 7)
	store.addLine(7, 1, 1)

	conf := newTestConf(t, store)
	_, err := conf.PlaceOrder(context.Background(), 100, "")

	require.NoError(t, err)
	require.Len(t, store.state.payments, 1)
	assert.Equal(t, DefaultPaymentMethod, store.state.payments[0].Method)
}

func TestPlaceOrder_NoCart(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, decimal.RequireFromString("10.00"), 5)

	conf := newTestConf(t, store)
	_, err := conf.PlaceOrder(context.Background(), 100, "card")

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, store.state.orders)
	assert.Empty(t, store.state.payments)
	assert.Equal(t, 5, store.state.stock[1])
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, decimal.RequireFromString("10.00"), 5)
	store.addCart(100, 7)

	conf := newTestConf(t, store)
	_, err := conf.PlaceOrder(context.Background(), 100, "card")

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, store.state.orders)
	assert.Empty(t, store.state.payments)
}

func TestPlaceOrder_InsufficientStockRollsBackEverything(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, decimal.RequireFromString("10.00"), 5)
	store.addProduct(2, decimal.RequireFromString("4.00"), 1)
	store.addCart(100, 7)
	store.addLine(7, 1, 2) // enough
	store.addLine(7, 2, 3) // not enough

	conf := newTestConf(t, store)
	_, err := conf.PlaceOrder(context.Background(), 100, "card")

	assert.ErrorIs(t, err, ErrInsufficientStock)

	// No partial application: stock, cart, orders and payments untouched.
	assert.Equal(t, 5, store.state.stock[1])
	assert.Equal(t, 1, store.state.stock[2])
	assert.Len(t, store.state.lines[7], 2)
	assert.Empty(t, store.state.orders)
	assert.Empty(t, store.state.payments)
}

func TestPlaceOrder_PaymentFailureRollsBackEverything(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, decimal.RequireFromString("10.00"), 5)
	store.addCart(100, 7)
	store.addLine(7, 1, 3)

	boom := errors.New("payments table unavailable")
	conf := newTestConf(t, &failingStore{inner: store, failPayment: boom})

	_, err := conf.PlaceOrder(context.Background(), 100, "card")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrEmptyCart)
	assert.NotErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 5, store.state.stock[1])
	assert.Len(t, store.state.lines[7], 1)
	assert.Empty(t, store.state.orders)
	assert.Empty(t, store.state.payments)
}

func TestPlaceOrder_OrderInsertFailure(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, decimal.RequireFromString("10.00"), 5)
	store.addCart(100, 7)
	store.addLine(7, 1, 3)

	boom := errors.New("orders table unavailable")
	conf := newTestConf(t, &failingStore{inner: store, failOrder: boom})

	_, err := conf.PlaceOrder(context.Background(), 100, "card")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 5, store.state.stock[1])
	assert.Len(t, store.state.lines[7], 1)
}

func TestPlaceOrder_ConcurrentCheckoutsOverSharedStock(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, decimal.RequireFromString("10.00"), 5)
	store.addCart(100, 7)
	store.addLine(7, 1, 3)
	store.addCart(200, 8)
	store.addLine(8, 1, 3)

	conf := newTestConf(t, store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, customerID := range []int64{100, 200} {
		wg.Add(1)
		go func(i int, customerID int64) {
			defer wg.Done()
			_, errs[i] = conf.PlaceOrder(context.Background(), customerID, "card")
		}(i, customerID)
	}
	wg.Wait()

	// Together the carts want 6 of 5 in stock: exactly one checkout wins.
	var won, lost int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientStock)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	assert.Equal(t, 2, store.state.stock[1])
	assert.Len(t, store.state.orders, 1)
	assert.Len(t, store.state.payments, 1)

	// The loser's cart is untouched; the winner's is empty.
	remaining := len(store.state.lines[7]) + len(store.state.lines[8])
	assert.Equal(t, 1, remaining)
}

func TestPlaceOrder_PriceSnapshotImmuneToLaterChanges(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, decimal.RequireFromString("10.00"), 5)
	store.addCart(100, 7)
	store.addLine(7, 1, 2)

	conf := newTestConf(t, store)
	placed, err := conf.PlaceOrder(context.Background(), 100, "card")
	require.NoError(t, err)

	// A later catalog price change must not alter the recorded order.
	store.state.prices[1] = decimal.RequireFromString("99.99")

	lines := store.state.orderLines[placed.OrderID]
	require.Len(t, lines, 1)
	assert.True(t, decimal.RequireFromString("10.00").Equal(lines[0].UnitPrice))
	assert.True(t, decimal.RequireFromString("20.00").Equal(store.state.orders[placed.OrderID].Total))
}

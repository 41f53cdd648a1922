package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ecommerce-backend/internal/auth"
	"ecommerce-backend/internal/checkout"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore implements checkout.Store with canned data so the checkout
// endpoint can be exercised without a database.
type stubStore struct {
	noCart    bool
	lines     []checkout.Line
	stock     map[int64]int
	failWith  error
	committed bool
	cleared   bool
	payments  []checkout.NewPayment
}

func (s *stubStore) InTx(_ context.Context, fn func(checkout.Session) error) error {
	if err := fn(s); err != nil {
		return err
	}
	s.committed = true
	return nil
}

func (s *stubStore) CartForCustomer(context.Context, int64) (int64, error) {
	if s.noCart {
		return 0, checkout.ErrNoCart
	}
	return 1, nil
}

func (s *stubStore) LockLines(context.Context, int64) ([]checkout.Line, error) {
	return s.lines, nil
}

func (s *stubStore) InsertOrder(context.Context, checkout.NewOrder) (int64, error) {
	if s.failWith != nil {
		return 0, s.failWith
	}
	return 55, nil
}

func (s *stubStore) InsertOrderLine(context.Context, int64, checkout.Line) error {
	return nil
}

func (s *stubStore) DecrementStock(_ context.Context, productID int64, qty int) error {
	if s.stock[productID] < qty {
		return checkout.ErrInsufficientStock
	}
	s.stock[productID] -= qty
	return nil
}

func (s *stubStore) InsertPayment(_ context.Context, p checkout.NewPayment) error {
	s.payments = append(s.payments, p)
	return nil
}

func (s *stubStore) ClearLines(context.Context, int64) error {
	s.cleared = true
	return nil
}

func newCheckoutRouter(t *testing.T, store checkout.Store) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	keys, err := auth.NewKeys("test-secret")
	require.NoError(t, err)

	ckConf, err := checkout.NewConf(store)
	require.NoError(t, err)

	h := NewHandler(nil, nil, nil, ckConf, nil, nil, nil, nil, keys)
	r := API(h)

	token, err := keys.GenerateToken("100", "jane@example.com", auth.RoleCustomer)
	require.NoError(t, err)
	return r, token
}

func postOrder(r *gin.Engine, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCheckout_Success(t *testing.T) {
	store := &stubStore{
		lines: []checkout.Line{
			{CartItemID: 1, ProductID: 9, Quantity: 3, UnitPrice: decimal.RequireFromString("10.00")},
		},
		stock: map[int64]int{9: 5},
	}
	r, token := newCheckoutRouter(t, store)

	w := postOrder(r, token, `{"payment_method":"card"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"order_id":55`)
	assert.Contains(t, w.Body.String(), `"total":"30.00"`)
	assert.True(t, store.committed)
	assert.True(t, store.cleared)
	assert.Equal(t, 2, store.stock[9])
	require.Len(t, store.payments, 1)
	assert.Equal(t, "card", store.payments[0].Method)

	// Post-commit notifications run in goroutines; give them a beat so the
	// race detector sees them finish against nil kafka / unset SMTP.
	time.Sleep(10 * time.Millisecond)
}

func TestCheckout_DefaultsPaymentMethodOnEmptyBody(t *testing.T) {
	store := &stubStore{
		lines: []checkout.Line{
			{CartItemID: 1, ProductID: 9, Quantity: 1, UnitPrice: decimal.RequireFromString("5.00")},
		},
		stock: map[int64]int{9: 1},
	}
	r, token := newCheckoutRouter(t, store)

	w := postOrder(r, token, "")

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.payments, 1)
	assert.Equal(t, checkout.DefaultPaymentMethod, store.payments[0].Method)
}

func TestCheckout_NoCart(t *testing.T) {
	store := &stubStore{noCart: true}
	r, token := newCheckoutRouter(t, store)

	w := postOrder(r, token, `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cart empty")
	assert.False(t, store.committed)
}

func TestCheckout_EmptyCart(t *testing.T) {
	store := &stubStore{}
	r, token := newCheckoutRouter(t, store)

	w := postOrder(r, token, `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cart empty")
}

func TestCheckout_InsufficientStock(t *testing.T) {
	store := &stubStore{
		lines: []checkout.Line{
			{CartItemID: 1, ProductID: 9, Quantity: 3, UnitPrice: decimal.RequireFromString("10.00")},
		},
		stock: map[int64]int{9: 2},
	}
	r, token := newCheckoutRouter(t, store)

	w := postOrder(r, token, `{}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Insufficient stock")
	assert.False(t, store.committed)
	assert.False(t, store.cleared)
}

func TestCheckout_StorageFailure(t *testing.T) {
	store := &stubStore{
		lines: []checkout.Line{
			{CartItemID: 1, ProductID: 9, Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
		},
		stock:    map[int64]int{9: 5},
		failWith: errors.New("db is down"),
	}
	r, token := newCheckoutRouter(t, store)

	w := postOrder(r, token, `{}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Server error")
	assert.NotContains(t, w.Body.String(), "db is down")
	assert.False(t, store.committed)
}

func TestCheckout_Unauthenticated(t *testing.T) {
	r, _ := newCheckoutRouter(t, &stubStore{})

	w := postOrder(r, "", `{}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckout_AdminForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)

	keys, err := auth.NewKeys("test-secret")
	require.NoError(t, err)
	ckConf, err := checkout.NewConf(&stubStore{})
	require.NoError(t, err)
	h := NewHandler(nil, nil, nil, ckConf, nil, nil, nil, nil, keys)
	r := API(h)

	adminToken, err := keys.GenerateToken("1", "root@example.com", auth.RoleAdmin)
	require.NoError(t, err)

	w := postOrder(r, adminToken, `{}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

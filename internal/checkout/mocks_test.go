package checkout

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// memStore implements Store in memory with copy-on-write transactions: a
// session mutates a scratch copy of the state and the commit swaps it in.
// The mutex is held for the whole transaction, which models the row-lock
// serialization the Postgres store gets from FOR UPDATE.
type memStore struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	carts      map[int64]int64 // customer id -> cart id
	lines      map[int64][]Line
	stock      map[int64]int
	prices     map[int64]decimal.Decimal
	orders     map[int64]NewOrder
	orderLines map[int64][]Line
	payments   []NewPayment
	nextOrder  int64
}

func newMemStore() *memStore {
	return &memStore{
		state: memState{
			carts:      map[int64]int64{},
			lines:      map[int64][]Line{},
			stock:      map[int64]int{},
			prices:     map[int64]decimal.Decimal{},
			orders:     map[int64]NewOrder{},
			orderLines: map[int64][]Line{},
			nextOrder:  1,
		},
	}
}

func (m *memStore) addProduct(productID int64, price decimal.Decimal, stock int) {
	m.state.prices[productID] = price
	m.state.stock[productID] = stock
}

func (m *memStore) addCart(customerID, cartID int64) {
	m.state.carts[customerID] = cartID
}

func (m *memStore) addLine(cartID, productID int64, qty int) {
	m.state.lines[cartID] = append(m.state.lines[cartID], Line{
		CartItemID: int64(len(m.state.lines[cartID]) + 1),
		ProductID:  productID,
		Quantity:   qty,
		UnitPrice:  m.state.prices[productID],
	})
}

func (s memState) clone() memState {
	out := memState{
		carts:      map[int64]int64{},
		lines:      map[int64][]Line{},
		stock:      map[int64]int{},
		prices:     map[int64]decimal.Decimal{},
		orders:     map[int64]NewOrder{},
		orderLines: map[int64][]Line{},
		payments:   append([]NewPayment(nil), s.payments...),
		nextOrder:  s.nextOrder,
	}
	for k, v := range s.carts {
		out.carts[k] = v
	}
	for k, v := range s.lines {
		out.lines[k] = append([]Line(nil), v...)
	}
	for k, v := range s.stock {
		out.stock[k] = v
	}
	for k, v := range s.prices {
		out.prices[k] = v
	}
	for k, v := range s.orders {
		out.orders[k] = v
	}
	for k, v := range s.orderLines {
		out.orderLines[k] = append([]Line(nil), v...)
	}
	return out
}

func (m *memStore) InTx(_ context.Context, fn func(Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	scratch := m.state.clone()
	if err := fn(&memSession{state: &scratch}); err != nil {
		return err
	}
	m.state = scratch
	return nil
}

type memSession struct {
	state *memState
}

func (s *memSession) CartForCustomer(_ context.Context, customerID int64) (int64, error) {
	cartID, ok := s.state.carts[customerID]
	if !ok {
		return 0, ErrNoCart
	}
	return cartID, nil
}

func (s *memSession) LockLines(_ context.Context, cartID int64) ([]Line, error) {
	lines := make([]Line, len(s.state.lines[cartID]))
	copy(lines, s.state.lines[cartID])
	for i := range lines {
		lines[i].UnitPrice = s.state.prices[lines[i].ProductID]
	}
	return lines, nil
}

func (s *memSession) InsertOrder(_ context.Context, order NewOrder) (int64, error) {
	orderID := s.state.nextOrder
	s.state.nextOrder++
	s.state.orders[orderID] = order
	return orderID, nil
}

func (s *memSession) InsertOrderLine(_ context.Context, orderID int64, line Line) error {
	s.state.orderLines[orderID] = append(s.state.orderLines[orderID], line)
	return nil
}

func (s *memSession) DecrementStock(_ context.Context, productID int64, qty int) error {
	if s.state.stock[productID] < qty {
		return ErrInsufficientStock
	}
	s.state.stock[productID] -= qty
	return nil
}

func (s *memSession) InsertPayment(_ context.Context, payment NewPayment) error {
	s.state.payments = append(s.state.payments, payment)
	return nil
}

func (s *memSession) ClearLines(_ context.Context, cartID int64) error {
	delete(s.state.lines, cartID)
	return nil
}

// failingStore wraps another store and makes one session operation fail, for
// rollback tests.
type failingStore struct {
	inner       Store
	failPayment error
	failOrder   error
}

func (f *failingStore) InTx(ctx context.Context, fn func(Session) error) error {
	return f.inner.InTx(ctx, func(s Session) error {
		return fn(&failingSession{Session: s, store: f})
	})
}

type failingSession struct {
	Session
	store *failingStore
}

func (f *failingSession) InsertPayment(ctx context.Context, payment NewPayment) error {
	if f.store.failPayment != nil {
		return f.store.failPayment
	}
	return f.Session.InsertPayment(ctx, payment)
}

func (f *failingSession) InsertOrder(ctx context.Context, order NewOrder) (int64, error) {
	if f.store.failOrder != nil {
		return 0, f.store.failOrder
	}
	return f.Session.InsertOrder(ctx, order)
}

// Package checkout converts a customer's cart into a durable order, stock
// decrement and payment record inside one storage transaction.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Session is one in-flight storage transaction. Every write issued through it
// becomes visible atomically on commit or not at all.
type Session interface {
	// CartForCustomer resolves the customer's cart id, ErrNoCart if the
	// customer never opened one.
	CartForCustomer(ctx context.Context, customerID int64) (int64, error)

	// LockLines reads the cart's lines joined with the current product price
	// and locks the product rows until the transaction ends, so concurrent
	// checkouts or stock edits on the same products serialize behind it.
	LockLines(ctx context.Context, cartID int64) ([]Line, error)

	InsertOrder(ctx context.Context, order NewOrder) (int64, error)
	InsertOrderLine(ctx context.Context, orderID int64, line Line) error

	// DecrementStock subtracts qty from the product's stock, or returns
	// ErrInsufficientStock if that would drive it negative.
	DecrementStock(ctx context.Context, productID int64, qty int) error

	InsertPayment(ctx context.Context, payment NewPayment) error
	ClearLines(ctx context.Context, cartID int64) error
}

// Store runs a function inside one transaction: commit when it returns nil,
// roll back everything otherwise.
type Store interface {
	InTx(ctx context.Context, fn func(Session) error) error
}

type Conf struct {
	store Store
	now   func() time.Time
}

func NewConf(store Store) (*Conf, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	return &Conf{store: store, now: time.Now}, nil
}

// PlaceOrder checks out the customer's cart: it locks the cart's product
// rows, snapshots prices, writes the order with its lines, decrements stock,
// records the payment and clears the cart, all in one transaction. Nothing is
// observable until commit; any failure rolls everything back.
func (c *Conf) PlaceOrder(ctx context.Context, customerID int64, paymentMethod string) (PlacedOrder, error) {
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	var placed PlacedOrder
	err := c.store.InTx(ctx, func(s Session) error {
		cartID, err := s.CartForCustomer(ctx, customerID)
		if err != nil {
			if errors.Is(err, ErrNoCart) {
				return ErrEmptyCart
			}
			return fmt.Errorf("resolving cart: %w", err)
		}

		lines, err := s.LockLines(ctx, cartID)
		if err != nil {
			return fmt.Errorf("locking cart lines: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		for _, line := range lines {
			total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		now := c.now().UTC()
		orderID, err := s.InsertOrder(ctx, NewOrder{
			CustomerID:        customerID,
			Total:             total,
			Status:            StatusPaid,
			EstimatedDelivery: estimateDelivery(now, len(lines)),
		})
		if err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}

		for _, line := range lines {
			if err := s.InsertOrderLine(ctx, orderID, line); err != nil {
				return fmt.Errorf("inserting order line: %w", err)
			}
			if err := s.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				if errors.Is(err, ErrInsufficientStock) {
					return ErrInsufficientStock
				}
				return fmt.Errorf("decrementing stock: %w", err)
			}
		}

		err = s.InsertPayment(ctx, NewPayment{
			CustomerID: customerID,
			OrderID:    orderID,
			Amount:     total,
			Method:     paymentMethod,
			Status:     PaymentStatusSuccess,
		})
		if err != nil {
			return fmt.Errorf("inserting payment: %w", err)
		}

		if err := s.ClearLines(ctx, cartID); err != nil {
			return fmt.Errorf("clearing cart: %w", err)
		}

		placed = PlacedOrder{OrderID: orderID, Total: total, Lines: lines}
		return nil
	})
	if err != nil {
		return PlacedOrder{}, err
	}
	return placed, nil
}

// estimateDelivery gives a rough ship date: a three day base plus one day per
// distinct line.
func estimateDelivery(from time.Time, lineCount int) time.Time {
	return from.AddDate(0, 0, 3+lineCount)
}

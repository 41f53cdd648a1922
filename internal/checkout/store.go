package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGStore implements Store on Postgres. Each InTx call owns one *sql.Tx and
// hands out a session bound to it.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) (*PGStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &PGStore{db: db}, nil
}

func (s *PGStore) InTx(ctx context.Context, fn func(Session) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(&pgSession{tx: tx}); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback tx: %w", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}

type pgSession struct {
	tx *sql.Tx
}

func (s *pgSession) CartForCustomer(ctx context.Context, customerID int64) (int64, error) {
	var cartID int64
	query := `SELECT cart_id FROM carts WHERE customer_id = $1`
	err := s.tx.QueryRowContext(ctx, query, customerID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoCart
		}
		return 0, fmt.Errorf("failed to query cart: %w", err)
	}
	return cartID, nil
}

func (s *pgSession) LockLines(ctx context.Context, cartID int64) ([]Line, error) {
	// Product rows are locked in product_id order so two checkouts sharing
	// products always take the locks in the same sequence.
	query := `
		SELECT ci.cart_item_id, ci.product_id, ci.quantity, p.price
		FROM cart_items ci
		JOIN products p ON p.product_id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.product_id
		FOR UPDATE OF p
	`
	rows, err := s.tx.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.CartItemID, &line.ProductID, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}
	return lines, nil
}

func (s *pgSession) InsertOrder(ctx context.Context, order NewOrder) (int64, error) {
	var orderID int64
	query := `
		INSERT INTO orders (customer_id, total_amount, status, estimated_delivery_date)
		VALUES ($1, $2, $3, $4)
		RETURNING order_id
	`
	err := s.tx.QueryRowContext(ctx, query, order.CustomerID, order.Total, order.Status, order.EstimatedDelivery).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}
	return orderID, nil
}

func (s *pgSession) InsertOrderLine(ctx context.Context, orderID int64, line Line) error {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.tx.ExecContext(ctx, query, orderID, line.ProductID, line.Quantity, line.UnitPrice); err != nil {
		return fmt.Errorf("failed to insert order item: %w", err)
	}
	return nil
}

func (s *pgSession) DecrementStock(ctx context.Context, productID int64, qty int) error {
	// The product row is already locked by LockLines, so the stock guard in
	// the WHERE clause cannot race with another checkout.
	query := `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE product_id = $2 AND stock >= $1
	`
	result, err := s.tx.ExecContext(ctx, query, qty, productID)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (s *pgSession) InsertPayment(ctx context.Context, payment NewPayment) error {
	query := `
		INSERT INTO payments (customer_id, order_id, amount, method, status)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.tx.ExecContext(ctx, query, payment.CustomerID, payment.OrderID, payment.Amount, payment.Method, payment.Status)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (s *pgSession) ClearLines(ctx context.Context, cartID int64) error {
	if _, err := s.tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	return nil
}

package orders

import (
	"context"
	"database/sql"
	"fmt"
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// ListByCustomer returns the customer's own orders, newest first.
func (c *Conf) ListByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	query := `
		SELECT order_id, customer_id, total_amount, status, estimated_delivery_date, created_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var list []Order
	for rows.Next() {
		var o Order
		var eta sql.NullTime
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.TotalAmount, &o.Status, &eta, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if eta.Valid {
			o.EstimatedDelivery = &eta.Time
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return list, nil
}

// ListAll returns every order joined with the customer's email, newest first.
// Admin-only surface.
func (c *Conf) ListAll(ctx context.Context) ([]Order, error) {
	query := `
		SELECT o.order_id, o.customer_id, cu.email, o.total_amount, o.status, o.estimated_delivery_date, o.created_at
		FROM orders o
		JOIN customers cu ON cu.customer_id = o.customer_id
		ORDER BY o.created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all orders: %w", err)
	}
	defer rows.Close()

	var list []Order
	for rows.Next() {
		var o Order
		var eta sql.NullTime
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.CustomerEmail, &o.TotalAmount, &o.Status, &eta, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if eta.Valid {
			o.EstimatedDelivery = &eta.Time
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return list, nil
}

// ListItems returns the snapshotted lines of one order.
func (c *Conf) ListItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	query := `
		SELECT order_item_id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY order_item_id
	`
	rows, err := c.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return items, nil
}

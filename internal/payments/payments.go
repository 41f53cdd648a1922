package payments

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

// ListAll returns every payment joined with the customer's email, newest
// first. Admin-only surface; payments are written solely by checkout.
func (c *Conf) ListAll(ctx context.Context) ([]Payment, error) {
	query := `
		SELECT p.payment_id, p.customer_id, cu.email, p.order_id, p.amount, p.method, p.status, p.created_at
		FROM payments p
		JOIN customers cu ON cu.customer_id = p.customer_id
		ORDER BY p.created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var list []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.CustomerEmail, &p.OrderID, &p.Amount, &p.Method, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return list, nil
}

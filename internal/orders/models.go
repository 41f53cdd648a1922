package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a durable record of one checkout. Its amounts and lines never
// change after creation; only the status moves with fulfilment.
type Order struct {
	ID                int64           `json:"order_id"`
	CustomerID        int64           `json:"customer_id"`
	CustomerEmail     string          `json:"customer_email,omitempty"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Status            string          `json:"status"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery_date,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// OrderItem records a line with the unit price snapshotted at checkout, so
// later catalog price changes never alter historical orders.
type OrderItem struct {
	ID        int64           `json:"order_item_id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

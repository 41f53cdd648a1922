package payments

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is the record of one payment attempt tied to one order. Amount
// always equals the order total it was recorded with.
type Payment struct {
	ID            int64           `json:"payment_id"`
	CustomerID    int64           `json:"customer_id"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	OrderID       int64           `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

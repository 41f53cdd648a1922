package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// StatusPaid marks an order whose (simulated) payment succeeded at
	// checkout. Fulfilment moves it onward later.
	StatusPaid = "Paid"

	// PaymentStatusSuccess marks the payment row recorded with the order.
	PaymentStatusSuccess = "Success"

	// DefaultPaymentMethod applies when the request omits the method.
	DefaultPaymentMethod = "mobile_wallet"
)

// Line is one cart line joined with the product price read under the row
// lock. UnitPrice is the snapshot price that goes on the order item.
type Line struct {
	CartItemID int64
	ProductID  int64
	Quantity   int
	UnitPrice  decimal.Decimal
}

// NewOrder carries the fields of the order row written at checkout.
type NewOrder struct {
	CustomerID        int64
	Total             decimal.Decimal
	Status            string
	EstimatedDelivery time.Time
}

// NewPayment carries the fields of the payment row written with the order.
type NewPayment struct {
	CustomerID int64
	OrderID    int64
	Amount     decimal.Decimal
	Method     string
	Status     string
}

// PlacedOrder is the result of a successful checkout.
type PlacedOrder struct {
	OrderID int64           `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
	Lines   []Line          `json:"-"`
}

package cart

import "github.com/shopspring/decimal"

// CartItem is one pending line joined with its product for display.
type CartItem struct {
	CartItemID int64           `json:"cart_item_id"`
	ProductID  int64           `json:"product_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	ImageURL   string          `json:"image_url"`
	Quantity   int             `json:"quantity"`
}

type CartResponse struct {
	CartID int64      `json:"cart_id"`
	Items  []CartItem `json:"items"`
}

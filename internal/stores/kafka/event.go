package kafka

import "time"

const TopicOrderPlaced = `order-service.order-placed`

// OrderPlacedEvent is published once per order line after a checkout commits,
// for downstream consumers (fulfilment, analytics).
type OrderPlacedEvent struct {
	OrderId   int64     `json:"order_id"`
	ProductId int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

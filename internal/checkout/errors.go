package checkout

import "errors"

var (
	// ErrEmptyCart is returned when the customer has no cart or no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrNoCart is returned by Session.CartForCustomer when the customer has
	// never opened a cart. PlaceOrder folds it into ErrEmptyCart.
	ErrNoCart = errors.New("no cart for customer")

	// ErrInsufficientStock aborts the whole checkout when any decrement would
	// drive a product's stock negative.
	ErrInsufficientStock = errors.New("insufficient stock")
)

package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("cart item not found")
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

// GetCart returns the customer's cart and its items, creating the cart on
// first access. Carts are reused across checkouts; only their items come and
// go.
func (c *Conf) GetCart(ctx context.Context, customerID int64) (*CartResponse, error) {
	var cartID int64
	var items []CartItem

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		cartID, err = getOrCreateCart(ctx, tx, customerID)
		if err != nil {
			return err
		}

		queryItems := `
			SELECT ci.cart_item_id, ci.product_id, p.name, p.price, p.image_url, ci.quantity
			FROM cart_items ci
			JOIN products p ON p.product_id = ci.product_id
			WHERE ci.cart_id = $1
			ORDER BY ci.created_at
		`
		rows, err := tx.QueryContext(ctx, queryItems, cartID)
		if err != nil {
			return fmt.Errorf("failed to query cart items: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var item CartItem
			if err := rows.Scan(&item.CartItemID, &item.ProductID, &item.Name, &item.Price, &item.ImageURL, &item.Quantity); err != nil {
				return fmt.Errorf("failed to scan cart item: %w", err)
			}
			items = append(items, item)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating cart items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CartResponse{CartID: cartID, Items: items}, nil
}

// AddItem puts a product into the customer's cart. Adding a product that is
// already present increments its quantity; the cart row is locked so
// concurrent adds for the same cart never lose an increment.
func (c *Conf) AddItem(ctx context.Context, customerID, productID int64, quantity int) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		queryProduct := `SELECT EXISTS (SELECT 1 FROM products WHERE product_id = $1)`
		if err := tx.QueryRowContext(ctx, queryProduct, productID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check product: %w", err)
		}
		if !exists {
			return ErrProductNotFound
		}

		cartID, err := getOrCreateCartForUpdate(ctx, tx, customerID)
		if err != nil {
			return err
		}

		queryCartItem := `
			SELECT cart_item_id, quantity
			FROM cart_items
			WHERE cart_id = $1 AND product_id = $2
		`
		var cartItemID int64
		var existingQuantity int
		err = tx.QueryRowContext(ctx, queryCartItem, cartID, productID).Scan(&cartItemID, &existingQuantity)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				queryInsert := `
					INSERT INTO cart_items (cart_id, product_id, quantity)
					VALUES ($1, $2, $3)
				`
				if _, err := tx.ExecContext(ctx, queryInsert, cartID, productID, quantity); err != nil {
					return fmt.Errorf("failed to add product to cart: %w", err)
				}
				return nil
			}
			return fmt.Errorf("failed to query cart items: %w", err)
		}

		queryUpdate := `
			UPDATE cart_items
			SET quantity = $1, updated_at = NOW()
			WHERE cart_item_id = $2
		`
		if _, err := tx.ExecContext(ctx, queryUpdate, existingQuantity+quantity, cartItemID); err != nil {
			return fmt.Errorf("failed to update cart item quantity: %w", err)
		}
		return nil
	})
}

// RemoveItem deletes one line from the customer's cart by its id. The cart
// ownership check keeps one customer from removing another's items.
func (c *Conf) RemoveItem(ctx context.Context, customerID, cartItemID int64) error {
	query := `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.cart_id = c.cart_id AND ci.cart_item_id = $1 AND c.customer_id = $2
	`
	result, err := c.db.ExecContext(ctx, query, cartItemID, customerID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func getOrCreateCart(ctx context.Context, tx *sql.Tx, customerID int64) (int64, error) {
	return getOrCreate(ctx, tx, customerID, `SELECT cart_id FROM carts WHERE customer_id = $1`)
}

func getOrCreateCartForUpdate(ctx context.Context, tx *sql.Tx, customerID int64) (int64, error) {
	return getOrCreate(ctx, tx, customerID, `SELECT cart_id FROM carts WHERE customer_id = $1 FOR UPDATE`)
}

func getOrCreate(ctx context.Context, tx *sql.Tx, customerID int64, querySelect string) (int64, error) {
	var cartID int64
	err := tx.QueryRowContext(ctx, querySelect, customerID).Scan(&cartID)
	if err == nil {
		return cartID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to query cart: %w", err)
	}

	// Lazily created on first access. ON CONFLICT absorbs the race where two
	// requests create the cart at the same time.
	queryCreate := `
		INSERT INTO carts (customer_id)
		VALUES ($1)
		ON CONFLICT (customer_id) DO UPDATE SET customer_id = EXCLUDED.customer_id
		RETURNING cart_id
	`
	if err := tx.QueryRowContext(ctx, queryCreate, customerID).Scan(&cartID); err != nil {
		return 0, fmt.Errorf("failed to create cart: %w", err)
	}
	return cartID, nil
}

func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}

package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("product not found")

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

func (c *Conf) ListProducts(ctx context.Context) ([]Product, error) {
	query := `
		SELECT product_id, name, description, price, stock, image_url, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

func (c *Conf) GetProductByID(ctx context.Context, productID int64) (Product, error) {
	var p Product
	query := `
		SELECT product_id, name, description, price, stock, image_url, created_at, updated_at
		FROM products
		WHERE product_id = $1
	`
	err := c.db.QueryRowContext(ctx, query, productID).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

func (c *Conf) InsertProduct(ctx context.Context, np NewProduct) (Product, error) {
	var p Product
	query := `
		INSERT INTO products (name, description, price, stock, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING product_id, name, description, price, stock, image_url, created_at, updated_at
	`
	err := c.db.QueryRowContext(ctx, query, np.Name, np.Description, np.Price, np.Stock, np.ImageURL).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return p, nil
}

// UpdateProduct overwrites the catalog fields of an existing product. The row
// is locked first so an edit never interleaves with a checkout decrement on
// the stock column.
func (c *Conf) UpdateProduct(ctx context.Context, productID int64, np NewProduct) (Product, error) {
	var p Product
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		queryLock := `SELECT product_id FROM products WHERE product_id = $1 FOR UPDATE`
		var id int64
		if err := tx.QueryRowContext(ctx, queryLock, productID).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock product: %w", err)
		}

		queryUpdate := `
			UPDATE products
			SET name = $1, description = $2, price = $3, stock = $4, image_url = $5, updated_at = NOW()
			WHERE product_id = $6
			RETURNING product_id, name, description, price, stock, image_url, created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, queryUpdate, np.Name, np.Description, np.Price, np.Stock, np.ImageURL, productID).
			Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (c *Conf) DeleteProduct(ctx context.Context, productID int64) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM products WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
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

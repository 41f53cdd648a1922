package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
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

// InsertCustomer registers a new customer with a bcrypt password hash.
func (c *Conf) InsertCustomer(ctx context.Context, nc NewCustomer) (Customer, error) {
	var exists bool
	queryEmail := `SELECT EXISTS (SELECT 1 FROM customers WHERE email = $1)`
	if err := c.db.QueryRowContext(ctx, queryEmail, nc.Email).Scan(&exists); err != nil {
		return Customer{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return Customer{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nc.Password), bcrypt.DefaultCost)
	if err != nil {
		return Customer{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var dob sql.NullString
	if nc.DOB != "" {
		dob = sql.NullString{String: nc.DOB, Valid: true}
	}

	var customer Customer
	queryInsert := `
		INSERT INTO customers (name, email, phone, address, dob, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING customer_id, name, email, phone, address, created_at
	`
	err = c.db.QueryRowContext(ctx, queryInsert, nc.Name, nc.Email, nc.Phone, nc.Address, dob, string(hash)).
		Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &customer.Address, &customer.CreatedAt)
	if err != nil {
		return Customer{}, fmt.Errorf("failed to insert customer: %w", err)
	}
	return customer, nil
}

// AuthenticateCustomer checks the email/password pair and returns the
// customer on success. A missing account and a wrong password are not
// distinguishable by the caller.
func (c *Conf) AuthenticateCustomer(ctx context.Context, email, password string) (Customer, error) {
	var customer Customer
	var hash string
	query := `
		SELECT customer_id, name, email, phone, address, password_hash, created_at
		FROM customers
		WHERE email = $1
	`
	err := c.db.QueryRowContext(ctx, query, email).
		Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &customer.Address, &hash, &customer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Customer{}, ErrInvalidCredentials
		}
		return Customer{}, fmt.Errorf("failed to query customer: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Customer{}, ErrInvalidCredentials
	}
	return customer, nil
}

// InsertAdmin registers a new admin account.
func (c *Conf) InsertAdmin(ctx context.Context, na NewAdmin) (Admin, error) {
	var exists bool
	queryEmail := `SELECT EXISTS (SELECT 1 FROM admins WHERE email = $1)`
	if err := c.db.QueryRowContext(ctx, queryEmail, na.Email).Scan(&exists); err != nil {
		return Admin{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return Admin{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(na.Password), bcrypt.DefaultCost)
	if err != nil {
		return Admin{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var admin Admin
	queryInsert := `
		INSERT INTO admins (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING admin_id, name, email, created_at
	`
	err = c.db.QueryRowContext(ctx, queryInsert, na.Name, na.Email, string(hash)).
		Scan(&admin.ID, &admin.Name, &admin.Email, &admin.CreatedAt)
	if err != nil {
		return Admin{}, fmt.Errorf("failed to insert admin: %w", err)
	}
	return admin, nil
}

// AuthenticateAdmin checks the email/password pair against the admins table.
func (c *Conf) AuthenticateAdmin(ctx context.Context, email, password string) (Admin, error) {
	var admin Admin
	var hash string
	query := `
		SELECT admin_id, name, email, password_hash, created_at
		FROM admins
		WHERE email = $1
	`
	err := c.db.QueryRowContext(ctx, query, email).
		Scan(&admin.ID, &admin.Name, &admin.Email, &hash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Admin{}, ErrInvalidCredentials
		}
		return Admin{}, fmt.Errorf("failed to query admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Admin{}, ErrInvalidCredentials
	}
	return admin, nil
}

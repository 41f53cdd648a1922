package users

import "time"

// Customer represents a shopper account. PasswordHash never leaves the
// package boundary in responses.
type Customer struct {
	ID        int64     `json:"customer_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

type NewCustomer struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	DOB      string `json:"dob"`
	Password string `json:"password" validate:"required,min=8"`
}

type Admin struct {
	ID        int64     `json:"admin_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type NewAdmin struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

package models

import "time"

// Customer belongs to one store. Balance is a cached value maintained by the
// ledger service: it always equals the signed sum of the customer's payment
// rows. Positive balance means the customer holds credit with the store,
// negative means the customer owes the store.
type Customer struct {
	ID        int       `json:"id"`
	StoreID   int       `json:"store_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCustomerRequest represents the request body for creating a customer
type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// UpdateCustomerRequest represents the request body for updating a customer.
// Balance is deliberately absent: only the ledger service writes it.
type UpdateCustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

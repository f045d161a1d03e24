package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID          int         `json:"id"`
	StoreID     int         `json:"store_id"`
	CustomerID  *int        `json:"customer_id,omitempty"`
	OrderNumber string      `json:"order_number"`
	TotalAmount float64     `json:"total_amount"`
	Status      OrderStatus `json:"status"`
	Notes       string      `json:"notes,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	CustomerName string      `json:"customer_name,omitempty"`
	Items        []OrderItem `json:"items,omitempty"`
}

// OrderItem rows are created atomically with their order and never standalone.
type OrderItem struct {
	ID          int       `json:"id"`
	OrderID     int       `json:"order_id"`
	ProductID   *int      `json:"product_id,omitempty"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalPrice  float64   `json:"total_price"`
	CreatedAt   time.Time `json:"created_at"`
}

// CheckoutItem is one line of a checkout request.
type CheckoutItem struct {
	ProductID   *int    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// CheckoutRequest creates an order with its items and settles the paid
// portion (and any shortfall as debt) through the ledger when a customer is
// attached.
type CheckoutRequest struct {
	CustomerID *int           `json:"customer_id"`
	Items      []CheckoutItem `json:"items"`
	AmountPaid float64        `json:"amount_paid"`
	Completed  bool           `json:"completed"` // POS sales complete immediately
	Notes      string         `json:"notes"`
}

// CheckoutResult reports a finished checkout. Payment/Debt are nil when the
// corresponding ledger step did not apply (no customer, nothing paid, no
// shortfall).
type CheckoutResult struct {
	Order   *Order        `json:"order"`
	Payment *LedgerResult `json:"payment,omitempty"`
	Debt    *LedgerResult `json:"debt,omitempty"`
}

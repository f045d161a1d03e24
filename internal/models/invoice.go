package models

import "time"

type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice tracks an amount owed. PaidAmount is derived at read time from the
// sum of payments referencing the invoice, never stored redundantly, so it
// cannot drift from payment history.
type Invoice struct {
	ID            int           `json:"id"`
	StoreID       int           `json:"store_id"`
	CustomerID    *int          `json:"customer_id,omitempty"`
	InvoiceNumber string        `json:"invoice_number"`
	TotalAmount   float64       `json:"total_amount"`
	PaidAmount    float64       `json:"paid_amount"`
	Status        InvoiceStatus `json:"status"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	CustomerName string `json:"customer_name,omitempty"`
}

// CreateInvoiceRequest represents the request body for creating an invoice
type CreateInvoiceRequest struct {
	CustomerID  *int       `json:"customer_id"`
	TotalAmount float64    `json:"total_amount"`
	DueDate     *time.Time `json:"due_date"`
	Notes       string     `json:"notes"`
}

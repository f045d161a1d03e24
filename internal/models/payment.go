package models

import "time"

// PaymentMethod is how money changed hands.
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "cash"
	PaymentMethodCard          PaymentMethod = "card"
	PaymentMethodBankTransfer  PaymentMethod = "bank_transfer"
	PaymentMethodCheck         PaymentMethod = "check"
	PaymentMethodDigitalWallet PaymentMethod = "digital_wallet"
	PaymentMethodOther         PaymentMethod = "other"
	// Methods stamped by the checkout orchestrator rather than chosen by a user.
	PaymentMethodOrderPayment PaymentMethod = "order_payment"
	PaymentMethodOrderDebt    PaymentMethod = "order_debt"
)

// PaymentKind distinguishes original ledger entries from compensating ones.
// Payments are append-only: a mistake is corrected by a reversal entry, never
// by editing the original row.
type PaymentKind string

const (
	PaymentKindOriginal PaymentKind = "original"
	PaymentKindReversal PaymentKind = "reversal"
)

// Payment is a single signed ledger entry. Amount > 0 is money received from
// the customer (credit), amount < 0 is debt recorded against the customer.
// The customer's cached balance equals the sum of these amounts at any
// quiescent point.
type Payment struct {
	ID         int           `json:"id"`
	StoreID    int           `json:"store_id"`
	CustomerID *int          `json:"customer_id,omitempty"`
	InvoiceID  *int          `json:"invoice_id,omitempty"`
	OrderID    *int          `json:"order_id,omitempty"`
	Amount     float64       `json:"amount"`
	Method     PaymentMethod `json:"payment_method"`
	Kind       PaymentKind   `json:"kind"`
	ReversalOf *int          `json:"reversal_of,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`

	// Joined for display
	CustomerName  string `json:"customer_name,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
}

// CreatePaymentRequest represents the request body for recording a payment
// or a debt against a customer.
type CreatePaymentRequest struct {
	CustomerID int           `json:"customer_id"`
	Amount     float64       `json:"amount"`
	Method     PaymentMethod `json:"payment_method"`
	InvoiceID  *int          `json:"invoice_id"`
	Notes      string        `json:"notes"`
}

// PaymentFilter is used for filtering payment listings
type PaymentFilter struct {
	CustomerID int        `json:"customer_id"`
	InvoiceID  int        `json:"invoice_id"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
}

// LedgerResult is returned by every successful ledger mutation: the appended
// payment row, the audit transaction written alongside it, and the customer's
// balance after the entry.
type LedgerResult struct {
	Payment     *Payment     `json:"payment"`
	Transaction *Transaction `json:"transaction"`
	Balance     float64      `json:"balance"`
}

// LedgerEntry describes one entry to append, fully resolved by the ledger
// service. The store layer persists the payment, rederives the customer's
// balance from payment history, and writes the audit transaction atomically
// while holding a lock on the customer row.
type LedgerEntry struct {
	StoreID     int
	CustomerID  int
	Amount      float64
	Method      PaymentMethod
	Kind        PaymentKind
	ReversalOf  *int
	InvoiceID   *int
	OrderID     *int
	Notes       string
	TxType      TransactionType
	Description string
}

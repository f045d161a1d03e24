package models

import "time"

// TransactionType represents the business activity a transaction records.
type TransactionType string

const (
	TransactionTypeSale       TransactionType = "sale"
	TransactionTypePurchase   TransactionType = "purchase"
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeExpense    TransactionType = "expense"
)

// Transaction is the audit/activity log kept in parallel with payments.
// Every ledger mutation writes exactly one transaction in the same database
// transaction as the payment row, so the two histories cannot drift. It is
// NOT the source of truth for balances; payments are.
type Transaction struct {
	ID          int             `json:"id"`
	StoreID     int             `json:"store_id"`
	CustomerID  *int            `json:"customer_id,omitempty"`
	InvoiceID   *int            `json:"invoice_id,omitempty"`
	OrderID     *int            `json:"order_id,omitempty"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"` // always unsigned; direction lives in Type
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`

	CustomerName string `json:"customer_name,omitempty"`
}

// TransactionFilter is used for filtering the audit listing
type TransactionFilter struct {
	CustomerID int             `json:"customer_id"`
	Type       TransactionType `json:"type"`
	StartDate  *time.Time      `json:"start_date"`
	EndDate    *time.Time      `json:"end_date"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

package models

import "time"

// OnlineTransaction tracks a Razorpay payment attempt from order creation
// through settlement. Only settled transactions reach the ledger.
type OnlineTransaction struct {
	ID                int        `json:"id"`
	StoreID           int        `json:"store_id"`
	CustomerID        int        `json:"customer_id"`
	RazorpayOrderID   string     `json:"razorpay_order_id"`
	RazorpayPaymentID string     `json:"razorpay_payment_id,omitempty"`
	Amount            float64    `json:"amount"`
	Status            string     `json:"status"` // created, paid, failed
	CreatedAt         time.Time  `json:"created_at"`
	SettledAt         *time.Time `json:"settled_at,omitempty"`
}

// CreateOnlinePaymentRequest starts an online payment for a customer.
type CreateOnlinePaymentRequest struct {
	CustomerID int     `json:"customer_id"`
	Amount     float64 `json:"amount"`
}

// VerifyOnlinePaymentRequest carries the gateway callback fields whose
// signature must be verified before settlement.
type VerifyOnlinePaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

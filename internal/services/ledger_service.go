package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"shop-backend/internal/cache"
	"shop-backend/internal/metrics"
	"shop-backend/internal/models"
)

// LedgerStore is the persistence contract for the ledger. AppendEntry must be
// atomic: payment insert, balance rederivation and audit transaction either
// all commit or none do, serialized per customer.
type LedgerStore interface {
	AppendEntry(ctx context.Context, e *models.LedgerEntry) (*models.LedgerResult, error)
	GetPayment(ctx context.Context, storeID, paymentID int) (*models.Payment, error)
	RecomputeBalance(ctx context.Context, storeID, customerID int) (float64, error)
	ListByCustomer(ctx context.Context, storeID, customerID, limit, offset int) ([]models.Payment, error)
	ListPayments(ctx context.Context, storeID int, filter *models.PaymentFilter) ([]models.Payment, error)
	VerifyBalances(ctx context.Context, storeID int) ([]int, error)
}

// CustomerStore is the slice of the customer repository the ledger needs.
type CustomerStore interface {
	Get(ctx context.Context, storeID, id int) (*models.Customer, error)
}

// Notifier emits a user-visible notification. Implementations never return
// an error; emission is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, storeID int, event models.NotificationEvent)
}

// LedgerService is the only writer of customer balances, payment rows and
// transaction rows. It enforces the invariant that a customer's balance
// always equals the signed sum of their payment entries.
//
// Sign convention: a payment is positive and raises the balance, a debt is
// negative and lowers it. Negative balance means the customer owes the store.
type LedgerService struct {
	store     LedgerStore
	customers CustomerStore
	notifier  Notifier
}

func NewLedgerService(store LedgerStore, customers CustomerStore, notifier Notifier) *LedgerService {
	return &LedgerService{
		store:     store,
		customers: customers,
		notifier:  notifier,
	}
}

// RecordPayment credits amount to the customer: appends a positive payment,
// rederives the balance, and writes a deposit audit transaction.
func (s *LedgerService) RecordPayment(ctx context.Context, storeID, customerID int, amount float64, method models.PaymentMethod, opts EntryOptions) (*models.LedgerResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	customer, err := s.lookupCustomer(ctx, storeID, customerID)
	if err != nil {
		return nil, err
	}

	if method == "" {
		method = models.PaymentMethodCash
	}

	description := opts.Description
	if description == "" {
		description = fmt.Sprintf("Payment received from %s", customer.Name)
	}

	result, err := s.append(ctx, &models.LedgerEntry{
		StoreID:     storeID,
		CustomerID:  customerID,
		Amount:      amount,
		Method:      method,
		Kind:        models.PaymentKindOriginal,
		InvoiceID:   opts.InvoiceID,
		OrderID:     opts.OrderID,
		Notes:       opts.Notes,
		TxType:      models.TransactionTypeDeposit,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, storeID, PaymentReceived(amount, customer.Name))
	return result, nil
}

// RecordDebt debits amount from the customer: appends a negative payment,
// rederives the balance, and writes a withdrawal audit transaction.
func (s *LedgerService) RecordDebt(ctx context.Context, storeID, customerID int, amount float64, opts EntryOptions) (*models.LedgerResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	customer, err := s.lookupCustomer(ctx, storeID, customerID)
	if err != nil {
		return nil, err
	}

	method := opts.Method
	if method == "" {
		method = models.PaymentMethodOther
	}

	description := opts.Description
	if description == "" {
		description = fmt.Sprintf("Debt added for %s", customer.Name)
	}

	result, err := s.append(ctx, &models.LedgerEntry{
		StoreID:     storeID,
		CustomerID:  customerID,
		Amount:      -amount,
		Method:      method,
		Kind:        models.PaymentKindOriginal,
		InvoiceID:   opts.InvoiceID,
		OrderID:     opts.OrderID,
		Notes:       opts.Notes,
		TxType:      models.TransactionTypeWithdrawal,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, storeID, DebtAdded(amount, customer.Name))
	return result, nil
}

// ReverseEntry appends a compensating entry with the negated amount of the
// original payment. The original row is never mutated or deleted; history
// stays append-only and the recomputed balance lands where it would have been
// had the original entry never existed.
func (s *LedgerService) ReverseEntry(ctx context.Context, storeID, paymentID int) (*models.LedgerResult, error) {
	payment, err := s.store.GetPayment(ctx, storeID, paymentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("load payment %d: %w", paymentID, err)
	}
	if payment.CustomerID == nil {
		return nil, fmt.Errorf("payment %d has no customer: %w", paymentID, ErrPaymentNotFound)
	}

	customer, err := s.lookupCustomer(ctx, storeID, *payment.CustomerID)
	if err != nil {
		return nil, err
	}

	txType := models.TransactionTypeRefund
	result, err := s.append(ctx, &models.LedgerEntry{
		StoreID:     storeID,
		CustomerID:  *payment.CustomerID,
		Amount:      -payment.Amount,
		Method:      payment.Method,
		Kind:        models.PaymentKindReversal,
		ReversalOf:  &payment.ID,
		InvoiceID:   payment.InvoiceID,
		OrderID:     payment.OrderID,
		Notes:       fmt.Sprintf("Reversal of payment #%d", payment.ID),
		TxType:      txType,
		Description: fmt.Sprintf("Reversed entry #%d for %s", payment.ID, customer.Name),
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, storeID, EntryReversed(payment.Amount, customer.Name))
	return result, nil
}

// RecomputeBalance re-derives the cached balance from payment history.
// Repair/verification entry point; every AppendEntry already recomputes.
func (s *LedgerService) RecomputeBalance(ctx context.Context, storeID, customerID int) (float64, error) {
	balance, err := s.store.RecomputeBalance(ctx, storeID, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrCustomerNotFound
		}
		return 0, fmt.Errorf("recompute balance for customer %d: %w", customerID, err)
	}
	return balance, nil
}

// History returns a customer's ledger entries, newest first
func (s *LedgerService) History(ctx context.Context, storeID, customerID, limit, offset int) ([]models.Payment, error) {
	if _, err := s.lookupCustomer(ctx, storeID, customerID); err != nil {
		return nil, err
	}
	return s.store.ListByCustomer(ctx, storeID, customerID, limit, offset)
}

// ListPayments returns payments for the store with optional filters
func (s *LedgerService) ListPayments(ctx context.Context, storeID int, filter *models.PaymentFilter) ([]models.Payment, error) {
	return s.store.ListPayments(ctx, storeID, filter)
}

// GetPayment returns one payment scoped to the store
func (s *LedgerService) GetPayment(ctx context.Context, storeID, paymentID int) (*models.Payment, error) {
	payment, err := s.store.GetPayment(ctx, storeID, paymentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// VerifyBalances returns the IDs of customers whose cached balance disagrees
// with their summed payment history. Empty means the ledger is consistent.
func (s *LedgerService) VerifyBalances(ctx context.Context, storeID int) ([]int, error) {
	return s.store.VerifyBalances(ctx, storeID)
}

func (s *LedgerService) append(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerResult, error) {
	result, err := s.store.AppendEntry(ctx, entry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}
	metrics.LedgerEntriesTotal.WithLabelValues(string(entry.TxType)).Inc()
	cache.InvalidateStore(ctx, entry.StoreID)
	return result, nil
}

func (s *LedgerService) lookupCustomer(ctx context.Context, storeID, customerID int) (*models.Customer, error) {
	customer, err := s.customers.Get(ctx, storeID, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("load customer %d: %w", customerID, err)
	}
	return customer, nil
}

// EntryOptions carries the optional references and text for a ledger entry.
type EntryOptions struct {
	Method      models.PaymentMethod
	InvoiceID   *int
	OrderID     *int
	Notes       string
	Description string
}

func validateAmount(amount float64) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ErrInvalidAmount
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"shop-backend/internal/models"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

// InvoiceStore persists invoices. Get and List return the paid amount derived
// from payments referencing the invoice.
type InvoiceStore interface {
	Create(ctx context.Context, inv *models.Invoice) error
	Get(ctx context.Context, storeID, id int) (*models.Invoice, error)
	List(ctx context.Context, storeID int) ([]models.Invoice, error)
	UpdateStatus(ctx context.Context, storeID, id int, status models.InvoiceStatus) error
}

// InvoiceService issues invoices and settles them through the ledger. An
// invoice never stores its paid amount; the store derives it from payments
// referencing the invoice, so settlement is just a ledger entry carrying the
// invoice ID.
type InvoiceService struct {
	repo     InvoiceStore
	ledger   *LedgerService
	notifier Notifier
}

func NewInvoiceService(repo InvoiceStore, ledger *LedgerService, notifier Notifier) *InvoiceService {
	return &InvoiceService{repo: repo, ledger: ledger, notifier: notifier}
}

func (s *InvoiceService) Create(ctx context.Context, storeID int, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	if err := validateAmount(req.TotalAmount); err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		StoreID:       storeID,
		CustomerID:    req.CustomerID,
		InvoiceNumber: fmt.Sprintf("INV-%d", time.Now().UnixMilli()),
		TotalAmount:   req.TotalAmount,
		Status:        models.InvoiceStatusPending,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	s.notifier.Notify(ctx, storeID, InvoiceCreated(invoice.InvoiceNumber, invoice.TotalAmount))
	return invoice, nil
}

func (s *InvoiceService) Get(ctx context.Context, storeID, id int) (*models.Invoice, error) {
	invoice, err := s.repo.Get(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) List(ctx context.Context, storeID int) ([]models.Invoice, error) {
	return s.repo.List(ctx, storeID)
}

// RecordPayment settles part or all of an invoice through the ledger and
// flips the invoice to paid once payments cover the total.
func (s *InvoiceService) RecordPayment(ctx context.Context, storeID, invoiceID int, amount float64, method models.PaymentMethod) (*models.LedgerResult, *models.Invoice, error) {
	invoice, err := s.Get(ctx, storeID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if invoice.CustomerID == nil {
		return nil, nil, fmt.Errorf("invoice %s has no customer to pay against", invoice.InvoiceNumber)
	}
	if invoice.Status == models.InvoiceStatusCancelled {
		return nil, nil, fmt.Errorf("invoice %s is cancelled", invoice.InvoiceNumber)
	}

	result, err := s.ledger.RecordPayment(ctx, storeID, *invoice.CustomerID, amount, method, EntryOptions{
		InvoiceID:   &invoice.ID,
		Description: fmt.Sprintf("Payment against invoice %s", invoice.InvoiceNumber),
	})
	if err != nil {
		return nil, nil, err
	}

	// Re-read for the derived paid amount.
	invoice, err = s.Get(ctx, storeID, invoiceID)
	if err != nil {
		return result, nil, err
	}
	if invoice.Status == models.InvoiceStatusPending && invoice.PaidAmount >= invoice.TotalAmount {
		if err := s.repo.UpdateStatus(ctx, storeID, invoiceID, models.InvoiceStatusPaid); err != nil {
			return result, invoice, fmt.Errorf("mark invoice %d paid: %w", invoiceID, err)
		}
		invoice.Status = models.InvoiceStatusPaid
	}
	return result, invoice, nil
}

func (s *InvoiceService) Cancel(ctx context.Context, storeID, id int) error {
	invoice, err := s.Get(ctx, storeID, id)
	if err != nil {
		return err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return fmt.Errorf("invoice %s is already paid", invoice.InvoiceNumber)
	}
	return s.repo.UpdateStatus(ctx, storeID, id, models.InvoiceStatusCancelled)
}

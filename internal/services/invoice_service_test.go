package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	"shop-backend/internal/models"
)

// fakeInvoiceStore derives PaidAmount from the ledger fake's payments the way
// the real store derives it from the payments table.
type fakeInvoiceStore struct {
	mu       sync.Mutex
	nextID   int
	invoices map[int]*models.Invoice
	ledger   *fakeLedgerStore
}

func newFakeInvoiceStore(ledger *fakeLedgerStore) *fakeInvoiceStore {
	return &fakeInvoiceStore{invoices: make(map[int]*models.Invoice), ledger: ledger}
}

func (f *fakeInvoiceStore) Create(ctx context.Context, inv *models.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	inv.ID = f.nextID
	stored := *inv
	f.invoices[inv.ID] = &stored
	return nil
}

func (f *fakeInvoiceStore) Get(ctx context.Context, storeID, id int) (*models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok || inv.StoreID != storeID {
		return nil, pgx.ErrNoRows
	}
	cp := *inv
	cp.PaidAmount = f.paidAmount(id)
	return &cp, nil
}

func (f *fakeInvoiceStore) paidAmount(invoiceID int) float64 {
	f.ledger.mu.Lock()
	defer f.ledger.mu.Unlock()
	var sum float64
	for _, p := range f.ledger.payments {
		if p.InvoiceID != nil && *p.InvoiceID == invoiceID && p.Amount > 0 {
			sum += p.Amount
		}
	}
	return sum
}

func (f *fakeInvoiceStore) List(ctx context.Context, storeID int) ([]models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Invoice
	for _, inv := range f.invoices {
		if inv.StoreID == storeID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvoiceStore) UpdateStatus(ctx context.Context, storeID, id int, status models.InvoiceStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok || inv.StoreID != storeID {
		return pgx.ErrNoRows
	}
	inv.Status = status
	return nil
}

func newInvoiceFixture(t *testing.T, total float64) (*InvoiceService, *fakeLedgerStore, *models.Invoice) {
	t.Helper()

	ledgerStore := newFakeLedgerStore(7)
	notifier := &fakeNotifier{}
	ledger := NewLedgerService(ledgerStore, newFakeCustomerStore(7), notifier)
	store := newFakeInvoiceStore(ledgerStore)
	svc := NewInvoiceService(store, ledger, notifier)

	inv, err := svc.Create(context.Background(), 1, &models.CreateInvoiceRequest{
		CustomerID:  intPtr(7),
		TotalAmount: total,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return svc, ledgerStore, inv
}

func TestInvoiceCreateInvalidTotal(t *testing.T) {
	ledgerStore := newFakeLedgerStore(7)
	ledger := NewLedgerService(ledgerStore, newFakeCustomerStore(7), &fakeNotifier{})
	svc := NewInvoiceService(newFakeInvoiceStore(ledgerStore), ledger, &fakeNotifier{})

	_, err := svc.Create(context.Background(), 1, &models.CreateInvoiceRequest{
		CustomerID:  intPtr(7),
		TotalAmount: -10,
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("error = %v, want ErrInvalidAmount", err)
	}
}

func TestInvoicePartialPaymentStaysPending(t *testing.T) {
	svc, ledgerStore, inv := newInvoiceFixture(t, 100)

	result, updated, err := svc.RecordPayment(context.Background(), 1, inv.ID, 40, models.PaymentMethodCash)
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if result.Payment.InvoiceID == nil || *result.Payment.InvoiceID != inv.ID {
		t.Errorf("ledger entry not linked to invoice %d", inv.ID)
	}
	if updated.PaidAmount != 40 {
		t.Errorf("paid amount = %v, want 40", updated.PaidAmount)
	}
	if updated.Status != models.InvoiceStatusPending {
		t.Errorf("status = %v, want pending after partial payment", updated.Status)
	}
	if ledgerStore.entryCount() != 1 {
		t.Errorf("ledger entries = %d, want 1", ledgerStore.entryCount())
	}
}

func TestInvoiceCoveringPaymentFlipsToPaid(t *testing.T) {
	svc, _, inv := newInvoiceFixture(t, 100)
	ctx := context.Background()

	if _, _, err := svc.RecordPayment(ctx, 1, inv.ID, 40, models.PaymentMethodCash); err != nil {
		t.Fatalf("first payment: %v", err)
	}
	_, updated, err := svc.RecordPayment(ctx, 1, inv.ID, 60, models.PaymentMethodCard)
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if updated.PaidAmount != 100 {
		t.Errorf("paid amount = %v, want 100", updated.PaidAmount)
	}
	if updated.Status != models.InvoiceStatusPaid {
		t.Errorf("status = %v, want paid once payments cover the total", updated.Status)
	}
}

func TestInvoicePaymentOnCancelledInvoice(t *testing.T) {
	svc, ledgerStore, inv := newInvoiceFixture(t, 100)
	ctx := context.Background()

	if err := svc.Cancel(ctx, 1, inv.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, _, err := svc.RecordPayment(ctx, 1, inv.ID, 40, models.PaymentMethodCash); err == nil {
		t.Fatal("payment against a cancelled invoice was accepted")
	}
	if ledgerStore.entryCount() != 0 {
		t.Errorf("ledger entries = %d, want 0", ledgerStore.entryCount())
	}
}

func TestInvoiceCancelPaidRefused(t *testing.T) {
	svc, _, inv := newInvoiceFixture(t, 50)
	ctx := context.Background()

	if _, _, err := svc.RecordPayment(ctx, 1, inv.ID, 50, models.PaymentMethodCash); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if err := svc.Cancel(ctx, 1, inv.ID); err == nil {
		t.Fatal("cancelling a paid invoice was accepted")
	}
}

func TestInvoicePaymentUnknownInvoice(t *testing.T) {
	svc, _, _ := newInvoiceFixture(t, 100)

	if _, _, err := svc.RecordPayment(context.Background(), 1, 999, 10, models.PaymentMethodCash); !errors.Is(err, ErrInvoiceNotFound) {
		t.Fatalf("error = %v, want ErrInvoiceNotFound", err)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	"shop-backend/internal/models"
)

// fakeLedgerStore mimics the repository contract in memory: every append
// holds a lock, writes the payment, rederives the balance from history and
// records an audit transaction.
type fakeLedgerStore struct {
	mu        sync.Mutex
	nextID    int
	payments  []models.Payment
	txns      []models.Transaction
	customers map[int]bool
	failAll   bool
}

func newFakeLedgerStore(customerIDs ...int) *fakeLedgerStore {
	customers := make(map[int]bool)
	for _, id := range customerIDs {
		customers[id] = true
	}
	return &fakeLedgerStore{nextID: 1, customers: customers}
}

func (f *fakeLedgerStore) AppendEntry(ctx context.Context, e *models.LedgerEntry) (*models.LedgerResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll {
		return nil, errors.New("storage unavailable")
	}
	if !f.customers[e.CustomerID] {
		return nil, pgx.ErrNoRows
	}

	customerID := e.CustomerID
	payment := models.Payment{
		ID:         f.nextID,
		StoreID:    e.StoreID,
		CustomerID: &customerID,
		InvoiceID:  e.InvoiceID,
		OrderID:    e.OrderID,
		Amount:     e.Amount,
		Method:     e.Method,
		Kind:       e.Kind,
		ReversalOf: e.ReversalOf,
		Notes:      e.Notes,
	}
	f.nextID++
	f.payments = append(f.payments, payment)

	txn := models.Transaction{
		ID:          f.nextID,
		StoreID:     e.StoreID,
		CustomerID:  &customerID,
		Type:        e.TxType,
		Amount:      math.Abs(e.Amount),
		Description: e.Description,
	}
	f.nextID++
	f.txns = append(f.txns, txn)

	return &models.LedgerResult{
		Payment:     &payment,
		Transaction: &txn,
		Balance:     f.sumLocked(e.StoreID, e.CustomerID),
	}, nil
}

func (f *fakeLedgerStore) sumLocked(storeID, customerID int) float64 {
	var sum float64
	for _, p := range f.payments {
		if p.StoreID == storeID && p.CustomerID != nil && *p.CustomerID == customerID {
			sum += p.Amount
		}
	}
	return sum
}

func (f *fakeLedgerStore) GetPayment(ctx context.Context, storeID, paymentID int) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.payments {
		if f.payments[i].ID == paymentID && f.payments[i].StoreID == storeID {
			p := f.payments[i]
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeLedgerStore) RecomputeBalance(ctx context.Context, storeID, customerID int) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.customers[customerID] {
		return 0, pgx.ErrNoRows
	}
	return f.sumLocked(storeID, customerID), nil
}

func (f *fakeLedgerStore) ListByCustomer(ctx context.Context, storeID, customerID, limit, offset int) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for _, p := range f.payments {
		if p.StoreID == storeID && p.CustomerID != nil && *p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeLedgerStore) ListPayments(ctx context.Context, storeID int, filter *models.PaymentFilter) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for _, p := range f.payments {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeLedgerStore) VerifyBalances(ctx context.Context, storeID int) ([]int, error) {
	return nil, nil
}

func (f *fakeLedgerStore) entryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payments)
}

type fakeCustomerStore struct {
	customers map[int]*models.Customer
}

func newFakeCustomerStore(ids ...int) *fakeCustomerStore {
	customers := make(map[int]*models.Customer)
	for _, id := range ids {
		customers[id] = &models.Customer{ID: id, StoreID: 1, Name: fmt.Sprintf("Customer %d", id)}
	}
	return &fakeCustomerStore{customers: customers}
}

func (f *fakeCustomerStore) Get(ctx context.Context, storeID, id int) (*models.Customer, error) {
	if c, ok := f.customers[id]; ok && c.StoreID == storeID {
		return c, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []models.NotificationEvent
}

func (f *fakeNotifier) Notify(ctx context.Context, storeID int, event models.NotificationEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func newLedgerService(store *fakeLedgerStore, customers *fakeCustomerStore) (*LedgerService, *fakeNotifier) {
	notifier := &fakeNotifier{}
	return NewLedgerService(store, customers, notifier), notifier
}

func TestRecordPaymentAndDebt(t *testing.T) {
	store := newFakeLedgerStore(7)
	svc, notifier := newLedgerService(store, newFakeCustomerStore(7))
	ctx := context.Background()

	res, err := svc.RecordPayment(ctx, 1, 7, 100, models.PaymentMethodCash, EntryOptions{})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if res.Balance != 100 {
		t.Errorf("balance after payment = %v, want 100", res.Balance)
	}
	if res.Payment.Amount != 100 {
		t.Errorf("payment amount = %v, want 100", res.Payment.Amount)
	}
	if res.Transaction.Type != models.TransactionTypeDeposit {
		t.Errorf("transaction type = %v, want deposit", res.Transaction.Type)
	}

	res, err = svc.RecordDebt(ctx, 1, 7, 40, EntryOptions{})
	if err != nil {
		t.Fatalf("RecordDebt: %v", err)
	}
	if res.Balance != 60 {
		t.Errorf("balance after debt = %v, want 60", res.Balance)
	}
	if res.Payment.Amount != -40 {
		t.Errorf("debt entry amount = %v, want -40", res.Payment.Amount)
	}
	if res.Transaction.Amount != 40 {
		t.Errorf("audit amount = %v, want unsigned 40", res.Transaction.Amount)
	}

	if notifier.count() != 2 {
		t.Errorf("notifications emitted = %d, want 2", notifier.count())
	}
}

func TestRecordPaymentInvalidAmount(t *testing.T) {
	store := newFakeLedgerStore(7)
	svc, _ := newLedgerService(store, newFakeCustomerStore(7))
	ctx := context.Background()

	for _, amount := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		if _, err := svc.RecordPayment(ctx, 1, 7, amount, models.PaymentMethodCash, EntryOptions{}); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("RecordPayment(%v) error = %v, want ErrInvalidAmount", amount, err)
		}
		if _, err := svc.RecordDebt(ctx, 1, 7, amount, EntryOptions{}); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("RecordDebt(%v) error = %v, want ErrInvalidAmount", amount, err)
		}
	}

	if store.entryCount() != 0 {
		t.Errorf("entries written on invalid input = %d, want 0", store.entryCount())
	}
}

func TestRecordPaymentUnknownCustomer(t *testing.T) {
	store := newFakeLedgerStore(7)
	svc, _ := newLedgerService(store, newFakeCustomerStore(7))

	_, err := svc.RecordPayment(context.Background(), 1, 99, 50, models.PaymentMethodCash, EntryOptions{})
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("error = %v, want ErrCustomerNotFound", err)
	}
	if store.entryCount() != 0 {
		t.Errorf("entries written = %d, want 0", store.entryCount())
	}
}

func TestReverseEntry(t *testing.T) {
	store := newFakeLedgerStore(7)
	svc, _ := newLedgerService(store, newFakeCustomerStore(7))
	ctx := context.Background()

	paid, err := svc.RecordPayment(ctx, 1, 7, 100, models.PaymentMethodCash, EntryOptions{})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	rev, err := svc.ReverseEntry(ctx, 1, paid.Payment.ID)
	if err != nil {
		t.Fatalf("ReverseEntry: %v", err)
	}
	if rev.Balance != 0 {
		t.Errorf("balance after reversal = %v, want 0", rev.Balance)
	}
	if rev.Payment.Kind != models.PaymentKindReversal {
		t.Errorf("kind = %v, want reversal", rev.Payment.Kind)
	}
	if rev.Payment.ReversalOf == nil || *rev.Payment.ReversalOf != paid.Payment.ID {
		t.Errorf("reversal_of = %v, want %d", rev.Payment.ReversalOf, paid.Payment.ID)
	}
	if rev.Payment.Amount != -100 {
		t.Errorf("reversal amount = %v, want -100", rev.Payment.Amount)
	}

	// Both rows remain; history is append-only.
	if store.entryCount() != 2 {
		t.Errorf("entries = %d, want 2", store.entryCount())
	}
}

func TestReverseEntryNotFound(t *testing.T) {
	store := newFakeLedgerStore(7)
	svc, _ := newLedgerService(store, newFakeCustomerStore(7))

	if _, err := svc.ReverseEntry(context.Background(), 1, 12345); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("error = %v, want ErrPaymentNotFound", err)
	}
}

func TestConcurrentDebtsDoNotLoseUpdates(t *testing.T) {
	store := newFakeLedgerStore(7)
	svc, _ := newLedgerService(store, newFakeCustomerStore(7))
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordDebt(ctx, 1, 7, 10, EntryOptions{}); err != nil {
				t.Errorf("RecordDebt: %v", err)
			}
		}()
	}
	wg.Wait()

	balance, err := svc.RecomputeBalance(ctx, 1, 7)
	if err != nil {
		t.Fatalf("RecomputeBalance: %v", err)
	}
	if balance != -100 {
		t.Errorf("balance = %v, want -100 (no lost updates)", balance)
	}
	if store.entryCount() != workers {
		t.Errorf("entries = %d, want %d", store.entryCount(), workers)
	}
}

func TestRecomputeBalanceUnknownCustomer(t *testing.T) {
	store := newFakeLedgerStore(7)
	svc, _ := newLedgerService(store, newFakeCustomerStore(7))

	if _, err := svc.RecomputeBalance(context.Background(), 1, 99); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("error = %v, want ErrCustomerNotFound", err)
	}
}

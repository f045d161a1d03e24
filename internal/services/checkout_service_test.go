package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	"shop-backend/internal/models"
)

type fakeOrderStore struct {
	mu     sync.Mutex
	nextID int
	orders []models.Order
	items  map[int][]models.OrderItem
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{nextID: 1, items: make(map[int][]models.OrderItem)}
}

func (f *fakeOrderStore) CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order.ID = f.nextID
	f.nextID++
	f.orders = append(f.orders, *order)
	f.items[order.ID] = items
	return nil
}

func (f *fakeOrderStore) Get(ctx context.Context, storeID, id int) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].ID == id && f.orders[i].StoreID == storeID {
			o := f.orders[i]
			o.Items = f.items[o.ID]
			return &o, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeOrderStore) List(ctx context.Context, storeID, limit, offset int) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.StoreID == storeID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) UpdateStatus(ctx context.Context, storeID, id int, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].ID == id && f.orders[i].StoreID == storeID {
			f.orders[i].Status = status
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeOrderStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type fakeStockAdjuster struct {
	mu    sync.Mutex
	stock map[int]int
}

func newFakeStockAdjuster(stock map[int]int) *fakeStockAdjuster {
	return &fakeStockAdjuster{stock: stock}
}

func (f *fakeStockAdjuster) AdjustStock(ctx context.Context, storeID, id, delta int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stock[id]; !ok {
		return 0, pgx.ErrNoRows
	}
	f.stock[id] += delta
	if f.stock[id] < 0 {
		f.stock[id] = 0
	}
	return f.stock[id], nil
}

func newCheckoutService(ledgerStore *fakeLedgerStore, orders *fakeOrderStore, stock *fakeStockAdjuster) (*CheckoutService, *fakeNotifier) {
	customers := newFakeCustomerStore(7)
	notifier := &fakeNotifier{}
	ledger := NewLedgerService(ledgerStore, customers, notifier)
	return NewCheckoutService(orders, stock, customers, ledger, notifier), notifier
}

func intPtr(v int) *int { return &v }

func TestCheckoutSplitsPaymentAndDebt(t *testing.T) {
	ledgerStore := newFakeLedgerStore(7)
	orders := newFakeOrderStore()
	svc, _ := newCheckoutService(ledgerStore, orders, newFakeStockAdjuster(nil))

	req := &models.CheckoutRequest{
		CustomerID: intPtr(7),
		Items: []models.CheckoutItem{
			{ProductName: "Rice 5kg", Quantity: 2, UnitPrice: 30},
			{ProductName: "Oil 1L", Quantity: 4, UnitPrice: 10},
		},
		AmountPaid: 60,
	}

	res, err := svc.Checkout(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if res.Order.TotalAmount != 100 {
		t.Errorf("order total = %v, want 100", res.Order.TotalAmount)
	}
	if res.Payment == nil || res.Payment.Payment.Amount != 60 {
		t.Fatalf("payment entry = %+v, want amount 60", res.Payment)
	}
	if res.Debt == nil || res.Debt.Payment.Amount != -40 {
		t.Fatalf("debt entry = %+v, want amount -40", res.Debt)
	}
	if res.Debt.Balance != 20 {
		t.Errorf("balance after checkout = %v, want 20 (60 paid - 40 owed)", res.Debt.Balance)
	}
	if res.Payment.Payment.OrderID == nil || *res.Payment.Payment.OrderID != res.Order.ID {
		t.Errorf("payment not linked to order %d", res.Order.ID)
	}
}

func TestCheckoutFullyPaidWritesNoDebt(t *testing.T) {
	ledgerStore := newFakeLedgerStore(7)
	svc, _ := newCheckoutService(ledgerStore, newFakeOrderStore(), newFakeStockAdjuster(nil))

	req := &models.CheckoutRequest{
		CustomerID: intPtr(7),
		Items:      []models.CheckoutItem{{ProductName: "Sugar", Quantity: 1, UnitPrice: 50}},
		AmountPaid: 50,
	}

	res, err := svc.Checkout(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if res.Debt != nil {
		t.Errorf("debt = %+v, want nil for a fully paid order", res.Debt)
	}
	if ledgerStore.entryCount() != 1 {
		t.Errorf("ledger entries = %d, want 1", ledgerStore.entryCount())
	}
}

func TestCheckoutEmptyOrder(t *testing.T) {
	ledgerStore := newFakeLedgerStore(7)
	orders := newFakeOrderStore()
	svc, _ := newCheckoutService(ledgerStore, orders, newFakeStockAdjuster(nil))

	_, err := svc.Checkout(context.Background(), 1, &models.CheckoutRequest{CustomerID: intPtr(7)})
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("error = %v, want ErrEmptyOrder", err)
	}
	if orders.count() != 0 || ledgerStore.entryCount() != 0 {
		t.Errorf("writes happened on an empty order: orders=%d entries=%d", orders.count(), ledgerStore.entryCount())
	}
}

func TestCheckoutInvalidItems(t *testing.T) {
	ledgerStore := newFakeLedgerStore(7)
	orders := newFakeOrderStore()
	svc, _ := newCheckoutService(ledgerStore, orders, newFakeStockAdjuster(nil))
	ctx := context.Background()

	cases := []models.CheckoutRequest{
		{CustomerID: intPtr(7), Items: []models.CheckoutItem{{ProductName: "x", Quantity: 0, UnitPrice: 10}}},
		{CustomerID: intPtr(7), Items: []models.CheckoutItem{{ProductName: "x", Quantity: 1, UnitPrice: -1}}},
		{CustomerID: intPtr(7), Items: []models.CheckoutItem{{ProductName: "x", Quantity: 1, UnitPrice: math.NaN()}}},
		{CustomerID: intPtr(7), Items: []models.CheckoutItem{{ProductName: "x", Quantity: 1, UnitPrice: 10}}, AmountPaid: -5},
	}
	for i, req := range cases {
		if _, err := svc.Checkout(ctx, 1, &req); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("case %d: error = %v, want ErrInvalidAmount", i, err)
		}
	}
	if orders.count() != 0 {
		t.Errorf("orders persisted on invalid input = %d, want 0", orders.count())
	}
}

func TestCheckoutUnknownCustomerWritesNothing(t *testing.T) {
	ledgerStore := newFakeLedgerStore(7)
	orders := newFakeOrderStore()
	svc, _ := newCheckoutService(ledgerStore, orders, newFakeStockAdjuster(nil))

	req := &models.CheckoutRequest{
		CustomerID: intPtr(99),
		Items:      []models.CheckoutItem{{ProductName: "x", Quantity: 1, UnitPrice: 10}},
	}
	if _, err := svc.Checkout(context.Background(), 1, req); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("error = %v, want ErrCustomerNotFound", err)
	}
	if orders.count() != 0 {
		t.Errorf("orders persisted = %d, want 0", orders.count())
	}
}

func TestCheckoutLedgerFailureIsPartial(t *testing.T) {
	ledgerStore := newFakeLedgerStore(7)
	ledgerStore.failAll = true
	orders := newFakeOrderStore()
	svc, _ := newCheckoutService(ledgerStore, orders, newFakeStockAdjuster(nil))

	req := &models.CheckoutRequest{
		CustomerID: intPtr(7),
		Items:      []models.CheckoutItem{{ProductName: "x", Quantity: 1, UnitPrice: 100}},
		AmountPaid: 100,
	}
	res, err := svc.Checkout(context.Background(), 1, req)

	var partial *PartialCheckoutError
	if !errors.As(err, &partial) {
		t.Fatalf("error = %v, want *PartialCheckoutError", err)
	}
	if partial.Step != "payment" {
		t.Errorf("failed step = %q, want payment", partial.Step)
	}
	if partial.Order == nil || partial.Order.ID == 0 {
		t.Fatalf("partial error does not carry the committed order: %+v", partial.Order)
	}
	if res == nil || res.Order == nil {
		t.Fatalf("result missing the committed order")
	}
	if orders.count() != 1 {
		t.Errorf("orders persisted = %d, want 1 (order commits before ledger)", orders.count())
	}
}

func TestCheckoutAnonymousSaleSkipsLedger(t *testing.T) {
	ledgerStore := newFakeLedgerStore(7)
	svc, _ := newCheckoutService(ledgerStore, newFakeOrderStore(), newFakeStockAdjuster(nil))

	req := &models.CheckoutRequest{
		Items:      []models.CheckoutItem{{ProductName: "x", Quantity: 1, UnitPrice: 25}},
		AmountPaid: 25,
		Completed:  true,
	}
	res, err := svc.Checkout(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if res.Payment != nil || res.Debt != nil {
		t.Errorf("anonymous sale touched the ledger: payment=%+v debt=%+v", res.Payment, res.Debt)
	}
	if ledgerStore.entryCount() != 0 {
		t.Errorf("ledger entries = %d, want 0", ledgerStore.entryCount())
	}
	if res.Order.Status != models.OrderStatusCompleted {
		t.Errorf("status = %v, want completed", res.Order.Status)
	}
}

func TestCheckoutDecrementsStockAndWarnsWhenLow(t *testing.T) {
	ledgerStore := newFakeLedgerStore(7)
	stock := newFakeStockAdjuster(map[int]int{42: 8})
	svc, notifier := newCheckoutService(ledgerStore, newFakeOrderStore(), stock)

	req := &models.CheckoutRequest{
		Items: []models.CheckoutItem{
			{ProductID: intPtr(42), ProductName: "Milk", Quantity: 4, UnitPrice: 5},
		},
		AmountPaid: 20,
	}
	if _, err := svc.Checkout(context.Background(), 1, req); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if got := stock.stock[42]; got != 4 {
		t.Errorf("stock after sale = %d, want 4", got)
	}

	var lowStockSeen bool
	notifier.mu.Lock()
	for _, ev := range notifier.events {
		if ev.Type == models.NotificationTypeWarning {
			lowStockSeen = true
		}
	}
	notifier.mu.Unlock()
	if !lowStockSeen {
		t.Error("no low stock warning emitted at threshold")
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	svc, _ := newCheckoutService(newFakeLedgerStore(7), newFakeOrderStore(), newFakeStockAdjuster(nil))

	if err := svc.UpdateStatus(context.Background(), 1, 1, "shipped"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

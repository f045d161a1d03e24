package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"shop-backend/internal/models"
)

type fakeOnlineTxnStore struct {
	mu     sync.Mutex
	nextID int
	txns   map[string]*models.OnlineTransaction
}

func newFakeOnlineTxnStore() *fakeOnlineTxnStore {
	return &fakeOnlineTxnStore{txns: make(map[string]*models.OnlineTransaction)}
}

func (f *fakeOnlineTxnStore) Create(ctx context.Context, t *models.OnlineTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	t.Status = "created"
	stored := *t
	f.txns[t.RazorpayOrderID] = &stored
	return nil
}

func (f *fakeOnlineTxnStore) GetByOrderID(ctx context.Context, orderID string) (*models.OnlineTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.txns[orderID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeOnlineTxnStore) MarkPaid(ctx context.Context, id int, paymentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.txns {
		if t.ID == id && t.Status == "created" {
			now := time.Now()
			t.Status = "paid"
			t.RazorpayPaymentID = paymentID
			t.SettledAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOnlineTxnStore) MarkFailed(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.txns {
		if t.ID == id && t.Status == "created" {
			t.Status = "failed"
		}
	}
	return nil
}

func (f *fakeOnlineTxnStore) RevertSettlement(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.txns {
		if t.ID == id && t.Status == "paid" {
			t.Status = "created"
			t.SettledAt = nil
		}
	}
	return nil
}

func (f *fakeOnlineTxnStore) status(orderID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txns[orderID].Status
}

func signPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	svc := &RazorpayService{keySecret: "test_secret"}

	orderID := "order_Mq3kP8xYz"
	paymentID := "pay_Nh7rT2wQv"
	good := signPayment("test_secret", orderID, paymentID)

	if !svc.verifySignature(orderID, paymentID, good) {
		t.Error("valid signature rejected")
	}
	if svc.verifySignature(orderID, paymentID, signPayment("wrong_secret", orderID, paymentID)) {
		t.Error("signature from wrong secret accepted")
	}
	if svc.verifySignature(orderID, "pay_other", good) {
		t.Error("signature for different payment accepted")
	}
	if svc.verifySignature(orderID, paymentID, "") {
		t.Error("empty signature accepted")
	}
}

func newSettleFixture(t *testing.T) (*RazorpayService, *fakeLedgerStore, *fakeOnlineTxnStore, *models.VerifyOnlinePaymentRequest) {
	t.Helper()

	ledgerStore := newFakeLedgerStore(7)
	ledger := NewLedgerService(ledgerStore, newFakeCustomerStore(7), &fakeNotifier{})
	txns := newFakeOnlineTxnStore()
	svc := &RazorpayService{keySecret: "test_secret", repo: txns, ledger: ledger}

	if err := txns.Create(context.Background(), &models.OnlineTransaction{
		StoreID:         1,
		CustomerID:      7,
		RazorpayOrderID: "order_1",
		Amount:          250,
	}); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	return svc, ledgerStore, txns, &models.VerifyOnlinePaymentRequest{
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: signPayment("test_secret", "order_1", "pay_1"),
	}
}

func TestVerifyAndSettleCreditsLedgerOnce(t *testing.T) {
	svc, ledgerStore, txns, req := newSettleFixture(t)
	ctx := context.Background()

	txn, err := svc.VerifyAndSettle(ctx, 1, req)
	if err != nil {
		t.Fatalf("VerifyAndSettle: %v", err)
	}
	if txn.Status != "paid" {
		t.Errorf("status = %q, want paid", txn.Status)
	}
	if ledgerStore.entryCount() != 1 {
		t.Fatalf("ledger entries = %d, want 1", ledgerStore.entryCount())
	}

	// Repeat callback settles nothing further.
	if _, err := svc.VerifyAndSettle(ctx, 1, req); err != nil {
		t.Fatalf("repeat VerifyAndSettle: %v", err)
	}
	if ledgerStore.entryCount() != 1 {
		t.Errorf("ledger entries after repeat callback = %d, want 1", ledgerStore.entryCount())
	}
	if txns.status("order_1") != "paid" {
		t.Errorf("status = %q, want paid", txns.status("order_1"))
	}
}

func TestVerifyAndSettleLedgerFailureIsRetriable(t *testing.T) {
	svc, ledgerStore, txns, req := newSettleFixture(t)
	ctx := context.Background()
	ledgerStore.failAll = true

	if _, err := svc.VerifyAndSettle(ctx, 1, req); err == nil {
		t.Fatal("expected error when the ledger write fails")
	}
	if got := txns.status("order_1"); got != "created" {
		t.Fatalf("status after failed settlement = %q, want created (retriable)", got)
	}
	if ledgerStore.entryCount() != 0 {
		t.Fatalf("ledger entries = %d, want 0", ledgerStore.entryCount())
	}

	// Next callback completes the settlement.
	ledgerStore.failAll = false
	txn, err := svc.VerifyAndSettle(ctx, 1, req)
	if err != nil {
		t.Fatalf("retry VerifyAndSettle: %v", err)
	}
	if txn.Status != "paid" {
		t.Errorf("status after retry = %q, want paid", txn.Status)
	}
	if ledgerStore.entryCount() != 1 {
		t.Errorf("ledger entries after retry = %d, want exactly 1", ledgerStore.entryCount())
	}
}

func TestVerifyAndSettleBadSignature(t *testing.T) {
	svc, ledgerStore, txns, req := newSettleFixture(t)
	req.RazorpaySignature = "tampered"

	if _, err := svc.VerifyAndSettle(context.Background(), 1, req); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("error = %v, want ErrInvalidSignature", err)
	}
	if txns.status("order_1") != "failed" {
		t.Errorf("status = %q, want failed", txns.status("order_1"))
	}
	if ledgerStore.entryCount() != 0 {
		t.Errorf("ledger entries = %d, want 0", ledgerStore.entryCount())
	}
}

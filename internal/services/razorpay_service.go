package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	razorpay "github.com/razorpay/razorpay-go"

	"shop-backend/internal/config"
	"shop-backend/internal/models"
)

var (
	ErrOnlineTransactionNotFound = errors.New("online transaction not found")
	ErrInvalidSignature          = errors.New("payment signature verification failed")
)

// OnlineTransactionStore persists gateway payment attempts. MarkPaid must be
// a conditional transition from created so concurrent callbacks cannot both
// win settlement.
type OnlineTransactionStore interface {
	Create(ctx context.Context, t *models.OnlineTransaction) error
	GetByOrderID(ctx context.Context, razorpayOrderID string) (*models.OnlineTransaction, error)
	MarkPaid(ctx context.Context, id int, razorpayPaymentID string) (bool, error)
	MarkFailed(ctx context.Context, id int) error
	RevertSettlement(ctx context.Context, id int) error
}

// RazorpayService takes customer payments through the Razorpay gateway.
// Settlement is the only path from a gateway payment into the ledger, and it
// runs exactly once per transaction regardless of how many times the gateway
// callback fires.
type RazorpayService struct {
	client    *razorpay.Client
	keyID     string
	keySecret string
	repo      OnlineTransactionStore
	ledger    *LedgerService
}

func NewRazorpayService(cfg *config.Config, repo OnlineTransactionStore, ledger *LedgerService) *RazorpayService {
	var client *razorpay.Client
	if cfg.Razorpay.KeyID != "" {
		client = razorpay.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	}
	return &RazorpayService{
		client:    client,
		keyID:     cfg.Razorpay.KeyID,
		keySecret: cfg.Razorpay.KeySecret,
		repo:      repo,
		ledger:    ledger,
	}
}

// Enabled reports whether gateway credentials are configured.
func (s *RazorpayService) Enabled() bool {
	return s.client != nil
}

// CreateOrder registers a payment attempt with the gateway and records it
// locally in created state. Returns the transaction and the public key ID the
// frontend needs to open the payment widget.
func (s *RazorpayService) CreateOrder(ctx context.Context, storeID int, req *models.CreateOnlinePaymentRequest) (*models.OnlineTransaction, string, error) {
	if !s.Enabled() {
		return nil, "", fmt.Errorf("online payments are not configured")
	}
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return nil, "", ErrInvalidAmount
	}

	// Razorpay amounts are integer paise.
	paise := int64(math.Round(req.Amount * 100))
	body, err := s.client.Order.Create(map[string]interface{}{
		"amount":   paise,
		"currency": "INR",
		"receipt":  fmt.Sprintf("rcpt-%d-%d", storeID, time.Now().UnixMilli()),
	}, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create gateway order: %w", err)
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return nil, "", fmt.Errorf("gateway order response missing id")
	}

	txn := &models.OnlineTransaction{
		StoreID:         storeID,
		CustomerID:      req.CustomerID,
		RazorpayOrderID: orderID,
		Amount:          req.Amount,
	}
	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, "", fmt.Errorf("record online transaction: %w", err)
	}
	txn.Status = "created"
	return txn, s.keyID, nil
}

// VerifyAndSettle checks the gateway signature and, on first verification,
// credits the amount to the customer's ledger as a digital wallet payment.
// Repeat callbacks for an already-settled transaction return it unchanged.
func (s *RazorpayService) VerifyAndSettle(ctx context.Context, storeID int, req *models.VerifyOnlinePaymentRequest) (*models.OnlineTransaction, error) {
	txn, err := s.repo.GetByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOnlineTransactionNotFound
		}
		return nil, fmt.Errorf("load online transaction: %w", err)
	}
	if txn.StoreID != storeID {
		return nil, ErrOnlineTransactionNotFound
	}

	if !s.verifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		if err := s.repo.MarkFailed(ctx, txn.ID); err != nil {
			log.Printf("[Razorpay] WARNING: failed to mark transaction %d failed: %v", txn.ID, err)
		}
		return nil, ErrInvalidSignature
	}

	settled, err := s.repo.MarkPaid(ctx, txn.ID, req.RazorpayPaymentID)
	if err != nil {
		return nil, fmt.Errorf("mark transaction paid: %w", err)
	}
	if !settled {
		// Already settled by an earlier callback; the ledger entry exists.
		return s.repo.GetByOrderID(ctx, req.RazorpayOrderID)
	}

	_, err = s.ledger.RecordPayment(ctx, storeID, txn.CustomerID, txn.Amount, models.PaymentMethodDigitalWallet, EntryOptions{
		Notes: fmt.Sprintf("Razorpay payment %s", req.RazorpayPaymentID),
	})
	if err != nil {
		// The row is paid but no ledger entry exists. Put it back to created
		// so the next callback retries settlement; a paid row without a
		// ledger entry would otherwise be unrecoverable.
		if revertErr := s.repo.RevertSettlement(ctx, txn.ID); revertErr != nil {
			log.Printf("[Razorpay] ERROR: transaction %d is paid without a ledger entry and revert failed (%v); needs manual reconciliation", txn.ID, revertErr)
		}
		return nil, fmt.Errorf("settle payment to ledger: %w", err)
	}

	return s.repo.GetByOrderID(ctx, req.RazorpayOrderID)
}

// verifySignature checks the HMAC-SHA256 the gateway computes over
// "<order_id>|<payment_id>" with the key secret.
func (s *RazorpayService) verifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

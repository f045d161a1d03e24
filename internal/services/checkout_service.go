package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"shop-backend/internal/cache"
	"shop-backend/internal/metrics"
	"shop-backend/internal/models"
)

// LowStockThreshold is the stock level at or below which a warning is emitted
// after a checkout consumes inventory.
const LowStockThreshold = 5

// OrderStore persists orders. CreateWithItems must be atomic: the order and
// all its items commit together or not at all.
type OrderStore interface {
	CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error
	Get(ctx context.Context, storeID, id int) (*models.Order, error)
	List(ctx context.Context, storeID, limit, offset int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, storeID, id int, status models.OrderStatus) error
}

// StockAdjuster is the slice of the product repository checkout needs.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, storeID, id, delta int) (int, error)
}

// CheckoutService turns a cart into an order plus ledger entries.
//
// The order and its items commit first as one unit. Ledger settlement runs
// after: paid amount as a payment, any shortfall as debt. A ledger failure
// after the order committed is reported as *PartialCheckoutError rather than
// rolled back, because the order is already durable and hiding it would make
// things worse.
type CheckoutService struct {
	orders    OrderStore
	products  StockAdjuster
	customers CustomerStore
	ledger    *LedgerService
	notifier  Notifier
}

func NewCheckoutService(orders OrderStore, products StockAdjuster, customers CustomerStore, ledger *LedgerService, notifier Notifier) *CheckoutService {
	return &CheckoutService{
		orders:    orders,
		products:  products,
		customers: customers,
		ledger:    ledger,
		notifier:  notifier,
	}
}

// Checkout validates the request, persists the order with its items, settles
// the money movement through the ledger and decrements stock. Validation
// failures happen before any write.
func (s *CheckoutService) Checkout(ctx context.Context, storeID int, req *models.CheckoutRequest) (*models.CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if req.AmountPaid < 0 || math.IsNaN(req.AmountPaid) || math.IsInf(req.AmountPaid, 0) {
		return nil, ErrInvalidAmount
	}

	var total float64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.UnitPrice < 0 || math.IsNaN(item.UnitPrice) || math.IsInf(item.UnitPrice, 0) {
			return nil, ErrInvalidAmount
		}
		lineTotal := float64(item.Quantity) * item.UnitPrice
		total += lineTotal
		items = append(items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  lineTotal,
		})
	}

	if req.CustomerID != nil {
		if _, err := s.customers.Get(ctx, storeID, *req.CustomerID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrCustomerNotFound
			}
			return nil, fmt.Errorf("load customer %d: %w", *req.CustomerID, err)
		}
	}

	status := models.OrderStatusPending
	if req.Completed {
		status = models.OrderStatusCompleted
	}

	order := &models.Order{
		StoreID:     storeID,
		CustomerID:  req.CustomerID,
		OrderNumber: fmt.Sprintf("ORD-%d", time.Now().UnixMilli()),
		TotalAmount: total,
		Status:      status,
		Notes:       req.Notes,
	}

	if err := s.orders.CreateWithItems(ctx, order, items); err != nil {
		metrics.CheckoutsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("create order: %w", err)
	}

	result := &models.CheckoutResult{Order: order}

	// Money movement only applies when a customer account is attached.
	// Anonymous cash sales leave the ledger untouched.
	if req.CustomerID != nil {
		if req.AmountPaid > 0 {
			payment, err := s.ledger.RecordPayment(ctx, storeID, *req.CustomerID, req.AmountPaid, models.PaymentMethodOrderPayment, EntryOptions{
				OrderID:     &order.ID,
				Description: fmt.Sprintf("Payment for order %s", order.OrderNumber),
			})
			if err != nil {
				metrics.CheckoutsTotal.WithLabelValues("partial").Inc()
				return result, &PartialCheckoutError{Order: order, Step: "payment", Err: err}
			}
			result.Payment = payment
		}

		if shortfall := total - req.AmountPaid; shortfall > 0 {
			debt, err := s.ledger.RecordDebt(ctx, storeID, *req.CustomerID, shortfall, EntryOptions{
				Method:      models.PaymentMethodOrderDebt,
				OrderID:     &order.ID,
				Description: fmt.Sprintf("Outstanding amount for order %s", order.OrderNumber),
			})
			if err != nil {
				metrics.CheckoutsTotal.WithLabelValues("partial").Inc()
				return result, &PartialCheckoutError{Order: order, Step: "debt", Err: err}
			}
			result.Debt = debt
		}
	}

	s.consumeStock(ctx, storeID, items)

	metrics.CheckoutsTotal.WithLabelValues("completed").Inc()
	cache.InvalidateStore(ctx, storeID)
	s.notifier.Notify(ctx, storeID, OrderCreated(order.OrderNumber, total))
	return result, nil
}

// consumeStock decrements inventory for catalog-linked items. Best-effort:
// stock tracking never fails a checkout whose order and ledger entries are
// already committed.
func (s *CheckoutService) consumeStock(ctx context.Context, storeID int, items []models.OrderItem) {
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		remaining, err := s.products.AdjustStock(ctx, storeID, *item.ProductID, -item.Quantity)
		if err != nil {
			log.Printf("[Checkout] WARNING: failed to adjust stock for product %d: %v", *item.ProductID, err)
			continue
		}
		if remaining <= LowStockThreshold {
			s.notifier.Notify(ctx, storeID, LowStock(item.ProductName, remaining))
		}
	}
}

// Get returns one order with its items
func (s *CheckoutService) Get(ctx context.Context, storeID, id int) (*models.Order, error) {
	return s.orders.Get(ctx, storeID, id)
}

// List returns the store's orders, newest first
func (s *CheckoutService) List(ctx context.Context, storeID, limit, offset int) ([]models.Order, error) {
	return s.orders.List(ctx, storeID, limit, offset)
}

// UpdateStatus moves an order between pending, completed and cancelled.
// Cancelling does not touch the ledger; reversals are explicit.
func (s *CheckoutService) UpdateStatus(ctx context.Context, storeID, id int, status models.OrderStatus) error {
	switch status {
	case models.OrderStatusPending, models.OrderStatusCompleted, models.OrderStatusCancelled:
	default:
		return fmt.Errorf("invalid order status %q", status)
	}
	return s.orders.UpdateStatus(ctx, storeID, id, status)
}

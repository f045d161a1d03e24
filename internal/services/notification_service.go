package services

import (
	"context"
	"fmt"
	"log"

	"shop-backend/internal/models"
)

// NotificationStore persists the notification feed.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, storeID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, storeID, id int) error
	MarkAllRead(ctx context.Context, storeID int) error
	UnreadCount(ctx context.Context, storeID int) (int, error)
}

// Broadcaster pushes a stored notification to connected feed clients.
type Broadcaster interface {
	Broadcast(storeID int, n models.Notification)
}

// NotificationService writes the feed and pushes to live clients. Emission is
// best-effort everywhere: a failed insert or push is logged and swallowed,
// never propagated to the operation that triggered it.
type NotificationService struct {
	store       NotificationStore
	broadcaster Broadcaster
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// SetBroadcaster wires the live feed hub after construction.
func (s *NotificationService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *NotificationService) Notify(ctx context.Context, storeID int, event models.NotificationEvent) {
	n := &models.Notification{
		StoreID: storeID,
		Title:   event.Title,
		Message: event.Message,
		Type:    event.Type,
	}
	if err := s.store.Create(ctx, n); err != nil {
		log.Printf("[Notifications] WARNING: failed to store notification %q for store %d: %v", event.Title, storeID, err)
		return
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(storeID, *n)
	}
}

func (s *NotificationService) List(ctx context.Context, storeID, limit int) ([]models.Notification, error) {
	return s.store.List(ctx, storeID, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, storeID, id int) error {
	return s.store.MarkRead(ctx, storeID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, storeID int) error {
	return s.store.MarkAllRead(ctx, storeID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, storeID int) (int, error) {
	return s.store.UnreadCount(ctx, storeID)
}

// Event templates. Kept in one place so wording stays consistent across
// services.

func CustomerAdded(name string) models.NotificationEvent {
	return models.NotificationEvent{
		Title:   "Customer added",
		Message: fmt.Sprintf("Customer %s was added", name),
		Type:    models.NotificationTypeSuccess,
	}
}

func ProductAdded(name string) models.NotificationEvent {
	return models.NotificationEvent{
		Title:   "Product added",
		Message: fmt.Sprintf("Product %s was added", name),
		Type:    models.NotificationTypeSuccess,
	}
}

func PaymentReceived(amount float64, customerName string) models.NotificationEvent {
	return models.NotificationEvent{
		Title:   "Payment received",
		Message: fmt.Sprintf("Received %.2f from %s", amount, customerName),
		Type:    models.NotificationTypeSuccess,
	}
}

func DebtAdded(amount float64, customerName string) models.NotificationEvent {
	return models.NotificationEvent{
		Title:   "Debt recorded",
		Message: fmt.Sprintf("%s now owes an additional %.2f", customerName, amount),
		Type:    models.NotificationTypeWarning,
	}
}

func EntryReversed(amount float64, customerName string) models.NotificationEvent {
	return models.NotificationEvent{
		Title:   "Ledger entry reversed",
		Message: fmt.Sprintf("Reversed an entry of %.2f for %s", amount, customerName),
		Type:    models.NotificationTypeInfo,
	}
}

func OrderCreated(orderNumber string, total float64) models.NotificationEvent {
	return models.NotificationEvent{
		Title:   "Order created",
		Message: fmt.Sprintf("Order %s created for %.2f", orderNumber, total),
		Type:    models.NotificationTypeSuccess,
	}
}

func InvoiceCreated(invoiceNumber string, total float64) models.NotificationEvent {
	return models.NotificationEvent{
		Title:   "Invoice created",
		Message: fmt.Sprintf("Invoice %s issued for %.2f", invoiceNumber, total),
		Type:    models.NotificationTypeInfo,
	}
}

func LowStock(productName string, stock int) models.NotificationEvent {
	return models.NotificationEvent{
		Title:   "Low stock",
		Message: fmt.Sprintf("Product %s is down to %d units", productName, stock),
		Type:    models.NotificationTypeWarning,
	}
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"shop-backend/internal/models"
)

type fakeNotificationStore struct {
	mu     sync.Mutex
	nextID int
	stored []models.Notification
	fail   bool
}

func (f *fakeNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("insert failed")
	}
	f.nextID++
	n.ID = f.nextID
	f.stored = append(f.stored, *n)
	return nil
}

func (f *fakeNotificationStore) List(ctx context.Context, storeID, limit int) ([]models.Notification, error) {
	return nil, nil
}
func (f *fakeNotificationStore) MarkRead(ctx context.Context, storeID, id int) error  { return nil }
func (f *fakeNotificationStore) MarkAllRead(ctx context.Context, storeID int) error   { return nil }
func (f *fakeNotificationStore) UnreadCount(ctx context.Context, storeID int) (int, error) {
	return 0, nil
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (f *fakeBroadcaster) Broadcast(storeID int, n models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
}

func TestNotifyStoresAndBroadcasts(t *testing.T) {
	store := &fakeNotificationStore{}
	hub := &fakeBroadcaster{}
	svc := NewNotificationService(store)
	svc.SetBroadcaster(hub)

	svc.Notify(context.Background(), 1, PaymentReceived(50, "Asha"))

	if len(store.stored) != 1 {
		t.Fatalf("stored = %d, want 1", len(store.stored))
	}
	if len(hub.sent) != 1 {
		t.Fatalf("broadcast = %d, want 1", len(hub.sent))
	}
	if hub.sent[0].ID == 0 {
		t.Error("broadcast notification missing the stored ID")
	}
}

func TestNotifyStoreFailureIsSwallowed(t *testing.T) {
	store := &fakeNotificationStore{fail: true}
	hub := &fakeBroadcaster{}
	svc := NewNotificationService(store)
	svc.SetBroadcaster(hub)

	// Must not panic or propagate; a failed insert is also not broadcast.
	svc.Notify(context.Background(), 1, DebtAdded(10, "Asha"))

	if len(hub.sent) != 0 {
		t.Errorf("broadcast = %d, want 0 after a failed insert", len(hub.sent))
	}
}

func TestNotifyWithoutBroadcaster(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store)

	// Hub not wired yet; storing alone must work.
	svc.Notify(context.Background(), 1, LowStock("Milk", 2))

	if len(store.stored) != 1 {
		t.Fatalf("stored = %d, want 1", len(store.stored))
	}
}

package models

import "time"

type NotificationType string

const (
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
	NotificationTypeInfo    NotificationType = "info"
)

// Notification is a user-visible message in the store's feed. Pure
// side-channel: no invariant ties it to other entities, and failing to write
// one never fails the operation that triggered it.
type Notification struct {
	ID        int              `json:"id"`
	StoreID   int              `json:"store_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationEvent describes a notification to emit.
type NotificationEvent struct {
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
}

package handlers

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"shop-backend/internal/models"
)

// NotificationHub fans stored notifications out to connected feed clients,
// partitioned per store. A slow or dead connection is dropped rather than
// allowed to block the broadcast.
type NotificationHub struct {
	mu      sync.Mutex
	clients map[int]map[*websocket.Conn]bool
}

func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		clients: make(map[int]map[*websocket.Conn]bool),
	}
}

func (h *NotificationHub) register(storeID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[storeID] == nil {
		h.clients[storeID] = make(map[*websocket.Conn]bool)
	}
	h.clients[storeID][conn] = true
}

func (h *NotificationHub) unregister(storeID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns := h.clients[storeID]; conns != nil {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, storeID)
		}
	}
	conn.Close()
}

// Broadcast pushes a notification to every live connection of the store.
func (h *NotificationHub) Broadcast(storeID int, n models.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients[storeID] {
		if err := conn.WriteJSON(n); err != nil {
			log.Printf("[Notifications] dropping feed client for store %d: %v", storeID, err)
			conn.Close()
			delete(h.clients[storeID], conn)
		}
	}
}

package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-digital/utils"
)

// Event types
const (
	EventComandaCreated = "comanda_created"
	EventComandaUpdate  = "comanda_update"
	EventItemAdded      = "item_added"
	EventItemRemoved    = "item_removed"
	EventPaymentPending = "payment_pending"
	EventPaymentUpdate  = "payment_update"
	EventTableCreate    = "table_create"
	EventTableUpdate    = "table_update"
	EventProductUpdate  = "product_update"
)

// writeWait bounds each client write.
var writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds the connected staff screens and fans events out to them.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

// Unregister drops a connection and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast sends an event to every client. Clients that fail a write or miss
// the write deadline are dropped. A nil hub is a no-op.
func (h *Hub) Broadcast(event string, data interface{}) {
	if h == nil {
		return
	}

	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling %s message: %v", event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, role := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"event": event,
				"role":  role,
			}).Errorf("Error sending message to client: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"event":   event,
		"clients": len(h.clients),
	}).Debug("Broadcast sent")
}

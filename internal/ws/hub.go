package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go-pos-ledger/internal/service"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog/log"
)

// EventType is the type field of every message pushed to clients.
const EventType = "ledger_update"

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
	done       chan struct{}
}

const broadcastBuffer = 64

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
	}
}

// Run serves register, unregister and broadcast requests until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			n := len(h.Clients)
			h.mutex.Unlock()
			log.Debug().Int("clients", n).Msg("ws client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Join registers conn. It reports false once the hub has stopped.
func (h *Hub) Join(conn *websocket.Conn) bool {
	select {
	case h.Register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters conn. After the hub stopped it returns immediately.
func (h *Hub) Leave(conn *websocket.Conn) {
	select {
	case h.Unregister <- conn:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// LedgerChanged queues the event for every connected client. Events keep their order; when
// the queue is full the event is dropped.
func (h *Hub) LedgerChanged(ev service.ChangeEvent) {
	payload := make(map[string]interface{}, len(ev.Data)+2)
	for k, v := range ev.Data {
		payload[k] = v
	}
	payload["type"] = EventType
	payload["action"] = ev.Action

	msg, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("action", ev.Action).Msg("encode ws event")
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		log.Warn().Str("action", ev.Action).Msg("ws broadcast queue full, event dropped")
	}
}

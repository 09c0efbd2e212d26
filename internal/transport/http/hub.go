package http

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans broadcast events out to the websocket connections subscribed to a
// session. It implements game.BroadcastSink: delivery is fire-and-forget and
// a slow client drops events rather than blocking the engine.
type Hub struct {
	mu     sync.RWMutex
	scopes map[string]map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{scopes: make(map[string]map[*client]struct{})}
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Notify pushes an event to every connection subscribed to the scope.
func (h *Hub) Notify(scope, event string, payload any) {
	raw, err := json.Marshal(outboundMessage{Type: event, Payload: payload})
	if err != nil {
		log.Printf("hub: marshal %s event: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.scopes[scope] {
		select {
		case c.send <- raw:
		default:
			// Slow consumer; skip rather than stall the broadcast.
		}
	}
}

func (h *Hub) register(scope string, c *client) {
	h.mu.Lock()
	if h.scopes[scope] == nil {
		h.scopes[scope] = make(map[*client]struct{})
	}
	h.scopes[scope][c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(scope string, c *client) {
	h.mu.Lock()
	if clients, ok := h.scopes[scope]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.scopes, scope)
		}
	}
	h.mu.Unlock()
	c.close()
}

// sendDirect queues a message for one connection only (replies to commands).
func (c *client) sendDirect(event string, payload any) {
	raw, err := json.Marshal(outboundMessage{Type: event, Payload: payload})
	if err != nil {
		log.Printf("hub: marshal %s reply: %v", event, err)
		return
	}
	select {
	case c.send <- raw:
	default:
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// writeLoop is the single writer for a connection; gorilla allows only one
// concurrent writer per conn.
func (c *client) writeLoop() {
	for raw := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}

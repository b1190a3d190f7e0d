package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Hub fans access events out to the display clients watching each kiosk.
type Hub struct {
	clients    map[*Client]bool
	kiosks     map[string]map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		kiosks:     make(map[string]map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.broadcastToKiosk(event)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if h.kiosks[client.kioskID] == nil {
		h.kiosks[client.kioskID] = make(map[*Client]bool)
	}
	h.kiosks[client.kioskID][client] = true
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		delete(h.kiosks[client.kioskID], client)

		if len(h.kiosks[client.kioskID]) == 0 {
			delete(h.kiosks, client.kioskID)
		}

		close(client.send)
	}
}

func (h *Hub) broadcastToKiosk(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.kiosks[event.KioskID]
	if clients == nil {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		return
	}

	for client := range clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
			delete(h.kiosks[event.KioskID], client)
		}
	}
}

// BroadcastToKiosk queues an event for every client watching the kiosk. A
// full broadcast queue drops the event rather than blocking recognition.
func (h *Hub) BroadcastToKiosk(kioskID string, eventType EventType, data interface{}) {
	event := Event{
		KioskID:   kioskID,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- event:
	default:
	}
}

func (h *Hub) GetConnectedClients(kioskID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.kiosks[kioskID])
}

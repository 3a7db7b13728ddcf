package realtime

import (
	"fmt"
	"log"
)

// TodoGroup names the broadcast group carrying todo mutations for one
// user's connected sessions.
func TodoGroup(userID uint64) string {
	return fmt.Sprintf("todos:%d", userID)
}

// NotificationGroup names the broadcast group for a user's generic
// notifications.
func NotificationGroup(userID uint64) string {
	return fmt.Sprintf("notifications:%d", userID)
}

type envelope struct {
	group string
	data  []byte
}

// Hub routes messages to per-user connection groups. All membership
// state is owned by the Run goroutine; other goroutines talk to it
// through channels only.
type Hub struct {
	groups     map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
}

// NewHub creates a Hub; call Run in its own goroutine before use
func NewHub() *Hub {
	return &Hub{
		groups:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, 64),
	}
}

// Run processes registration and broadcast traffic until the process
// exits
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			clients := h.groups[client.group]
			if clients == nil {
				clients = make(map[*Client]bool)
				h.groups[client.group] = clients
			}
			clients[client] = true

		case client := <-h.unregister:
			if clients, ok := h.groups[client.group]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.groups, client.group)
					}
				}
			}

		case msg := <-h.broadcast:
			for client := range h.groups[msg.group] {
				select {
				case client.send <- msg.data:
				default:
					// Slow consumer: drop the connection rather than
					// stall the hub.
					log.Printf("realtime: dropping slow consumer in %s", msg.group)
					delete(h.groups[msg.group], client)
					close(client.send)
				}
			}
		}
	}
}

// Broadcast queues a message for every connection in a group
func (h *Hub) Broadcast(group string, data []byte) {
	h.broadcast <- envelope{group: group, data: data}
}

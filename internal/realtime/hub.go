package realtime

import (
	"sync"
)

// Client is a single subscriber of a topic: a websocket connection or an
// in-process change listener.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub fans messages out to the clients registered under a topic.
type Hub struct {
	mu             sync.RWMutex
	topicToClients map[string]map[Client]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		topicToClients: make(map[string]map[Client]struct{}),
	}
}

// Register adds a client under a topic.
func (h *Hub) Register(topic string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.topicToClients[topic]; !ok {
		h.topicToClients[topic] = make(map[Client]struct{})
	}
	h.topicToClients[topic][client] = struct{}{}
}

// Unregister removes a client; if the topic has no more clients, cleans up map.
// Once Unregister returns no Broadcast is still sending to the client.
func (h *Hub) Unregister(topic string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.topicToClients[topic]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.topicToClients, topic)
		}
	}
}

// Broadcast sends a message to all clients of a topic and returns how many
// accepted it.
func (h *Hub) Broadcast(topic string, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.topicToClients[topic] {
		if c.Send(message) {
			delivered++
		}
		// failed writes are cleaned up by the owner of the client
	}
	return delivered
}

// Subscribers returns the number of clients registered under topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topicToClients[topic])
}

// CloseTopic unregisters and closes every client of a topic.
func (h *Hub) CloseTopic(topic string) {
	h.mu.Lock()
	clients := h.topicToClients[topic]
	delete(h.topicToClients, topic)
	h.mu.Unlock()
	for c := range clients {
		c.Close()
	}
}

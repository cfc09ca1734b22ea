// Package notifications provides real-time notification delivery and management.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
)

const (
	// Connection caps: per user and across the whole instance.
	maxClientsPerUser = 12
	maxTotalClients   = 10000
)

// Hub fans notification frames out to a user's open websocket connections.
// Presence is tracked alongside so other features can ask who is online.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uint]map[*Client]struct{}
	total    int
	shutdown chan struct{}
	done     chan struct{}
	presence *PresenceTracker
}

// NewHub creates a hub. Passing a Redis client makes presence visible across
// instances; without one presence is tracked locally.
func NewHub(redisClients ...*redis.Client) *Hub {
	var rdb *redis.Client
	if len(redisClients) > 0 {
		rdb = redisClients[0]
	}
	return &Hub{
		clients:  make(map[uint]map[*Client]struct{}),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		presence: NewPresenceTracker(rdb, PresenceConfig{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "notification hub" }

// Register adds a connection for the user, enforcing the per-user and
// instance-wide caps. The client's activity callback keeps the user's
// presence entry fresh while the connection lives.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()

	if h.total >= maxTotalClients {
		h.mu.Unlock()
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.clients[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.clients[userID] = m
	}
	if len(m) >= maxClientsPerUser {
		h.mu.Unlock()
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	client.OnActivity = func(uid uint) {
		h.presence.Touch(context.Background(), uid)
	}

	m[client] = struct{}{}
	h.total++
	h.mu.Unlock()

	h.presence.Register(context.Background(), userID)
	return client, nil
}

// UnregisterClient removes a client and releases its presence slot. Safe to
// call more than once for the same client.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	removed := false
	if m, ok := h.clients[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.total--
			removed = true
		}
		if len(m) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	h.mu.Unlock()

	if removed {
		h.presence.Unregister(context.Background(), client.UserID)
	}
}

// SetPresenceCallbacks registers online/offline transition hooks.
func (h *Hub) SetPresenceCallbacks(onOnline, onOffline func(userID uint)) {
	h.presence.SetCallbacks(onOnline, onOffline)
}

// IsOnline reports whether the user has an active connection on any instance.
func (h *Hub) IsOnline(userID uint) bool {
	return h.presence.IsOnline(context.Background(), userID)
}

// Broadcast sends the message to every connection the user has here.
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.clients[userID]; ok {
		data := []byte(message)
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// BroadcastAll sends the message to every connected client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.clients {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// StartWiring subscribes the hub to the notifier's Redis channels so frames
// published by any instance reach this instance's connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		if channel == "notifications:broadcast" {
			h.BroadcastAll(payload)
			return
		}
		if !strings.HasPrefix(channel, "notifications:user:") {
			log.Printf("invalid notification channel: %s", channel)
			return
		}
		var userID uint
		if _, err := fmt.Sscanf(channel, "notifications:user:%d", &userID); err != nil {
			log.Printf("invalid notification channel: %s", channel)
			return
		}
		h.Broadcast(userID, payload)
	})
}

// Shutdown stops presence tracking and closes every connection with a
// going-away frame.
func (h *Hub) Shutdown(_ context.Context) error {
	close(h.shutdown)
	h.presence.Stop()

	h.mu.Lock()
	for userID, userConns := range h.clients {
		for client := range userConns {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				log.Printf("failed to write close message for user %d: %v", userID, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for user %d: %v", userID, err)
			}
		}
	}
	h.clients = make(map[uint]map[*Client]struct{})
	h.mu.Unlock()

	close(h.done)
	return nil
}

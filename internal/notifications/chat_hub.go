// Package notifications provides real-time notification delivery and management.
package notifications

import (
	"context"
	"errors"
	"log"
	"sync"

	"ripple/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per chat channel (both ends plus reconnect slack)
	maxConnsPerChannel = 8
	// Max total chat connections
	maxTotalChatConns = 10000
)

// ChatHub manages WebSocket connections for one-to-one chat.
// Unlike Hub (which is user-centric), ChatHub is channel-centric: clients
// register under the canonical channel name shared by the two participants.
type ChatHub struct {
	mu sync.RWMutex

	// Map: channel name -> set of Clients
	channels map[string]map[*Client]struct{}

	// Map: client -> channel name, for unregistration
	clientChannels map[*Client]string

	totalConns int
}

// Name returns a human-readable identifier for this hub.
func (h *ChatHub) Name() string { return "chat hub" }

// NewChatHub creates a new ChatHub instance.
func NewChatHub() *ChatHub {
	return &ChatHub{
		channels:       make(map[string]map[*Client]struct{}),
		clientChannels: make(map[*Client]string),
	}
}

// Register adds a connection to the channel. Returns the Client or an error
// if connection limits are exceeded.
func (h *ChatHub) Register(channel string, userID uint, username string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()

	if h.totalConns >= maxTotalChatConns {
		h.mu.Unlock()
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.channels[channel]
	if !ok {
		m = make(map[*Client]struct{})
		h.channels[channel] = m
	}

	if len(m) >= maxConnsPerChannel {
		h.mu.Unlock()
		return nil, errors.New("channel connection limit reached")
	}

	client := NewClient(h, conn, userID)
	client.Username = username

	m[client] = struct{}{}
	h.clientChannels[client] = channel
	h.totalConns++
	h.mu.Unlock()

	observability.ChatChannelConnections.WithLabelValues(channel).Inc()

	return client, nil
}

// UnregisterClient removes a client from its channel. Safe to call more than
// once; repeated calls are no-ops.
func (h *ChatHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	channel, ok := h.clientChannels[client]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clientChannels, client)
	if m, exists := h.channels[channel]; exists {
		delete(m, client)
		if len(m) == 0 {
			delete(h.channels, channel)
		}
	}
	h.totalConns--
	h.mu.Unlock()

	observability.ChatChannelConnections.WithLabelValues(channel).Dec()
}

// Broadcast sends a frame to every connection on the channel.
func (h *ChatHub) Broadcast(channel string, payload string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.channels[channel]; ok {
		data := []byte(payload)
		for c := range clients {
			c.TrySend(data)
		}
	}
	observability.ChatMessageThroughput.WithLabelValues(channel, "broadcast").Inc()
}

// ChannelSize returns the number of connections on the channel.
func (h *ChatHub) ChannelSize(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// StartWiring connects the Notifier to this hub: frames published to
// chat:canal:<name> are forwarded to every local connection on that channel.
func (h *ChatHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartChatSubscriber(ctx, func(redisChannel, payload string) {
		channel, ok := ParseChatChannel(redisChannel)
		if !ok {
			log.Printf("invalid chat channel: %s", redisChannel)
			return
		}
		h.Broadcast(channel, payload)
	})
}

// Shutdown gracefully closes all websocket connections.
func (h *ChatHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	for channel, clients := range h.channels {
		for client := range clients {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				log.Printf("failed to write close message on channel %s: %v", channel, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket on channel %s: %v", channel, err)
			}
		}
	}
	h.channels = make(map[string]map[*Client]struct{})
	h.clientChannels = make(map[*Client]string)
	h.totalConns = 0
	h.mu.Unlock()

	return nil
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ripple/internal/middleware"
	"ripple/internal/notifications"
	"ripple/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	chatFrameLimit  = 30
	chatFrameWindow = time.Minute
)

var (
	notiWSLog = observability.NewWSLogger("notifications")
	chatWSLog = observability.NewWSLogger("chat")
)

// WebsocketHandler handles the notification WebSocket. Clients receive
// pushed notification frames; no incoming frames are expected.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.WebSocketConnectionsTotal.Inc()
		observability.RecordWebSocketEvent("noti_connect")
		defer func() {
			observability.WebSocketConnectionsTotal.Dec()
			observability.RecordWebSocketEvent("noti_disconnect")
		}()

		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			notiWSLog.Error(context.Background(), userID, "", err)
			_ = conn.Close()
			return
		}
		notiWSLog.Connect(context.Background(), userID, "")
		defer notiWSLog.Disconnect(context.Background(), userID, "", "peer closed")

		go client.WritePump()

		// Read pump runs in the handler goroutine; it unregisters the
		// client and closes the connection when the peer goes away.
		client.ReadPump()
	})
}

// wsErrorFrame builds the error frame sent to chat clients when a frame is
// rejected or persistence fails.
func wsErrorFrame(detail string) []byte {
	frame, _ := json.Marshal(map[string]any{"type": "error", "detail": detail})
	return frame
}

// WebSocketChatHandler handles the one-to-one chat WebSocket. The peer
// username comes from the route; both parties land on the same canonical
// channel regardless of who initiated.
func (s *Server) WebSocketChatHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.WebSocketConnectionsTotal.Inc()
		observability.RecordWebSocketEvent("chat_connect")
		defer func() {
			observability.WebSocketConnectionsTotal.Dec()
			observability.RecordWebSocketEvent("chat_disconnect")
		}()

		ctx := context.Background()

		userIDVal := conn.Locals("userID")
		usernameVal := conn.Locals("username")
		if userIDVal == nil || usernameVal == nil {
			_ = conn.WriteMessage(websocket.TextMessage, wsErrorFrame("unauthorized"))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)
		username := usernameVal.(string)

		peer := conn.Params("username")
		channel, err := s.chatService.ChannelFor(ctx, username, peer)
		if err != nil {
			_ = conn.WriteMessage(websocket.TextMessage, wsErrorFrame("user not found"))
			_ = conn.Close()
			return
		}

		client, err := s.chatHub.Register(channel, userID, username, conn)
		if err != nil {
			chatWSLog.Error(ctx, userID, channel, err)
			_ = conn.WriteMessage(websocket.TextMessage, wsErrorFrame(err.Error()))
			_ = conn.Close()
			return
		}
		chatWSLog.Connect(ctx, userID, channel)
		defer chatWSLog.Disconnect(ctx, userID, channel, "peer closed")

		client.IncomingHandler = func(c *notifications.Client, raw []byte) {
			var frame struct {
				Message  string `json:"message"`
				Username string `json:"username"`
			}
			if err := json.Unmarshal(raw, &frame); err != nil {
				c.TrySend(wsErrorFrame("invalid frame"))
				return
			}

			if s.redis != nil {
				id := fmt.Sprintf("user:%d", userID)
				allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "chat_message", id, chatFrameLimit, chatFrameWindow)
				if !allowed {
					c.TrySend(wsErrorFrame("Rate limit exceeded. Please wait a moment."))
					return
				}
			}

			// Sender identity comes from the authenticated connection, not
			// the frame body.
			if _, err := s.chatService.SaveAndBroadcast(ctx, channel, username, frame.Message); err != nil {
				c.TrySend(wsErrorFrame(err.Error()))
				return
			}
		}

		go client.WritePump()
		client.ReadPump()
	})
}

// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
)

// WSLogger emits structured lifecycle events for one websocket hub.
type WSLogger struct {
	hub string
}

// NewWSLogger returns a logger scoped to the named hub.
func NewWSLogger(hub string) *WSLogger {
	return &WSLogger{hub: hub}
}

// Connect logs an accepted websocket connection.
func (l *WSLogger) Connect(ctx context.Context, userID uint, channel string) {
	slog.InfoContext(ctx, "websocket connected",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("channel", channel),
	)
}

// Disconnect logs a closed websocket connection with its reason.
func (l *WSLogger) Disconnect(ctx context.Context, userID uint, channel, reason string) {
	slog.InfoContext(ctx, "websocket disconnected",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("channel", channel),
		slog.String("reason", reason),
	)
}

// Error logs a websocket failure tied to a user and channel.
func (l *WSLogger) Error(ctx context.Context, userID uint, channel string, err error) {
	slog.ErrorContext(ctx, "websocket error",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("channel", channel),
		slog.String("error", err.Error()),
	)
}

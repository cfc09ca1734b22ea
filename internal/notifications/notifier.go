// Package notifications provides real-time notification delivery and management.
package notifications

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(
	ctx context.Context, userID uint, payload string,
) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends a notification payload to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, "notifications:broadcast", payload).Err()
}

// StartPatternSubscriber subscribes to pattern `notifications:user:*` and calls onMessage
// for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "notifications:user:*", "notifications:broadcast")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// PublishChatMessage publishes a chat frame to a canonical channel.
func (n *Notifier) PublishChatMessage(
	ctx context.Context, channel, payload string,
) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, ChatChannel(channel), payload).Err()
}

// StartChatSubscriber subscribes to `chat:canal:*` and calls onMessage for
// each incoming frame.
func (n *Notifier) StartChatSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "chat:canal:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in ChatSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}

// ChatChannel derives the Redis pub/sub channel for a canonical chat channel name.
func ChatChannel(channel string) string {
	return fmt.Sprintf("chat:canal:%s", channel)
}

// ParseChatChannel extracts the canonical chat channel name from a Redis
// pub/sub channel, returning false when the prefix does not match.
func ParseChatChannel(redisChannel string) (string, bool) {
	const prefix = "chat:canal:"
	if !strings.HasPrefix(redisChannel, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(redisChannel, prefix)
	if name == "" {
		return "", false
	}
	return name, true
}

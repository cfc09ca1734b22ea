package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache key formats. Profiles and search results key on username because
// the API is username-addressed; chat history keys on the canonical
// channel name.
const (
	ProfileKeyPrefix     = "profile:%s"
	PostKeyPrefix        = "post:%d"
	FeedKeyPrefix        = "feed:recent"
	ChatHistoryKeyPrefix = "chat:%s:history"
	JTIBlacklistPrefix   = "jti:blacklist:%s"
)

// ChatHistoryTTL bounds staleness for cached history pages; writes also
// invalidate the channel entry.
const ChatHistoryTTL = 2 * time.Minute

func ProfileKey(username string) string {
	return fmt.Sprintf(ProfileKeyPrefix, username)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func FeedKey() string {
	return FeedKeyPrefix
}

func ChatHistoryKey(channel string) string {
	return fmt.Sprintf(ChatHistoryKeyPrefix, channel)
}

func JTIBlacklistKey(jti string) string {
	return fmt.Sprintf(JTIBlacklistPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateProfile(ctx context.Context, username string) {
	Invalidate(ctx, ProfileKey(username))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, FeedKey())
}

func InvalidateChatHistory(ctx context.Context, channel string) {
	Invalidate(ctx, ChatHistoryKey(channel))
}

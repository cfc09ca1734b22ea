// Package service provides application business logic (users, posts, chat, etc.).
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/validation"
)

// ChatHistoryLimit caps how many messages a history fetch returns.
const ChatHistoryLimit = 200

// ChatFrame is the wire shape of a chat message, inbound and outbound.
// Outbound frames carry the "chat_message_echo" type tag.
type ChatFrame struct {
	Type     string `json:"type,omitempty"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

// ChatService provides direct-message business logic: canonical channel
// naming, history reads and the save-then-broadcast write path.
type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	deliver  func(ctx context.Context, channel, payload string)
}

// NewChatService returns a new ChatService. deliver fans a serialized frame
// out to every member of the channel group; it runs only after a successful
// save.
func NewChatService(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	deliver func(ctx context.Context, channel, payload string),
) *ChatService {
	return &ChatService{chatRepo: chatRepo, userRepo: userRepo, deliver: deliver}
}

// ChannelName derives the canonical channel for a pair of usernames. The two
// names are ordered lexicographically first, so both participants resolve to
// the same channel no matter who initiates.
func ChannelName(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("chat_%s-%s", a, b)
}

// ChannelFor resolves the channel between the requester and a peer,
// rejecting unknown peers with a not-found error.
func (s *ChatService) ChannelFor(ctx context.Context, requester, peer string) (string, error) {
	other, err := s.userRepo.GetByUsername(ctx, peer)
	if err != nil {
		return "", err
	}
	if other == nil {
		return "", models.NewNotFoundError("User", peer)
	}
	return ChannelName(requester, peer), nil
}

// History returns the conversation between requester and peer, newest first,
// along with the resolved channel name. The peer is looked up exactly once.
func (s *ChatService) History(ctx context.Context, requester, peer string) (string, []models.ChatMessage, error) {
	channel, err := s.ChannelFor(ctx, requester, peer)
	if err != nil {
		return "", nil, err
	}
	messages, err := s.chatRepo.History(ctx, channel, ChatHistoryLimit)
	if err != nil {
		return "", nil, err
	}
	return channel, messages, nil
}

// SaveAndBroadcast persists an inbound frame and, only after the row is
// safely written, echoes it to every connection in the channel group
// including the sender. A failed save suppresses the broadcast entirely so
// no participant ever sees a message that history will not contain.
func (s *ChatService) SaveAndBroadcast(ctx context.Context, channel, username, message string) (*models.ChatMessage, error) {
	if err := validation.ValidateLength("Message", message, models.MaxChatMessageLen); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	msg := &models.ChatMessage{
		Username: username,
		Message:  message,
		Channel:  channel,
	}
	if err := s.chatRepo.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}

	if s.deliver != nil {
		payload, err := json.Marshal(ChatFrame{
			Type:     "chat_message_echo",
			Message:  message,
			Username: username,
		})
		if err == nil {
			s.deliver(ctx, channel, string(payload))
		}
	}

	return msg, nil
}

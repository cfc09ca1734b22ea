package server

import (
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetChatHistory handles GET /api/chat/canal/:username (history between the
// requester and the named peer, newest first).
func (s *Server) GetChatHistory(c *fiber.Ctx) error {
	requester := c.Locals("username").(string)
	peer := c.Params("username")

	channel, messages, err := s.chatService.History(c.UserContext(), requester, peer)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"canal": channel, "messages": messages})
}

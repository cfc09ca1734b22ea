package server

import (
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

const notiPageSize = 20

// GetReadNotifications handles GET /api/noti (already-read notifications).
func (s *Server) GetReadNotifications(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, notiPageSize)

	notis, err := s.notiService.ListRead(c.UserContext(), userID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(notis)
}

// GetUnreadNotifications handles GET /api/noti/no (unread notifications).
func (s *Server) GetUnreadNotifications(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, notiPageSize)

	notis, err := s.notiService.ListUnread(c.UserContext(), userID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(notis)
}

// GetUnreadCount handles GET /api/noti/count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	count, err := s.notiService.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}

// MarkNotificationsRead handles PUT /api/noti/leer
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	updated, err := s.notiService.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "read", "updated": updated})
}

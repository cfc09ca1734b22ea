package server

import (
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/users/:username
func (s *Server) GetProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	requesterID := c.Locals("userID").(uint)

	profile, err := s.userService.Profile(c.UserContext(), username, requesterID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile handles PUT/PATCH /api/users/:username. Only the profile
// owner may mutate it.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	if c.Locals("username").(string) != username {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only edit your own profile"))
	}

	var req struct {
		Name       *string `json:"name"`
		Bio        *string `json:"bio"`
		Avatar     *string `json:"avatar"`
		CoverImage *string `json:"cover_image"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:     c.Locals("userID").(uint),
		Name:       req.Name,
		Bio:        req.Bio,
		Avatar:     req.Avatar,
		CoverImage: req.CoverImage,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// DeleteProfile handles DELETE /api/users/:username. Only the profile owner
// may delete it.
func (s *Server) DeleteProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	if c.Locals("username").(string) != username {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only delete your own account"))
	}

	if err := s.userService.DeleteAccount(c.UserContext(), c.Locals("userID").(uint)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleFollow handles POST /api/users/follow/:username. Following returns
// the recorded notification; unfollowing reports "no longer following".
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	username := c.Params("username")
	actorID := c.Locals("userID").(uint)

	noti, followed, err := s.userService.ToggleFollow(c.UserContext(), actorID, username)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if !followed {
		return c.JSON(fiber.Map{"detail": "no longer following"})
	}
	return c.JSON(noti)
}

// SearchUsers handles GET /api/users/u/search?query=
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	requesterID := c.Locals("userID").(uint)
	query := c.Query("query")

	results, err := s.userService.Search(c.UserContext(), requesterID, query)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"users": results})
}

// RecommendUsers handles GET /api/users/reco
func (s *Server) RecommendUsers(c *fiber.Ctx) error {
	requesterID := c.Locals("userID").(uint)

	results, err := s.userService.Recommend(c.UserContext(), requesterID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"users": results})
}

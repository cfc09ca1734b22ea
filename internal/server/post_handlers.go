package server

import (
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, service.DefaultPageSize)

	posts, err := s.postService.ListPosts(c.UserContext(), p.Limit, p.Offset, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Content string `json:"content"`
		Image   string `json:"image"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:  userID,
		Content: req.Content,
		Image:   req.Image,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	post, err := s.postService.GetPost(c.UserContext(), id, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT/PATCH /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var req struct {
		Content string  `json:"content"`
		Image   *string `json:"image"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:  userID,
		PostID:  id,
		Content: req.Content,
		Image:   req.Image,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.postService.DeletePost(c.UserContext(), userID, id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleLike handles POST /api/posts/like/:id
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	liked, err := s.postService.ToggleLike(c.UserContext(), userID, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "liked": liked})
}

// ToggleShare handles POST /api/posts/shared/:id
func (s *Server) ToggleShare(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	shared, err := s.postService.ToggleShare(c.UserContext(), userID, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "shared": shared})
}

// GetUserPosts handles GET /api/posts/my/:username
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	username := c.Params("username")
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, service.DefaultPageSize)

	posts, err := s.postService.PostsByUsername(c.UserContext(), username, p.Limit, p.Offset, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// GetLikedPosts handles GET /api/posts/likes/:username
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	username := c.Params("username")
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, service.DefaultPageSize)

	posts, err := s.postService.LikedByUsername(c.UserContext(), username, p.Limit, p.Offset, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// GetSharedPosts handles GET /api/posts/shared/:username
func (s *Server) GetSharedPosts(c *fiber.Ctx) error {
	username := c.Params("username")
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, service.DefaultPageSize)

	posts, err := s.postService.SharedByUsername(c.UserContext(), username, p.Limit, p.Offset, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(posts)
}

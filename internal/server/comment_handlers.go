package server

import (
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/comments/:id (comments for a post).
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, service.DefaultPageSize)

	comments, err := s.commentService.ListComments(c.UserContext(), postID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/comments/:id
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID: userID,
		PostID: postID,
		Body:   req.Body,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComment handles GET /api/posts/comment/:id (a single comment).
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.GetComment(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(comment)
}

// UpdateComment handles PUT/PATCH /api/posts/comment/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    userID,
		CommentID: id,
		Body:      req.Body,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/posts/comment/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := c.Locals("userID").(uint)

	if err := s.commentService.DeleteComment(c.UserContext(), userID, id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

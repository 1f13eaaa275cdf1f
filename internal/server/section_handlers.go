package server

import (
	"elfatih/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AddTextSection handles POST /api/v1/posts/:id/sections/text
func (s *Server) AddTextSection(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		OrderIndex int    `json:"order_index"`
		Content    string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	section, err := s.postService.AddTextSection(c.UserContext(), id, req.OrderIndex, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(section)
}

// AddVideoSection handles POST /api/v1/posts/:id/sections/video
func (s *Server) AddVideoSection(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		OrderIndex int    `json:"order_index"`
		VideoURL   string `json:"video_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	section, err := s.postService.AddVideoSection(c.UserContext(), id, req.OrderIndex, req.VideoURL)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(section)
}

// AddImageSection handles POST /api/v1/posts/:id/sections/image. Multipart
// body with an image file and an order_index form field.
func (s *Server) AddImageSection(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	image, err := multipartImage(c, "image")
	if err != nil {
		return respondServiceError(c, err)
	}
	if image == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image file is required"))
	}

	orderIndex := formInt(c, "order_index", 0)

	section, err := s.postService.AddImageSection(c.UserContext(), id, orderIndex, image)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(section)
}

// GetSectionImage handles GET /api/v1/posts/sections/:sectionId/image
func (s *Server) GetSectionImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "sectionId")
	if err != nil {
		return nil
	}

	img, err := s.postService.GetSectionImage(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, img.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(img.Data)
}

// UpdateSectionOrder handles PUT /api/v1/posts/sections/:sectionId/order.
// Remaining sections shift so order stays dense.
func (s *Server) UpdateSectionOrder(c *fiber.Ctx) error {
	id, err := s.parseID(c, "sectionId")
	if err != nil {
		return nil
	}

	var req struct {
		OrderIndex int `json:"order_index"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	section, err := s.postService.ReorderSection(c.UserContext(), id, req.OrderIndex)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(section)
}

// DeleteSection handles DELETE /api/v1/posts/sections/:sectionId
func (s *Server) DeleteSection(c *fiber.Ctx) error {
	id, err := s.parseID(c, "sectionId")
	if err != nil {
		return nil
	}

	if err := s.postService.DeleteSection(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddFeedback handles POST /api/v1/posts/:id/feedback. Re-voting the same
// sign is a no-op; voting the opposite sign flips the vote.
func (s *Server) AddFeedback(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	var req struct {
		FeedbackType models.FeedbackType `json:"feedback_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.SetFeedback(c.UserContext(), userID, id, req.FeedbackType)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// CheckFeedback handles GET /api/v1/posts/:id/feedback/check
func (s *Server) CheckFeedback(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	feedback, err := s.postService.CheckFeedback(c.UserContext(), userID, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	if feedback == nil {
		return c.JSON(fiber.Map{
			"has_feedback": false,
		})
	}
	return c.JSON(fiber.Map{
		"has_feedback":  true,
		"feedback_type": feedback.FeedbackType,
	})
}

// RemoveFeedback handles DELETE /api/v1/posts/:id/feedback
func (s *Server) RemoveFeedback(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	if err := s.postService.RemoveFeedback(c.UserContext(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

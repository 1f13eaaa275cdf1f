package server

import (
	"strings"

	"elfatih/internal/models"
	"elfatih/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/v1/posts. Anonymous callers get active posts
// without per-user feedback; a valid bearer token adds the caller's feedback
// annotation without requiring one.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	includeImages := c.QueryBool("include_images", false)

	userID, _ := s.optionalUserID(c)

	posts, err := s.postService.ListPosts(c.UserContext(), page.Limit, page.Offset, true, includeImages, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPostsWithFeedback handles GET /api/v1/posts/with-feedback. Requires
// authentication so every returned post carries the caller's feedback.
func (s *Server) GetPostsWithFeedback(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	includeImages := c.QueryBool("include_images", false)

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	posts, err := s.postService.ListPosts(c.UserContext(), page.Limit, page.Offset, true, includeImages, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/v1/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	includeImage := c.QueryBool("include_image", false)
	post, err := s.postService.GetPost(c.UserContext(), id, includeImage)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetPostImage handles GET /api/v1/posts/:id/image, serving the stored
// binary directly.
func (s *Server) GetPostImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	img, err := s.postService.GetPostImage(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, img.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(img.Data)
}

// CreatePost handles POST /api/v1/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Header      string `json:"header"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), req.Header, req.Description, nil)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// CreateCompletePost handles POST /api/v1/posts/complete. The multipart body
// carries header, description, a sections JSON array, an optional main_image
// file and image files referenced by filename from image sections.
func (s *Server) CreateCompletePost(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid multipart form"))
	}

	header := formValue(form.Value, "header")
	description := formValue(form.Value, "description")

	var sections []service.SectionInput
	if raw := formValue(form.Value, "sections"); raw != "" {
		sections, err = service.ParseSections(raw)
		if err != nil {
			return respondServiceError(c, err)
		}
	}

	// Image sections reference their file by filename in Content.
	uploads := make(map[string]*service.ImageUpload)
	for _, fh := range form.File["images"] {
		upload, upErr := readUpload(fh)
		if upErr != nil {
			return respondServiceError(c, upErr)
		}
		uploads[fh.Filename] = upload
	}
	for i := range sections {
		if sections[i].Type == models.SectionTypeImage {
			sections[i].Upload = uploads[strings.TrimSpace(sections[i].Content)]
		}
	}

	mainImage, err := multipartImage(c, "main_image")
	if err != nil {
		return respondServiceError(c, err)
	}

	post, err := s.postService.CreateCompletePost(c.UserContext(), header, description, mainImage, sections)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/v1/posts/:id. Absent fields are unchanged.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Header      *string `json:"header"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), id, req.Header, req.Description, req.IsActive)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// UpdatePostImage handles PUT /api/v1/posts/:id/image
func (s *Server) UpdatePostImage(c *fiber.Ctx) error {
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

	if err := s.postService.UpdatePostImage(c.UserContext(), id, image); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Post image updated",
	})
}

// RemovePostImage handles DELETE /api/v1/posts/:id/image
func (s *Server) RemovePostImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.RemovePostImage(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeletePost handles DELETE /api/v1/posts/:id. Sections and feedback rows
// are removed with the post.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func formValue(values map[string][]string, key string) string {
	if v, ok := values[key]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

package server

import (
	"elfatih/internal/models"
	"elfatih/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminListUsers handles GET /api/v1/admin/users. Includes inactive accounts.
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	users, err := s.userService.ListUsers(c.UserContext(), page.Limit, page.Offset, true)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// AdminCreateUser handles POST /api/v1/admin/users. Unlike public
// registration the role and active flag are taken from the request.
func (s *Server) AdminCreateUser(c *fiber.Ctx) error {
	var req struct {
		Username string          `json:"username"`
		Email    string          `json:"email"`
		FullName string          `json:"full_name"`
		Phone    string          `json:"phone"`
		Password string          `json:"password"`
		UserType models.UserType `json:"user_type"`
		IsActive *bool           `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.UserType == "" {
		req.UserType = models.UserTypeUser
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	user, err := s.userService.CreateUser(c.UserContext(), service.CreateUserInput{
		RegisterInput: service.RegisterInput{
			Username: req.Username,
			Email:    req.Email,
			FullName: req.FullName,
			Phone:    req.Phone,
			Password: req.Password,
		},
		UserType: req.UserType,
		IsActive: active,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// AdminListPosts handles GET /api/v1/admin/posts. Unlike the public listing
// it includes deactivated posts unless active_only=true is passed.
func (s *Server) AdminListPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	activeOnly := c.QueryBool("active_only", false)
	includeImages := c.QueryBool("include_images", false)

	userID, _ := c.Locals("userID").(uint)
	posts, err := s.postService.ListPosts(c.UserContext(), page.Limit, page.Offset, activeOnly, includeImages, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// AdminStats handles GET /api/v1/admin/stats
func (s *Server) AdminStats(c *fiber.Ctx) error {
	stats, err := s.userService.Stats(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stats)
}

// PromoteUser handles POST /api/v1/admin/users/:id/promote
func (s *Server) PromoteUser(c *fiber.Ctx) error {
	return s.setUserRole(c, true)
}

// DemoteUser handles POST /api/v1/admin/users/:id/demote
func (s *Server) DemoteUser(c *fiber.Ctx) error {
	return s.setUserRole(c, false)
}

// ActivateUser handles POST /api/v1/admin/users/:id/activate
func (s *Server) ActivateUser(c *fiber.Ctx) error {
	return s.setUserStatus(c, true)
}

// DeactivateUser handles POST /api/v1/admin/users/:id/deactivate
func (s *Server) DeactivateUser(c *fiber.Ctx) error {
	return s.setUserStatus(c, false)
}

// AdminUpdateUser handles PUT /api/v1/admin/users/:id. Same shape as the
// regular update endpoint but always runs with admin privileges.
func (s *Server) AdminUpdateUser(c *fiber.Ctx) error {
	return s.UpdateUser(c)
}

func (s *Server) setUserRole(c *fiber.Ctx, admin bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	actor, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	user, err := s.userService.SetAdmin(c.UserContext(), actor.ID, id, admin)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

func (s *Server) setUserStatus(c *fiber.Ctx, active bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	actor, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	user, err := s.userService.SetActive(c.UserContext(), actor.ID, id, active)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

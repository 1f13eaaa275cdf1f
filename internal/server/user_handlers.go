package server

import (
	"elfatih/internal/models"
	"elfatih/internal/service"

	"github.com/gofiber/fiber/v2"
)

// updateUserRequest is the JSON body shared by the self-service and admin
// user update endpoints. Absent fields are left unchanged.
type updateUserRequest struct {
	Username *string          `json:"username"`
	Email    *string          `json:"email"`
	FullName *string          `json:"full_name"`
	Phone    *string          `json:"phone"`
	Password *string          `json:"password"`
	UserType *models.UserType `json:"user_type"`
	IsActive *bool            `json:"is_active"`
}

func (r updateUserRequest) toInput() service.UpdateUserInput {
	return service.UpdateUserInput{
		Username: r.Username,
		Email:    r.Email,
		FullName: r.FullName,
		Phone:    r.Phone,
		Password: r.Password,
		UserType: r.UserType,
		IsActive: r.IsActive,
	}
}

// GetMyProfile handles GET /api/v1/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/v1/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	actor, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateUser(c.UserContext(), actor, actor.ID, req.toInput())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/v1/users/me
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	actor, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.userService.DeleteUser(c.UserContext(), actor, actor.ID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUsers handles GET /api/v1/users. Non-admin callers only see active
// accounts.
func (s *Server) GetUsers(c *fiber.Ctx) error {
	actor, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	page := parsePagination(c, 50)
	users, err := s.userService.ListUsers(c.UserContext(), page.Limit, page.Offset, actor.IsAdmin())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// GetUserByPhone handles GET /api/v1/users/phone/:phone
func (s *Server) GetUserByPhone(c *fiber.Ctx) error {
	phone := c.Params("phone")
	user, err := s.userService.GetUserByPhone(c.UserContext(), phone)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUser handles GET /api/v1/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateUser handles PUT /api/v1/users/:id. Non-admin callers may only
// update their own account; role and status changes require admin.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	actor, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateUser(c.UserContext(), actor, id, req.toInput())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/v1/users/:id (admin only)
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	actor, err := s.currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.userService.DeleteUser(c.UserContext(), actor, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

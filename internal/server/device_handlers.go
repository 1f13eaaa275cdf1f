package server

import (
	"strings"

	"elfatih/internal/models"
	"elfatih/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetDevices handles GET /api/v1/devices with page/per_page pagination.
func (s *Server) GetDevices(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 10)
	activeOnly := c.QueryBool("active_only", true)

	devices, err := s.deviceService.ListDevices(c.UserContext(), page, perPage, activeOnly)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(devices)
}

// GetDeviceByName handles GET /api/v1/devices/name/:name
func (s *Server) GetDeviceByName(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Params("name"))
	if name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Device name is required"))
	}

	device, err := s.deviceService.GetDeviceByName(c.UserContext(), name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(device)
}

// GetDeviceImage handles GET /api/v1/devices/:id/image
func (s *Server) GetDeviceImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	data, err := s.deviceService.GetDeviceImage(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, service.DetectContentType(data))
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(data)
}

// GetDeviceQRCode handles GET /api/v1/devices/:id/qr-code. A missing code is
// generated and persisted on the fly.
func (s *Server) GetDeviceQRCode(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	data, err := s.deviceService.GetQRCode(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(data)
}

// GetDevice handles GET /api/v1/devices/:id
func (s *Server) GetDevice(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	device, err := s.deviceService.GetDevice(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(device)
}

// CreateDevice handles POST /api/v1/devices
func (s *Server) CreateDevice(c *fiber.Ctx) error {
	var req struct {
		DeviceName  *string `json:"device_name"`
		Version     *string `json:"version"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	device, err := s.deviceService.CreateDevice(c.UserContext(), service.DeviceInput{
		DeviceName:  req.DeviceName,
		Version:     req.Version,
		Description: req.Description,
	}, nil)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(device)
}

// CreateDeviceWithImage handles POST /api/v1/devices/with-image. Multipart
// body with device_name, version, optional description and an image file.
func (s *Server) CreateDeviceWithImage(c *fiber.Ctx) error {
	in := service.DeviceInput{}
	if v := strings.TrimSpace(c.FormValue("device_name")); v != "" {
		in.DeviceName = &v
	}
	if v := strings.TrimSpace(c.FormValue("version")); v != "" {
		in.Version = &v
	}
	if v := strings.TrimSpace(c.FormValue("description")); v != "" {
		in.Description = &v
	}

	image, err := multipartImage(c, "image")
	if err != nil {
		return respondServiceError(c, err)
	}

	device, err := s.deviceService.CreateDevice(c.UserContext(), in, image)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(device)
}

// RegenerateDeviceQR handles POST /api/v1/devices/:id/regenerate-qr
func (s *Server) RegenerateDeviceQR(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	device, err := s.deviceService.RegenerateQRCode(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(device)
}

// ActivateDevice handles POST /api/v1/devices/:id/activate
func (s *Server) ActivateDevice(c *fiber.Ctx) error {
	return s.setDeviceStatus(c, true)
}

// DeactivateDevice handles DELETE /api/v1/devices/:id. Deactivation is the
// default delete; the row survives for the hard-delete endpoint.
func (s *Server) DeactivateDevice(c *fiber.Ctx) error {
	return s.setDeviceStatus(c, false)
}

func (s *Server) setDeviceStatus(c *fiber.Ctx, active bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	device, err := s.deviceService.SetDeviceActive(c.UserContext(), id, active)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(device)
}

// UpdateDevice handles PUT /api/v1/devices/:id. The QR code is regenerated
// when the device name or version changes.
func (s *Server) UpdateDevice(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		DeviceName  *string `json:"device_name"`
		Version     *string `json:"version"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	device, err := s.deviceService.UpdateDevice(c.UserContext(), id, service.DeviceInput{
		DeviceName:  req.DeviceName,
		Version:     req.Version,
		Description: req.Description,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(device)
}

// UpdateDeviceImage handles PUT /api/v1/devices/:id/image
func (s *Server) UpdateDeviceImage(c *fiber.Ctx) error {
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

	device, err := s.deviceService.UpdateDeviceImage(c.UserContext(), id, image)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(device)
}

// RemoveDeviceImage handles DELETE /api/v1/devices/:id/image
func (s *Server) RemoveDeviceImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	device, err := s.deviceService.RemoveDeviceImage(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(device)
}

// HardDeleteDevice handles DELETE /api/v1/devices/:id/hard-delete
func (s *Server) HardDeleteDevice(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.deviceService.DeleteDevice(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

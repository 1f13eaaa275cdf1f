package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"time"

	"elfatih/internal/models"
	"elfatih/internal/observability"
	"elfatih/internal/repository"
	"elfatih/internal/validation"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

const qrImageSize = 410

type DeviceService struct {
	deviceRepo repository.DeviceRepository
	images     *ImageService
}

func NewDeviceService(deviceRepo repository.DeviceRepository, images *ImageService) *DeviceService {
	return &DeviceService{deviceRepo: deviceRepo, images: images}
}

// DeviceInput carries create/update fields. On update nil means unchanged.
type DeviceInput struct {
	DeviceName  *string
	Version     *string
	Description *string
}

// qrPayload is the JSON document encoded into a device QR code.
type qrPayload struct {
	DeviceID    uint   `json:"device_id"`
	DeviceName  string `json:"device_name"`
	Version     string `json:"version"`
	Type        string `json:"type"`
	GeneratedAt string `json:"generated_at"`
}

// generateQRCode renders the device identity payload as a PNG QR image.
func generateQRCode(device *models.Device) ([]byte, error) {
	payload := qrPayload{
		DeviceID:    device.ID,
		DeviceName:  device.DeviceName,
		Version:     device.Version,
		Type:        "device",
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	code, err := qr.Encode(string(data), qr.L, qr.Auto)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	code, err = barcode.Scale(code, qrImageSize, qrImageSize)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, code); err != nil {
		return nil, models.NewInternalError(err)
	}
	observability.QRCodesGenerated.Inc()
	return buf.Bytes(), nil
}

func validateDeviceInput(in DeviceInput, device *models.Device) error {
	if in.DeviceName != nil {
		name, err := validation.DeviceName(*in.DeviceName)
		if err != nil {
			return models.NewValidationError(err.Error())
		}
		device.DeviceName = name
	}
	if in.Version != nil {
		version, err := validation.DeviceVersion(*in.Version)
		if err != nil {
			return models.NewValidationError(err.Error())
		}
		device.Version = version
	}
	if in.Description != nil {
		desc, err := validation.DeviceDescription(*in.Description)
		if err != nil {
			return models.NewValidationError(err.Error())
		}
		if desc == "" {
			device.Description = nil
		} else {
			device.Description = &desc
		}
	}
	return nil
}

// CreateDevice registers a device, processes the optional photo and generates
// its QR code. The QR is generated after the insert so it can embed the id.
func (s *DeviceService) CreateDevice(ctx context.Context, in DeviceInput, image *ImageUpload) (*models.Device, error) {
	if in.DeviceName == nil || in.Version == nil {
		return nil, models.NewValidationError("Device name and version are required")
	}

	device := &models.Device{IsActive: true}
	if err := validateDeviceInput(in, device); err != nil {
		return nil, err
	}

	if image != nil {
		processed, err := s.images.Process(image.Content, image.ContentType, "device")
		if err != nil {
			return nil, err
		}
		device.Image = processed.Data
	}

	if err := s.deviceRepo.Create(ctx, device); err != nil {
		return nil, err
	}

	qrBytes, err := generateQRCode(device)
	if err != nil {
		return nil, err
	}
	if err := s.deviceRepo.SetQRCode(ctx, device.ID, qrBytes); err != nil {
		return nil, err
	}

	device.HasImage = len(device.Image) > 0
	device.HasQRCode = true
	return device, nil
}

func (s *DeviceService) GetDevice(ctx context.Context, id uint) (*models.Device, error) {
	return s.deviceRepo.GetByID(ctx, id)
}

func (s *DeviceService) GetDeviceByName(ctx context.Context, name string) (*models.Device, error) {
	return s.deviceRepo.GetByName(ctx, name)
}

// ListDevices returns a page of devices with pagination metadata.
func (s *DeviceService) ListDevices(ctx context.Context, page, perPage int, activeOnly bool) (*models.DevicePage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	return s.deviceRepo.List(ctx, page, perPage, activeOnly)
}

func (s *DeviceService) GetDeviceImage(ctx context.Context, id uint) ([]byte, error) {
	return s.deviceRepo.GetImage(ctx, id)
}

// GetQRCode returns the stored QR image, generating and persisting it first
// when missing.
func (s *DeviceService) GetQRCode(ctx context.Context, id uint) ([]byte, error) {
	qrBytes, err := s.deviceRepo.GetQRCode(ctx, id)
	if err == nil {
		return qrBytes, nil
	}

	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
		return nil, err
	}

	device, err := s.deviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	qrBytes, err = generateQRCode(device)
	if err != nil {
		return nil, err
	}
	if err := s.deviceRepo.SetQRCode(ctx, id, qrBytes); err != nil {
		return nil, err
	}
	return qrBytes, nil
}

// RegenerateQRCode rebuilds and stores a fresh QR code for the device.
func (s *DeviceService) RegenerateQRCode(ctx context.Context, id uint) (*models.Device, error) {
	device, err := s.deviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	qrBytes, err := generateQRCode(device)
	if err != nil {
		return nil, err
	}
	if err := s.deviceRepo.SetQRCode(ctx, id, qrBytes); err != nil {
		return nil, err
	}
	device.HasQRCode = true
	return device, nil
}

// UpdateDevice applies field changes and regenerates the QR code when the
// identity fields it embeds have changed.
func (s *DeviceService) UpdateDevice(ctx context.Context, id uint, in DeviceInput) (*models.Device, error) {
	device, err := s.deviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	identityChanged := false
	oldName, oldVersion := device.DeviceName, device.Version
	if err := validateDeviceInput(in, device); err != nil {
		return nil, err
	}
	if device.DeviceName != oldName || device.Version != oldVersion {
		identityChanged = true
	}

	if err := s.deviceRepo.Update(ctx, device); err != nil {
		return nil, err
	}

	if identityChanged {
		qrBytes, err := generateQRCode(device)
		if err != nil {
			return nil, err
		}
		if err := s.deviceRepo.SetQRCode(ctx, id, qrBytes); err != nil {
			return nil, err
		}
		device.HasQRCode = true
	}
	return device, nil
}

// UpdateDeviceImage replaces the device photo.
func (s *DeviceService) UpdateDeviceImage(ctx context.Context, id uint, image *ImageUpload) (*models.Device, error) {
	processed, err := s.images.Process(image.Content, image.ContentType, "device")
	if err != nil {
		return nil, err
	}
	if err := s.deviceRepo.SetImage(ctx, id, processed.Data); err != nil {
		return nil, err
	}
	return s.deviceRepo.GetByID(ctx, id)
}

// RemoveDeviceImage clears the device photo.
func (s *DeviceService) RemoveDeviceImage(ctx context.Context, id uint) (*models.Device, error) {
	if err := s.deviceRepo.SetImage(ctx, id, nil); err != nil {
		return nil, err
	}
	return s.deviceRepo.GetByID(ctx, id)
}

// SetDeviceActive toggles the active flag. Deactivation is the soft form of
// deletion for devices.
func (s *DeviceService) SetDeviceActive(ctx context.Context, id uint, active bool) (*models.Device, error) {
	if err := s.deviceRepo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.deviceRepo.GetByID(ctx, id)
}

// DeleteDevice permanently removes a device.
func (s *DeviceService) DeleteDevice(ctx context.Context, id uint) error {
	return s.deviceRepo.Delete(ctx, id)
}

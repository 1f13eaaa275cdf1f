package repository

import (
	"context"
	"errors"

	"elfatih/internal/cache"
	"elfatih/internal/models"

	"gorm.io/gorm"
)

// DeviceRepository defines persistence operations for devices.
type DeviceRepository interface {
	Create(ctx context.Context, device *models.Device) error
	GetByID(ctx context.Context, id uint) (*models.Device, error)
	GetByName(ctx context.Context, name string) (*models.Device, error)
	List(ctx context.Context, page, perPage int, activeOnly bool) (*models.DevicePage, error)
	GetImage(ctx context.Context, id uint) ([]byte, error)
	GetQRCode(ctx context.Context, id uint) ([]byte, error)
	SetQRCode(ctx context.Context, id uint, qr []byte) error
	SetImage(ctx context.Context, id uint, image []byte) error
	Update(ctx context.Context, device *models.Device) error
	SetActive(ctx context.Context, id uint, active bool) error
	Delete(ctx context.Context, id uint) error
}

type deviceRepository struct {
	db *gorm.DB
}

// NewDeviceRepository returns a new DeviceRepository implementation.
func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

var deviceColumns = []string{
	"id", "device_name", "version", "description", "is_active", "created_at", "updated_at",
}

// deviceFlags carries blob presence bits without loading the blobs.
type deviceFlags struct {
	ID        uint
	HasImage  bool
	HasQRCode bool
}

func (r *deviceRepository) loadFlags(ctx context.Context, devices []models.Device) error {
	if len(devices) == 0 {
		return nil
	}
	ids := make([]uint, len(devices))
	for i := range devices {
		ids[i] = devices[i].ID
	}

	var flags []deviceFlags
	err := readDB(r.db).WithContext(ctx).Model(&models.Device{}).
		Select("id, image IS NOT NULL AS has_image, qr_code IS NOT NULL AS has_qr_code").
		Where("id IN ?", ids).
		Scan(&flags).Error
	if err != nil {
		return err
	}

	byID := make(map[uint]deviceFlags, len(flags))
	for _, f := range flags {
		byID[f.ID] = f
	}
	for i := range devices {
		f := byID[devices[i].ID]
		devices[i].HasImage = f.HasImage
		devices[i].HasQRCode = f.HasQRCode
	}
	return nil
}

func (r *deviceRepository) Create(ctx context.Context, device *models.Device) error {
	if err := r.db.WithContext(ctx).Create(device).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *deviceRepository) GetByID(ctx context.Context, id uint) (*models.Device, error) {
	var device models.Device
	key := cache.DeviceKey(id)

	err := cache.Aside(ctx, key, &device, cache.DeviceTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).Select(deviceColumns).First(&device, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Device", id)
			}
			return models.NewInternalError(err)
		}
		devices := []models.Device{device}
		if err := r.loadFlags(ctx, devices); err != nil {
			return models.NewInternalError(err)
		}
		device = devices[0]
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *deviceRepository) GetByName(ctx context.Context, name string) (*models.Device, error) {
	var device models.Device
	err := readDB(r.db).WithContext(ctx).
		Select(deviceColumns).
		Where("device_name = ?", name).
		First(&device).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Device", name)
		}
		return nil, models.NewInternalError(err)
	}
	devices := []models.Device{device}
	if err := r.loadFlags(ctx, devices); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &devices[0], nil
}

func (r *deviceRepository) List(ctx context.Context, page, perPage int, activeOnly bool) (*models.DevicePage, error) {
	q := readDB(r.db).WithContext(ctx).Model(&models.Device{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var devices []models.Device
	err := q.Select(deviceColumns).
		Order("device_name").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&devices).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.loadFlags(ctx, devices); err != nil {
		return nil, models.NewInternalError(err)
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &models.DevicePage{
		Devices:    devices,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

func (r *deviceRepository) getBlob(ctx context.Context, id uint, column, resource string) ([]byte, error) {
	var device models.Device
	err := readDB(r.db).WithContext(ctx).Select("id", column).First(&device, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Device", id)
		}
		return nil, models.NewInternalError(err)
	}
	var blob []byte
	if column == "qr_code" {
		blob = device.QRCode
	} else {
		blob = device.Image
	}
	if len(blob) == 0 {
		return nil, models.NewNotFoundError(resource, id)
	}
	return blob, nil
}

func (r *deviceRepository) GetImage(ctx context.Context, id uint) ([]byte, error) {
	return r.getBlob(ctx, id, "image", "Device image")
}

func (r *deviceRepository) GetQRCode(ctx context.Context, id uint) ([]byte, error) {
	return r.getBlob(ctx, id, "qr_code", "Device QR code")
}

func (r *deviceRepository) SetQRCode(ctx context.Context, id uint, qr []byte) error {
	return r.setColumn(ctx, id, "qr_code", qr)
}

func (r *deviceRepository) SetImage(ctx context.Context, id uint, image []byte) error {
	return r.setColumn(ctx, id, "image", image)
}

func (r *deviceRepository) setColumn(ctx context.Context, id uint, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Device{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Device", id)
	}
	cache.InvalidateDevice(ctx, id)
	return nil
}

func (r *deviceRepository) Update(ctx context.Context, device *models.Device) error {
	err := r.db.WithContext(ctx).Model(device).
		Select("device_name", "version", "description").
		Updates(device).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateDevice(ctx, device.ID)
	return nil
}

func (r *deviceRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.setColumn(ctx, id, "is_active", active)
}

func (r *deviceRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Device{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Device", id)
	}
	cache.InvalidateDevice(ctx, id)
	return nil
}

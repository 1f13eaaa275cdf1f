package models

import (
	"time"
)

// Device is a registered hardware unit with an optional photo and a
// generated QR code identifying it.
type Device struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	DeviceName  string  `gorm:"size:200;not null;index" json:"device_name"`
	Version     string  `gorm:"size:50;not null" json:"version"`
	Description *string `gorm:"size:1000" json:"description"`
	Image       []byte  `gorm:"type:bytea" json:"-"`
	QRCode      []byte  `gorm:"column:qr_code;type:bytea" json:"-"`
	IsActive    bool    `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// HasImage and HasQRCode are not persisted; computed at serialization time
	HasImage  bool `gorm:"-" json:"has_image"`
	HasQRCode bool `gorm:"-" json:"has_qr_code"`
}

// DevicePage is a paginated device listing.
type DevicePage struct {
	Devices    []Device `json:"devices"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
	TotalPages int      `json:"total_pages"`
}

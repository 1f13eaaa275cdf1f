package models

import (
	"time"
)

// SectionType classifies the content a post section carries.
type SectionType string

const (
	SectionTypeText  SectionType = "text"
	SectionTypeImage SectionType = "image"
	SectionTypeVideo SectionType = "video"
)

// Valid reports whether the value is one of the known section types.
func (t SectionType) Valid() bool {
	return t == SectionTypeText || t == SectionTypeImage || t == SectionTypeVideo
}

// FeedbackType is the sign of a user's vote on a post.
type FeedbackType string

const (
	FeedbackPositive FeedbackType = "positive"
	FeedbackNegative FeedbackType = "negative"
)

// Valid reports whether the value is one of the known feedback signs.
func (t FeedbackType) Valid() bool {
	return t == FeedbackPositive || t == FeedbackNegative
}

// Post is a content item with an optional main image and ordered sections.
type Post struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	Header           string `gorm:"size:200;not null" json:"header"`
	Description      string `gorm:"size:5000;not null" json:"description"`
	Image            []byte `gorm:"type:bytea" json:"-"`
	ImageFilename    string `gorm:"size:255" json:"image_filename,omitempty"`
	ImageContentType string `gorm:"size:100" json:"-"`
	PositiveCount    int    `gorm:"not null;default:0" json:"positive_feedback_count"`
	NegativeCount    int    `gorm:"not null;default:0" json:"negative_feedback_count"`
	IsActive         bool   `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Sections []PostSection `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`

	// HasImage is not persisted; computed at serialization time
	HasImage bool `gorm:"-" json:"has_image"`
	// ImageData optionally carries the main image as a base64 data URL
	ImageData string `gorm:"-" json:"image_data,omitempty"`
	// UserFeedback is the requesting user's vote on this post, when known
	UserFeedback *FeedbackType `gorm:"-" json:"user_feedback,omitempty"`
}

// PostSection is a typed, ordered fragment of a post. OrderIndex values form
// a dense 0..n-1 sequence within a post.
type PostSection struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	PostID      uint        `gorm:"not null;index:idx_post_section_order" json:"post_id"`
	SectionType SectionType `gorm:"size:10;not null" json:"section_type"`
	OrderIndex  int         `gorm:"not null;index:idx_post_section_order" json:"order_index"`
	TextContent string      `gorm:"type:text" json:"text_content,omitempty"`
	Image       []byte      `gorm:"type:bytea" json:"-"`
	ImageFilename string    `gorm:"size:255" json:"image_filename,omitempty"`
	VideoURL    string      `gorm:"size:500" json:"video_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// HasImage is not persisted; computed at serialization time
	HasImage bool `gorm:"-" json:"has_image"`
}

// PostFeedback records a single user's vote on a post. The composite unique
// index guarantees at most one row per (user, post).
type PostFeedback struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	PostID       uint         `gorm:"not null;uniqueIndex:idx_feedback_user_post" json:"post_id"`
	UserID       uint         `gorm:"not null;uniqueIndex:idx_feedback_user_post" json:"user_id"`
	FeedbackType FeedbackType `gorm:"size:10;not null" json:"feedback_type"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"elfatih/internal/cache"
	"elfatih/internal/models"

	"gorm.io/gorm"
)

// PostImage is a stored image blob with its metadata.
type PostImage struct {
	Data        []byte
	Filename    string
	ContentType string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	CreateWithSections(ctx context.Context, post *models.Post, sections []models.PostSection) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetWithSections(ctx context.Context, id uint) (*models.Post, error)
	GetImage(ctx context.Context, id uint) (*PostImage, error)
	List(ctx context.Context, limit, offset int, activeOnly bool) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	SetImage(ctx context.Context, id uint, img *PostImage) error
	ClearImage(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error

	GetFeedback(ctx context.Context, userID, postID uint) (*models.PostFeedback, error)
	GetFeedbackForPosts(ctx context.Context, userID uint, postIDs []uint) (map[uint]models.FeedbackType, error)
	SetFeedback(ctx context.Context, userID, postID uint, feedbackType models.FeedbackType) error
	RemoveFeedback(ctx context.Context, userID, postID uint) error

	AddSection(ctx context.Context, section *models.PostSection) error
	GetSection(ctx context.Context, sectionID uint) (*models.PostSection, error)
	GetSectionImage(ctx context.Context, sectionID uint) (*PostImage, error)
	UpdateSection(ctx context.Context, section *models.PostSection) error
	ReorderSection(ctx context.Context, sectionID uint, newIndex int) error
	DeleteSection(ctx context.Context, sectionID uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// postColumns lists the post columns safe for listings. The image blob is
// only loaded by GetImage.
var postColumns = []string{
	"id", "header", "description", "image_filename", "image_content_type",
	"positive_count", "negative_count", "is_active", "created_at", "updated_at",
}

// sectionColumns mirrors postColumns for sections.
var sectionColumns = []string{
	"id", "post_id", "section_type", "order_index", "text_content",
	"image_filename", "video_url", "created_at", "updated_at",
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) CreateWithSections(ctx context.Context, post *models.Post, sections []models.PostSection) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for i := range sections {
			sections[i].PostID = post.ID
			sections[i].OrderIndex = i
			if err := tx.Create(&sections[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	post.Sections = sections
	return nil
}

// cachedPost is the cache representation of a post. ImageContentType is
// hidden from the API encoding but drives the has_image annotation, so the
// cache carries it in a shadow field.
type cachedPost struct {
	models.Post
	ImageContentType string `json:"image_content_type"`
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var entry cachedPost
	key := cache.PostKey(id)

	err := cache.Aside(ctx, key, &entry, cache.PostTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).Select(postColumns).First(&entry.Post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		entry.ImageContentType = entry.Post.ImageContentType
		return nil
	})

	if err != nil {
		return nil, err
	}
	entry.Post.ImageContentType = entry.ImageContentType
	return &entry.Post, nil
}

func (r *postRepository) GetWithSections(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := readDB(r.db).WithContext(ctx).
		Select(postColumns).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Select(sectionColumns).Order("order_index")
		}).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetImage(ctx context.Context, id uint) (*PostImage, error) {
	var post models.Post
	err := readDB(r.db).WithContext(ctx).
		Select("id", "image", "image_filename", "image_content_type").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	if len(post.Image) == 0 {
		return nil, models.NewNotFoundError("Post image", id)
	}
	return &PostImage{
		Data:        post.Image,
		Filename:    post.ImageFilename,
		ContentType: post.ImageContentType,
	}, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, activeOnly bool) ([]*models.Post, error) {
	var posts []*models.Post
	q := readDB(r.db).WithContext(ctx).
		Select(postColumns).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Model(post).
		Select("header", "description", "is_active").
		Updates(post).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) SetImage(ctx context.Context, id uint, img *PostImage) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(map[string]interface{}{
		"image":              img.Data,
		"image_filename":     img.Filename,
		"image_content_type": img.ContentType,
	})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) ClearImage(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(map[string]interface{}{
		"image":              nil,
		"image_filename":     "",
		"image_content_type": "",
	})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostSection{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostFeedback{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) GetFeedback(ctx context.Context, userID, postID uint) (*models.PostFeedback, error) {
	var fb models.PostFeedback
	err := readDB(r.db).WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&fb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &fb, nil
}

func (r *postRepository) GetFeedbackForPosts(ctx context.Context, userID uint, postIDs []uint) (map[uint]models.FeedbackType, error) {
	if len(postIDs) == 0 {
		return map[uint]models.FeedbackType{}, nil
	}
	var rows []models.PostFeedback
	err := readDB(r.db).WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make(map[uint]models.FeedbackType, len(rows))
	for _, row := range rows {
		out[row.PostID] = row.FeedbackType
	}
	return out, nil
}

// counterColumn maps a feedback sign to the post counter it drives.
func counterColumn(t models.FeedbackType) string {
	if t == models.FeedbackPositive {
		return "positive_count"
	}
	return "negative_count"
}

// SetFeedback inserts or flips the caller's vote and adjusts the post
// counters in the same transaction. Counters never go below zero.
func (r *postRepository) SetFeedback(ctx context.Context, userID, postID uint, feedbackType models.FeedbackType) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PostFeedback
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case err == nil:
			if existing.FeedbackType == feedbackType {
				// Same sign again is a no-op.
				return nil
			}
			old := existing.FeedbackType
			existing.FeedbackType = feedbackType
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			oldCol := counterColumn(old)
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				Update(oldCol, gorm.Expr("GREATEST("+oldCol+" - 1, 0)")).Error; err != nil {
				return err
			}
			newCol := counterColumn(feedbackType)
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				Update(newCol, gorm.Expr(newCol+" + 1")).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			fb := models.PostFeedback{UserID: userID, PostID: postID, FeedbackType: feedbackType}
			if err := tx.Create(&fb).Error; err != nil {
				if isUniqueConstraintError(err) {
					return models.NewConflictError("Feedback already recorded")
				}
				return err
			}
			col := counterColumn(feedbackType)
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				Update(col, gorm.Expr(col+" + 1")).Error
		default:
			return err
		}
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

// RemoveFeedback deletes the caller's vote and decrements the matching counter.
func (r *postRepository) RemoveFeedback(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PostFeedback
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Feedback", postID)
			}
			return err
		}
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
		col := counterColumn(existing.FeedbackType)
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			Update(col, gorm.Expr("GREATEST("+col+" - 1, 0)")).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

// AddSection inserts a section at section.OrderIndex, shifting later sections
// up so indexes stay dense. An out-of-range index appends.
func (r *postRepository) AddSection(ctx context.Context, section *models.PostSection) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PostSection{}).
			Where("post_id = ?", section.PostID).
			Count(&count).Error; err != nil {
			return err
		}
		if section.OrderIndex < 0 || section.OrderIndex > int(count) {
			section.OrderIndex = int(count)
		}
		if err := tx.Model(&models.PostSection{}).
			Where("post_id = ? AND order_index >= ?", section.PostID, section.OrderIndex).
			Update("order_index", gorm.Expr("order_index + 1")).Error; err != nil {
			return err
		}
		return tx.Create(section).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, section.PostID)
	return nil
}

func (r *postRepository) GetSection(ctx context.Context, sectionID uint) (*models.PostSection, error) {
	var section models.PostSection
	err := readDB(r.db).WithContext(ctx).
		Select(sectionColumns).
		First(&section, sectionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Section", sectionID)
		}
		return nil, models.NewInternalError(err)
	}
	return &section, nil
}

func (r *postRepository) GetSectionImage(ctx context.Context, sectionID uint) (*PostImage, error) {
	var section models.PostSection
	err := readDB(r.db).WithContext(ctx).
		Select("id", "post_id", "image", "image_filename").
		First(&section, sectionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Section", sectionID)
		}
		return nil, models.NewInternalError(err)
	}
	if len(section.Image) == 0 {
		return nil, models.NewNotFoundError("Section image", sectionID)
	}
	return &PostImage{
		Data:     section.Image,
		Filename: section.ImageFilename,
	}, nil
}

func (r *postRepository) UpdateSection(ctx context.Context, section *models.PostSection) error {
	err := r.db.WithContext(ctx).Model(section).
		Select("text_content", "video_url", "image", "image_filename").
		Updates(section).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, section.PostID)
	return nil
}

// ReorderSection moves a section to newIndex, shifting the displaced range so
// order stays dense.
func (r *postRepository) ReorderSection(ctx context.Context, sectionID uint, newIndex int) error {
	var postID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var section models.PostSection
		err := tx.Select("id", "post_id", "order_index").
			First(&section, sectionID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Section", sectionID)
			}
			return err
		}
		postID = section.PostID

		var count int64
		if err := tx.Model(&models.PostSection{}).
			Where("post_id = ?", postID).
			Count(&count).Error; err != nil {
			return err
		}
		if newIndex < 0 {
			newIndex = 0
		}
		if newIndex >= int(count) {
			newIndex = int(count) - 1
		}
		if newIndex == section.OrderIndex {
			return nil
		}

		if newIndex > section.OrderIndex {
			// Moving down: the range (old, new] shifts up by one.
			err = tx.Model(&models.PostSection{}).
				Where("post_id = ? AND order_index > ? AND order_index <= ?", postID, section.OrderIndex, newIndex).
				Update("order_index", gorm.Expr("order_index - 1")).Error
		} else {
			// Moving up: the range [new, old) shifts down by one.
			err = tx.Model(&models.PostSection{}).
				Where("post_id = ? AND order_index >= ? AND order_index < ?", postID, newIndex, section.OrderIndex).
				Update("order_index", gorm.Expr("order_index + 1")).Error
		}
		if err != nil {
			return err
		}

		return tx.Model(&models.PostSection{}).
			Where("id = ?", sectionID).
			Update("order_index", newIndex).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

// DeleteSection removes a section and closes the order gap it leaves.
func (r *postRepository) DeleteSection(ctx context.Context, sectionID uint) error {
	var postID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var section models.PostSection
		err := tx.Select("id", "post_id", "order_index").
			First(&section, sectionID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Section", sectionID)
			}
			return err
		}
		postID = section.PostID
		if err := tx.Delete(&models.PostSection{}, sectionID).Error; err != nil {
			return err
		}
		return tx.Model(&models.PostSection{}).
			Where("post_id = ? AND order_index > ?", postID, section.OrderIndex).
			Update("order_index", gorm.Expr("order_index - 1")).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

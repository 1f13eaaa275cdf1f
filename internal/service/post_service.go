package service

import (
	"context"
	"encoding/json"
	"fmt"

	"elfatih/internal/models"
	"elfatih/internal/observability"
	"elfatih/internal/repository"
	"elfatih/internal/validation"
)

type PostService struct {
	postRepo repository.PostRepository
	images   *ImageService
}

func NewPostService(postRepo repository.PostRepository, images *ImageService) *PostService {
	return &PostService{postRepo: postRepo, images: images}
}

// ImageUpload is a raw multipart file as received from the client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// SectionInput describes one section in a complete-post request. For image
// sections Upload carries the matched file; Content carries text, a video
// URL, or the image filename reference.
type SectionInput struct {
	Type       models.SectionType `json:"type"`
	OrderIndex int                `json:"order_index"`
	Content    string             `json:"content"`
	Upload     *ImageUpload       `json:"-"`
}

// ParseSections decodes the sections JSON of a complete-post request.
func ParseSections(raw string) ([]SectionInput, error) {
	var sections []SectionInput
	if err := json.Unmarshal([]byte(raw), &sections); err != nil {
		return nil, models.NewValidationError(fmt.Sprintf("Invalid sections JSON: %v", err))
	}
	for _, s := range sections {
		if !s.Type.Valid() {
			return nil, models.NewValidationError(fmt.Sprintf("Invalid section type: %s", s.Type))
		}
	}
	return sections, nil
}

// annotate fills the computed response fields on a post.
func annotatePost(post *models.Post) {
	post.HasImage = post.ImageContentType != ""
	for i := range post.Sections {
		post.Sections[i].HasImage = post.Sections[i].ImageFilename != ""
	}
}

// ListPosts returns a page of posts. When userID is non-zero each post is
// annotated with that user's feedback. includeImages inlines the main image
// as a base64 data URL.
func (s *PostService) ListPosts(ctx context.Context, limit, offset int, activeOnly, includeImages bool, userID uint) ([]*models.Post, error) {
	posts, err := s.postRepo.List(ctx, limit, offset, activeOnly)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		annotatePost(p)
	}

	if userID != 0 && len(posts) > 0 {
		ids := make([]uint, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		feedback, err := s.postRepo.GetFeedbackForPosts(ctx, userID, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			if t, ok := feedback[p.ID]; ok {
				ft := t
				p.UserFeedback = &ft
			}
		}
	}

	if includeImages {
		for _, p := range posts {
			if !p.HasImage {
				continue
			}
			img, err := s.postRepo.GetImage(ctx, p.ID)
			if err != nil {
				continue
			}
			p.ImageData = DataURL(img.Data)
		}
	}

	return posts, nil
}

// GetPost returns a post with its sections in order.
func (s *PostService) GetPost(ctx context.Context, id uint, includeImage bool) (*models.Post, error) {
	post, err := s.postRepo.GetWithSections(ctx, id)
	if err != nil {
		return nil, err
	}
	annotatePost(post)
	if includeImage && post.HasImage {
		if img, err := s.postRepo.GetImage(ctx, id); err == nil {
			post.ImageData = DataURL(img.Data)
		}
	}
	return post, nil
}

// GetPostImage returns the raw main image of a post.
func (s *PostService) GetPostImage(ctx context.Context, id uint) (*repository.PostImage, error) {
	return s.postRepo.GetImage(ctx, id)
}

// CreatePost creates a post, processing the optional main image through the
// bounded resize pipeline.
func (s *PostService) CreatePost(ctx context.Context, header, description string, image *ImageUpload) (*models.Post, error) {
	post, err := s.buildPost(header, description, image)
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	annotatePost(post)
	return post, nil
}

func (s *PostService) buildPost(header, description string, image *ImageUpload) (*models.Post, error) {
	header, err := validation.PostHeader(header)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	description, err = validation.PostDescription(description)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		Header:      header,
		Description: description,
		IsActive:    true,
	}

	if image != nil {
		processed, err := s.images.Process(image.Content, image.ContentType, "post")
		if err != nil {
			return nil, err
		}
		post.Image = processed.Data
		post.ImageFilename = image.Filename
		post.ImageContentType = processed.ContentType
	}
	return post, nil
}

// CreateCompletePost creates a post and its ordered sections in one shot.
// Sections are stored densely in their listed order.
func (s *PostService) CreateCompletePost(ctx context.Context, header, description string, mainImage *ImageUpload, sections []SectionInput) (*models.Post, error) {
	post, err := s.buildPost(header, description, mainImage)
	if err != nil {
		return nil, err
	}

	rows := make([]models.PostSection, 0, len(sections))
	for _, in := range sections {
		row, err := s.buildSection(in)
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}

	if err := s.postRepo.CreateWithSections(ctx, post, rows); err != nil {
		return nil, err
	}
	annotatePost(post)
	return post, nil
}

func (s *PostService) buildSection(in SectionInput) (*models.PostSection, error) {
	section := &models.PostSection{
		SectionType: in.Type,
		OrderIndex:  in.OrderIndex,
	}
	switch in.Type {
	case models.SectionTypeText:
		if in.Content == "" {
			return nil, models.NewValidationError("Text section requires content")
		}
		section.TextContent = in.Content
	case models.SectionTypeVideo:
		if in.Content == "" {
			return nil, models.NewValidationError("Video section requires a URL")
		}
		section.VideoURL = in.Content
	case models.SectionTypeImage:
		if in.Upload == nil {
			return nil, models.NewValidationError(fmt.Sprintf("Image file %q not found in uploaded images", in.Content))
		}
		processed, err := s.images.Process(in.Upload.Content, in.Upload.ContentType, "section")
		if err != nil {
			return nil, err
		}
		section.Image = processed.Data
		section.ImageFilename = in.Upload.Filename
	default:
		return nil, models.NewValidationError(fmt.Sprintf("Invalid section type: %s", in.Type))
	}
	return section, nil
}

// UpdatePost applies optional text field and active flag changes.
func (s *PostService) UpdatePost(ctx context.Context, id uint, header, description *string, isActive *bool) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if header != nil {
		h, err := validation.PostHeader(*header)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Header = h
	}
	if description != nil {
		d, err := validation.PostDescription(*description)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Description = d
	}
	if isActive != nil {
		post.IsActive = *isActive
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	annotatePost(post)
	return post, nil
}

// UpdatePostImage replaces the main image of a post.
func (s *PostService) UpdatePostImage(ctx context.Context, id uint, image *ImageUpload) error {
	processed, err := s.images.Process(image.Content, image.ContentType, "post")
	if err != nil {
		return err
	}
	return s.postRepo.SetImage(ctx, id, &repository.PostImage{
		Data:        processed.Data,
		Filename:    image.Filename,
		ContentType: processed.ContentType,
	})
}

// RemovePostImage clears the main image of a post.
func (s *PostService) RemovePostImage(ctx context.Context, id uint) error {
	return s.postRepo.ClearImage(ctx, id)
}

// DeletePost removes a post with its sections and feedback.
func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	return s.postRepo.Delete(ctx, id)
}

// AddTextSection appends or inserts a text section.
func (s *PostService) AddTextSection(ctx context.Context, postID uint, orderIndex int, text string) (*models.PostSection, error) {
	return s.addSection(ctx, postID, SectionInput{
		Type:       models.SectionTypeText,
		OrderIndex: orderIndex,
		Content:    text,
	})
}

// AddVideoSection appends or inserts a video section.
func (s *PostService) AddVideoSection(ctx context.Context, postID uint, orderIndex int, url string) (*models.PostSection, error) {
	return s.addSection(ctx, postID, SectionInput{
		Type:       models.SectionTypeVideo,
		OrderIndex: orderIndex,
		Content:    url,
	})
}

// AddImageSection appends or inserts an image section, processing the upload.
func (s *PostService) AddImageSection(ctx context.Context, postID uint, orderIndex int, image *ImageUpload) (*models.PostSection, error) {
	return s.addSection(ctx, postID, SectionInput{
		Type:       models.SectionTypeImage,
		OrderIndex: orderIndex,
		Upload:     image,
	})
}

func (s *PostService) addSection(ctx context.Context, postID uint, in SectionInput) (*models.PostSection, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	section, err := s.buildSection(in)
	if err != nil {
		return nil, err
	}
	section.PostID = postID
	if err := s.postRepo.AddSection(ctx, section); err != nil {
		return nil, err
	}
	section.HasImage = section.ImageFilename != ""
	return section, nil
}

// GetSectionImage returns the raw image of an image section.
func (s *PostService) GetSectionImage(ctx context.Context, sectionID uint) (*repository.PostImage, error) {
	img, err := s.postRepo.GetSectionImage(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	img.ContentType = DetectContentType(img.Data)
	return img, nil
}

// ReorderSection moves a section to a new position within its post.
func (s *PostService) ReorderSection(ctx context.Context, sectionID uint, newIndex int) (*models.PostSection, error) {
	if err := s.postRepo.ReorderSection(ctx, sectionID, newIndex); err != nil {
		return nil, err
	}
	return s.postRepo.GetSection(ctx, sectionID)
}

// DeleteSection removes a section, closing the order gap.
func (s *PostService) DeleteSection(ctx context.Context, sectionID uint) error {
	return s.postRepo.DeleteSection(ctx, sectionID)
}

// SetFeedback records or flips the user's vote on an active post.
func (s *PostService) SetFeedback(ctx context.Context, userID, postID uint, feedbackType models.FeedbackType) (*models.Post, error) {
	if !feedbackType.Valid() {
		return nil, models.NewValidationError("Feedback type must be 'positive' or 'negative'")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsActive {
		return nil, models.NewValidationError("Cannot give feedback on an inactive post")
	}

	if err := s.postRepo.SetFeedback(ctx, userID, postID, feedbackType); err != nil {
		return nil, err
	}
	observability.FeedbackEvents.WithLabelValues("set", string(feedbackType)).Inc()

	updated, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	annotatePost(updated)
	return updated, nil
}

// RemoveFeedback deletes the user's vote on a post.
func (s *PostService) RemoveFeedback(ctx context.Context, userID, postID uint) error {
	fb, err := s.postRepo.GetFeedback(ctx, userID, postID)
	if err != nil {
		return err
	}
	if fb == nil {
		return models.NewNotFoundError("Feedback", postID)
	}
	if err := s.postRepo.RemoveFeedback(ctx, userID, postID); err != nil {
		return err
	}
	observability.FeedbackEvents.WithLabelValues("remove", string(fb.FeedbackType)).Inc()
	return nil
}

// CheckFeedback reports whether the user has voted on a post and with which sign.
func (s *PostService) CheckFeedback(ctx context.Context, userID, postID uint) (*models.PostFeedback, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetFeedback(ctx, userID, postID)
}

package service

import (
	"context"
	"errors"
	"testing"

	"elfatih/internal/models"
	"elfatih/internal/repository"
)

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != code {
		t.Fatalf("expected %s app error, got %#v", code, err)
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "VALIDATION_ERROR")
}

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByPhoneFn    func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, int, int, bool) ([]models.User, error)
	statsFn         func(context.Context) (*models.UserStats, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.getByPhoneFn(ctx, phone)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int, activeOnly bool) ([]models.User, error) {
	return s.listFn(ctx, limit, offset, activeOnly)
}
func (s *userRepoStub) Stats(ctx context.Context) (*models.UserStats, error) {
	return s.statsFn(ctx)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, UserType: models.UserTypeUser, IsActive: true}, nil
		},
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByPhoneFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
		updateFn:        func(context.Context, *models.User) error { return nil },
		deleteFn:        func(context.Context, uint) error { return nil },
		listFn:          func(context.Context, int, int, bool) ([]models.User, error) { return nil, nil },
		statsFn:         func(context.Context) (*models.UserStats, error) { return &models.UserStats{}, nil },
	}
}

type postRepoStub struct {
	createFn              func(context.Context, *models.Post) error
	createWithSectionsFn  func(context.Context, *models.Post, []models.PostSection) error
	getByIDFn             func(context.Context, uint) (*models.Post, error)
	getWithSectionsFn     func(context.Context, uint) (*models.Post, error)
	getImageFn            func(context.Context, uint) (*repository.PostImage, error)
	listFn                func(context.Context, int, int, bool) ([]*models.Post, error)
	updateFn              func(context.Context, *models.Post) error
	setImageFn            func(context.Context, uint, *repository.PostImage) error
	clearImageFn          func(context.Context, uint) error
	deleteFn              func(context.Context, uint) error
	getFeedbackFn         func(context.Context, uint, uint) (*models.PostFeedback, error)
	getFeedbackForPostsFn func(context.Context, uint, []uint) (map[uint]models.FeedbackType, error)
	setFeedbackFn         func(context.Context, uint, uint, models.FeedbackType) error
	removeFeedbackFn      func(context.Context, uint, uint) error
	addSectionFn          func(context.Context, *models.PostSection) error
	getSectionFn          func(context.Context, uint) (*models.PostSection, error)
	getSectionImageFn     func(context.Context, uint) (*repository.PostImage, error)
	updateSectionFn       func(context.Context, *models.PostSection) error
	reorderSectionFn      func(context.Context, uint, int) error
	deleteSectionFn       func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) CreateWithSections(ctx context.Context, post *models.Post, sections []models.PostSection) error {
	return s.createWithSectionsFn(ctx, post, sections)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetWithSections(ctx context.Context, id uint) (*models.Post, error) {
	return s.getWithSectionsFn(ctx, id)
}
func (s *postRepoStub) GetImage(ctx context.Context, id uint) (*repository.PostImage, error) {
	return s.getImageFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, activeOnly bool) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset, activeOnly)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) SetImage(ctx context.Context, id uint, img *repository.PostImage) error {
	return s.setImageFn(ctx, id, img)
}
func (s *postRepoStub) ClearImage(ctx context.Context, id uint) error {
	return s.clearImageFn(ctx, id)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) GetFeedback(ctx context.Context, userID, postID uint) (*models.PostFeedback, error) {
	return s.getFeedbackFn(ctx, userID, postID)
}
func (s *postRepoStub) GetFeedbackForPosts(ctx context.Context, userID uint, postIDs []uint) (map[uint]models.FeedbackType, error) {
	return s.getFeedbackForPostsFn(ctx, userID, postIDs)
}
func (s *postRepoStub) SetFeedback(ctx context.Context, userID, postID uint, feedbackType models.FeedbackType) error {
	return s.setFeedbackFn(ctx, userID, postID, feedbackType)
}
func (s *postRepoStub) RemoveFeedback(ctx context.Context, userID, postID uint) error {
	return s.removeFeedbackFn(ctx, userID, postID)
}
func (s *postRepoStub) AddSection(ctx context.Context, section *models.PostSection) error {
	return s.addSectionFn(ctx, section)
}
func (s *postRepoStub) GetSection(ctx context.Context, sectionID uint) (*models.PostSection, error) {
	return s.getSectionFn(ctx, sectionID)
}
func (s *postRepoStub) GetSectionImage(ctx context.Context, sectionID uint) (*repository.PostImage, error) {
	return s.getSectionImageFn(ctx, sectionID)
}
func (s *postRepoStub) UpdateSection(ctx context.Context, section *models.PostSection) error {
	return s.updateSectionFn(ctx, section)
}
func (s *postRepoStub) ReorderSection(ctx context.Context, sectionID uint, newIndex int) error {
	return s.reorderSectionFn(ctx, sectionID, newIndex)
}
func (s *postRepoStub) DeleteSection(ctx context.Context, sectionID uint) error {
	return s.deleteSectionFn(ctx, sectionID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(context.Context, *models.Post) error { return nil },
		createWithSectionsFn: func(context.Context, *models.Post, []models.PostSection) error {
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, IsActive: true}, nil
		},
		getWithSectionsFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, IsActive: true}, nil
		},
		getImageFn: func(context.Context, uint) (*repository.PostImage, error) { return nil, nil },
		listFn:     func(context.Context, int, int, bool) ([]*models.Post, error) { return nil, nil },
		updateFn:   func(context.Context, *models.Post) error { return nil },
		setImageFn: func(context.Context, uint, *repository.PostImage) error { return nil },
		clearImageFn: func(context.Context, uint) error { return nil },
		deleteFn:     func(context.Context, uint) error { return nil },
		getFeedbackFn: func(context.Context, uint, uint) (*models.PostFeedback, error) {
			return nil, nil
		},
		getFeedbackForPostsFn: func(context.Context, uint, []uint) (map[uint]models.FeedbackType, error) {
			return map[uint]models.FeedbackType{}, nil
		},
		setFeedbackFn:    func(context.Context, uint, uint, models.FeedbackType) error { return nil },
		removeFeedbackFn: func(context.Context, uint, uint) error { return nil },
		addSectionFn:     func(context.Context, *models.PostSection) error { return nil },
		getSectionFn: func(_ context.Context, id uint) (*models.PostSection, error) {
			return &models.PostSection{ID: id}, nil
		},
		getSectionImageFn: func(context.Context, uint) (*repository.PostImage, error) { return nil, nil },
		updateSectionFn:   func(context.Context, *models.PostSection) error { return nil },
		reorderSectionFn:  func(context.Context, uint, int) error { return nil },
		deleteSectionFn:   func(context.Context, uint) error { return nil },
	}
}

type deviceRepoStub struct {
	createFn    func(context.Context, *models.Device) error
	getByIDFn   func(context.Context, uint) (*models.Device, error)
	getByNameFn func(context.Context, string) (*models.Device, error)
	listFn      func(context.Context, int, int, bool) (*models.DevicePage, error)
	getImageFn  func(context.Context, uint) ([]byte, error)
	getQRCodeFn func(context.Context, uint) ([]byte, error)
	setQRCodeFn func(context.Context, uint, []byte) error
	setImageFn  func(context.Context, uint, []byte) error
	updateFn    func(context.Context, *models.Device) error
	setActiveFn func(context.Context, uint, bool) error
	deleteFn    func(context.Context, uint) error
}

func (s *deviceRepoStub) Create(ctx context.Context, device *models.Device) error {
	return s.createFn(ctx, device)
}
func (s *deviceRepoStub) GetByID(ctx context.Context, id uint) (*models.Device, error) {
	return s.getByIDFn(ctx, id)
}
func (s *deviceRepoStub) GetByName(ctx context.Context, name string) (*models.Device, error) {
	return s.getByNameFn(ctx, name)
}
func (s *deviceRepoStub) List(ctx context.Context, page, perPage int, activeOnly bool) (*models.DevicePage, error) {
	return s.listFn(ctx, page, perPage, activeOnly)
}
func (s *deviceRepoStub) GetImage(ctx context.Context, id uint) ([]byte, error) {
	return s.getImageFn(ctx, id)
}
func (s *deviceRepoStub) GetQRCode(ctx context.Context, id uint) ([]byte, error) {
	return s.getQRCodeFn(ctx, id)
}
func (s *deviceRepoStub) SetQRCode(ctx context.Context, id uint, qr []byte) error {
	return s.setQRCodeFn(ctx, id, qr)
}
func (s *deviceRepoStub) SetImage(ctx context.Context, id uint, image []byte) error {
	return s.setImageFn(ctx, id, image)
}
func (s *deviceRepoStub) Update(ctx context.Context, device *models.Device) error {
	return s.updateFn(ctx, device)
}
func (s *deviceRepoStub) SetActive(ctx context.Context, id uint, active bool) error {
	return s.setActiveFn(ctx, id, active)
}
func (s *deviceRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopDeviceRepo() *deviceRepoStub {
	return &deviceRepoStub{
		createFn: func(context.Context, *models.Device) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Device, error) {
			return &models.Device{ID: id, DeviceName: "unit", Version: "v1.0", IsActive: true}, nil
		},
		getByNameFn: func(_ context.Context, name string) (*models.Device, error) {
			return &models.Device{ID: 1, DeviceName: name, Version: "v1.0", IsActive: true}, nil
		},
		listFn: func(context.Context, int, int, bool) (*models.DevicePage, error) {
			return &models.DevicePage{}, nil
		},
		getImageFn:  func(context.Context, uint) ([]byte, error) { return nil, nil },
		getQRCodeFn: func(context.Context, uint) ([]byte, error) { return nil, nil },
		setQRCodeFn: func(context.Context, uint, []byte) error { return nil },
		setImageFn:  func(context.Context, uint, []byte) error { return nil },
		updateFn:    func(context.Context, *models.Device) error { return nil },
		setActiveFn: func(context.Context, uint, bool) error { return nil },
		deleteFn:    func(context.Context, uint) error { return nil },
	}
}

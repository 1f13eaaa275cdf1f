package server

import (
	"context"

	"elfatih/internal/models"
	"elfatih/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock of the repository.UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int, activeOnly bool) ([]models.User, error) {
	args := m.Called(ctx, limit, offset, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Stats(ctx context.Context) (*models.UserStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}

// MockPostRepository is a mock of the repository.PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) CreateWithSections(ctx context.Context, post *models.Post, sections []models.PostSection) error {
	args := m.Called(ctx, post, sections)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetWithSections(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetImage(ctx context.Context, id uint) (*repository.PostImage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PostImage), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, limit, offset int, activeOnly bool) ([]*models.Post, error) {
	args := m.Called(ctx, limit, offset, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) SetImage(ctx context.Context, id uint, img *repository.PostImage) error {
	args := m.Called(ctx, id, img)
	return args.Error(0)
}

func (m *MockPostRepository) ClearImage(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) GetFeedback(ctx context.Context, userID, postID uint) (*models.PostFeedback, error) {
	args := m.Called(ctx, userID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostFeedback), args.Error(1)
}

func (m *MockPostRepository) GetFeedbackForPosts(ctx context.Context, userID uint, postIDs []uint) (map[uint]models.FeedbackType, error) {
	args := m.Called(ctx, userID, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]models.FeedbackType), args.Error(1)
}

func (m *MockPostRepository) SetFeedback(ctx context.Context, userID, postID uint, feedbackType models.FeedbackType) error {
	args := m.Called(ctx, userID, postID, feedbackType)
	return args.Error(0)
}

func (m *MockPostRepository) RemoveFeedback(ctx context.Context, userID, postID uint) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

func (m *MockPostRepository) AddSection(ctx context.Context, section *models.PostSection) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockPostRepository) GetSection(ctx context.Context, sectionID uint) (*models.PostSection, error) {
	args := m.Called(ctx, sectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostSection), args.Error(1)
}

func (m *MockPostRepository) GetSectionImage(ctx context.Context, sectionID uint) (*repository.PostImage, error) {
	args := m.Called(ctx, sectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PostImage), args.Error(1)
}

func (m *MockPostRepository) UpdateSection(ctx context.Context, section *models.PostSection) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockPostRepository) ReorderSection(ctx context.Context, sectionID uint, newIndex int) error {
	args := m.Called(ctx, sectionID, newIndex)
	return args.Error(0)
}

func (m *MockPostRepository) DeleteSection(ctx context.Context, sectionID uint) error {
	args := m.Called(ctx, sectionID)
	return args.Error(0)
}

// MockDeviceRepository is a mock of the repository.DeviceRepository interface
type MockDeviceRepository struct {
	mock.Mock
}

func (m *MockDeviceRepository) Create(ctx context.Context, device *models.Device) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *MockDeviceRepository) GetByID(ctx context.Context, id uint) (*models.Device, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Device), args.Error(1)
}

func (m *MockDeviceRepository) GetByName(ctx context.Context, name string) (*models.Device, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Device), args.Error(1)
}

func (m *MockDeviceRepository) List(ctx context.Context, page, perPage int, activeOnly bool) (*models.DevicePage, error) {
	args := m.Called(ctx, page, perPage, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DevicePage), args.Error(1)
}

func (m *MockDeviceRepository) GetImage(ctx context.Context, id uint) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDeviceRepository) GetQRCode(ctx context.Context, id uint) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDeviceRepository) SetQRCode(ctx context.Context, id uint, qr []byte) error {
	args := m.Called(ctx, id, qr)
	return args.Error(0)
}

func (m *MockDeviceRepository) SetImage(ctx context.Context, id uint, image []byte) error {
	args := m.Called(ctx, id, image)
	return args.Error(0)
}

func (m *MockDeviceRepository) Update(ctx context.Context, device *models.Device) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *MockDeviceRepository) SetActive(ctx context.Context, id uint, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockDeviceRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

package server

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"testing"

	"elfatih/internal/config"
	"elfatih/internal/models"
	"elfatih/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDeviceTestServer(deviceRepo *MockDeviceRepository) *Server {
	s := &Server{
		config:     &config.Config{JWTSecret: "test_secret", TokenTTLMinutes: 30},
		deviceRepo: deviceRepo,
	}
	s.imageService = service.NewImageService(nil)
	s.deviceService = service.NewDeviceService(deviceRepo, s.imageService)
	return s
}

func TestGetDevices(t *testing.T) {
	mockRepo := new(MockDeviceRepository)
	mockRepo.On("List", mock.Anything, 2, 5, false).Return(&models.DevicePage{
		Devices: []models.Device{
			{ID: 3, DeviceName: "sensor-a", Version: "v1.0"},
		},
		Total:      11,
		Page:       2,
		PerPage:    5,
		TotalPages: 3,
	}, nil)

	s := newDeviceTestServer(mockRepo)
	app := fiber.New()
	app.Get("/devices", s.GetDevices)

	resp, err := app.Test(httptest.NewRequest("GET", "/devices?page=2&per_page=5&active_only=false", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	mockRepo.AssertExpectations(t)
}

func TestGetDeviceByName(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		mockSetup      func(*MockDeviceRepository)
		expectedStatus int
	}{
		{
			name: "found",
			path: "/devices/name/pump-1",
			mockSetup: func(m *MockDeviceRepository) {
				m.On("GetByName", mock.Anything, "pump-1").
					Return(&models.Device{ID: 1, DeviceName: "pump-1", Version: "v2.1"}, nil)
			},
			expectedStatus: fiber.StatusOK,
		},
		{
			name: "unknown device",
			path: "/devices/name/ghost",
			mockSetup: func(m *MockDeviceRepository) {
				m.On("GetByName", mock.Anything, "ghost").
					Return(nil, models.NewNotFoundError("Device", "ghost"))
			},
			expectedStatus: fiber.StatusNotFound,
		},
		{
			name:           "blank name",
			path:           "/devices/name/%20%20",
			mockSetup:      func(m *MockDeviceRepository) {},
			expectedStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockDeviceRepository)
			tt.mockSetup(mockRepo)

			s := newDeviceTestServer(mockRepo)
			app := fiber.New()
			app.Get("/devices/name/:name", s.GetDeviceByName)

			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestGetDeviceQRCode_Stored(t *testing.T) {
	stored := []byte{0x89, 0x50, 0x4E, 0x47}
	mockRepo := new(MockDeviceRepository)
	mockRepo.On("GetQRCode", mock.Anything, uint(4)).Return(stored, nil)

	s := newDeviceTestServer(mockRepo)
	app := fiber.New()
	app.Get("/devices/:id/qr", s.GetDeviceQRCode)

	resp, err := app.Test(httptest.NewRequest("GET", "/devices/4/qr", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	mockRepo.AssertExpectations(t)
}

func TestGetDeviceQRCode_GeneratedOnDemand(t *testing.T) {
	device := &models.Device{ID: 4, DeviceName: "sensor-a", Version: "v1.0", IsActive: true}

	mockRepo := new(MockDeviceRepository)
	mockRepo.On("GetQRCode", mock.Anything, uint(4)).
		Return(nil, models.NewNotFoundError("QR code", 4))
	mockRepo.On("GetByID", mock.Anything, uint(4)).Return(device, nil)
	mockRepo.On("SetQRCode", mock.Anything, uint(4), mock.AnythingOfType("[]uint8")).Return(nil)

	s := newDeviceTestServer(mockRepo)
	app := fiber.New()
	app.Get("/devices/:id/qr", s.GetDeviceQRCode)

	resp, err := app.Test(httptest.NewRequest("GET", "/devices/4/qr", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 410, img.Bounds().Dx())
	assert.Equal(t, 410, img.Bounds().Dy())
	mockRepo.AssertExpectations(t)
}

func TestCreateDevice(t *testing.T) {
	tests := []struct {
		name           string
		body           fiber.Map
		mockSetup      func(*MockDeviceRepository)
		expectedStatus int
	}{
		{
			name: "successful creation",
			body: fiber.Map{"device_name": "sensor-b", "version": "v1.2.3"},
			mockSetup: func(m *MockDeviceRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*models.Device")).
					Run(func(args mock.Arguments) {
						args.Get(1).(*models.Device).ID = 8
					}).Return(nil)
				m.On("SetQRCode", mock.Anything, uint(8), mock.AnythingOfType("[]uint8")).Return(nil)
			},
			expectedStatus: fiber.StatusCreated,
		},
		{
			name:           "missing version",
			body:           fiber.Map{"device_name": "sensor-b"},
			mockSetup:      func(m *MockDeviceRepository) {},
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name:           "bad version string",
			body:           fiber.Map{"device_name": "sensor-b", "version": "latest"},
			mockSetup:      func(m *MockDeviceRepository) {},
			expectedStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockDeviceRepository)
			tt.mockSetup(mockRepo)

			s := newDeviceTestServer(mockRepo)
			app := fiber.New()
			app.Post("/devices", s.CreateDevice)

			resp, err := app.Test(jsonRequest("POST", "/devices", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockRepo.AssertExpectations(t)
		})
	}
}

func blankImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	return img
}

func TestGetDeviceImage_SniffsContentType(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, blankImage(16, 16)))

	mockRepo := new(MockDeviceRepository)
	mockRepo.On("GetImage", mock.Anything, uint(2)).Return(buf.Bytes(), nil)

	s := newDeviceTestServer(mockRepo)
	app := fiber.New()
	app.Get("/devices/:id/image", s.GetDeviceImage)

	resp, err := app.Test(httptest.NewRequest("GET", "/devices/2/image", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	mockRepo.AssertExpectations(t)
}

package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"
	"time"

	_ "image/gif"
	_ "image/png"

	"elfatih/internal/config"
	"elfatih/internal/models"
	"elfatih/internal/observability"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxSizeMB = 5
	DefaultImageMaxWidth  = 1200
	DefaultImageMaxHeight = 800
	JPEGQuality           = 85
	WebPQuality           = 80
)

// ProcessedImage is the output of the resize/convert pipeline.
type ProcessedImage struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// ImageInfo describes a stored image blob.
type ImageInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int    `json:"size_bytes"`
	Format string `json:"format"`
}

// ImageService validates, bounds and re-encodes uploaded images.
type ImageService struct {
	maxUploadBytes int64
	maxWidth       int
	maxHeight      int
	format         string
}

// NewImageService builds an ImageService from configuration, falling back to
// defaults when cfg is nil.
func NewImageService(cfg *config.Config) *ImageService {
	maxSizeMB := DefaultImageMaxSizeMB
	maxWidth := DefaultImageMaxWidth
	maxHeight := DefaultImageMaxHeight
	format := "jpeg"

	if cfg != nil {
		if cfg.ImageMaxSizeMB > 0 {
			maxSizeMB = cfg.ImageMaxSizeMB
		}
		if cfg.ImageMaxWidth > 0 {
			maxWidth = cfg.ImageMaxWidth
		}
		if cfg.ImageMaxHeight > 0 {
			maxHeight = cfg.ImageMaxHeight
		}
		if cfg.ImageFormat != "" {
			format = cfg.ImageFormat
		}
	}

	return &ImageService{
		maxUploadBytes: int64(maxSizeMB) << 20,
		maxWidth:       maxWidth,
		maxHeight:      maxHeight,
		format:         format,
	}
}

// Process validates the upload, scales it down to the configured bounds
// preserving aspect ratio, and re-encodes it. target labels the metric.
func (s *ImageService) Process(content []byte, declaredType, target string) (*ProcessedImage, error) {
	start := time.Now()

	if len(content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadBytes>>20))
	}

	detectedType := http.DetectContentType(content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}
	if provided := normalizeContentType(declaredType); strings.HasPrefix(provided, "image/") && !isAllowedImageMIME(provided) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if !isSupportedDecodedFormat(format) {
		return nil, models.NewValidationError("Unsupported image format")
	}

	resized := resizeToFit(decoded, s.maxWidth, s.maxHeight)

	var data []byte
	contentType := "image/jpeg"
	if s.format == "webp" {
		data, err = encodeWebP(resized, WebPQuality)
		contentType = "image/webp"
	} else {
		data, err = encodeJPEG(resized, JPEGQuality)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	observability.ImagesProcessed.WithLabelValues(target, s.format).Inc()
	observability.ImageProcessingLatency.Observe(time.Since(start).Seconds())

	b := resized.Bounds()
	return &ProcessedImage{
		Data:        data,
		ContentType: contentType,
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}

// Info decodes stored image metadata without re-encoding.
func (s *ImageService) Info(content []byte) (*ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &ImageInfo{
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   len(content),
		Format: format,
	}, nil
}

// DataURL renders an image blob as a base64 data URL for inline responses.
func DataURL(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	contentType := http.DetectContentType(content)
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(content)
}

// DetectContentType sniffs the MIME type of a stored blob.
func DetectContentType(content []byte) string {
	return http.DetectContentType(content)
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return contentType
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

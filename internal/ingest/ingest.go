// Package ingest accepts uploaded leaf images, validates them, and stores a
// size-bounded copy in the upload directory.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/cropcareai/cropcare/internal/config"
	"github.com/cropcareai/cropcare/pkg/models"
)

// Sentinel errors for upload failures.
var (
	ErrInvalidImage    = errors.New("image data is corrupt or unreadable")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrStorage         = errors.New("failed to store image")
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Service writes validated uploads into a server-controlled directory.
type Service struct {
	dir    string
	maxDim int
}

// NewService creates the upload directory if needed and returns a Service.
func NewService(cfg config.UploadsConfig) (*Service, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Service{dir: cfg.Dir, maxDim: cfg.MaxDimension}, nil
}

// Dir returns the upload directory path.
func (s *Service) Dir() string { return s.dir }

// Ingest validates and stores one uploaded image. The client-supplied name is
// sanitized before use; a name collision silently overwrites the earlier file.
// The image is downscaled so neither dimension exceeds the configured bound,
// preserving aspect ratio, and re-encoded in its original format.
func (s *Service) Ingest(clientName string, r io.Reader) (models.StoredImage, error) {
	ext := strings.ToLower(filepath.Ext(clientName))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return models.StoredImage{}, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return models.StoredImage{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return models.StoredImage{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > s.maxDim || bounds.Dy() > s.maxDim {
		img = resize.Thumbnail(uint(s.maxDim), uint(s.maxDim), img, resize.Lanczos3)
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case "png":
		err = png.Encode(&buf, img)
	default:
		return models.StoredImage{}, fmt.Errorf("%w: %q", ErrUnsupportedType, format)
	}
	if err != nil {
		return models.StoredImage{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	name := SanitizeFilename(clientName)
	if filepath.Ext(name) == "" {
		name = uuid.NewString() + ext
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return models.StoredImage{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return models.StoredImage{
		Filename: name,
		Path:     path,
		Format:   format,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// SanitizeFilename strips path segments and any character outside
// [A-Za-z0-9._-] from a client-supplied filename, so the result is always a
// bare name safe to join under the upload directory.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", ".")
	}
	return strings.Trim(name, "._")
}

// Package storage keeps uploaded recipe images on the local filesystem.
package storage

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	// Decoders registered with the image package.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/google/uuid"

	"recipeapi/internal/errors"
)

// RecipeImageDir is the media-relative directory recipe images live in.
const RecipeImageDir = "upload/recipe"

// extensions lists the filename extensions accepted for each decoded format.
var extensions = map[string][]string{
	"jpeg": {"jpg", "jpeg"},
	"png":  {"png"},
	"gif":  {"gif"},
	"webp": {"webp"},
	"bmp":  {"bmp"},
	"tiff": {"tif", "tiff"},
}

// RecipeImagePath builds the media-relative path for an upload:
// upload/recipe/<id>.<ext>.
func RecipeImagePath(id, ext string) string {
	return path.Join(RecipeImageDir, id+"."+ext)
}

// imageExtension picks the stored extension for an upload. The client's
// extension is kept, lower-cased, only when it names the decoded format;
// without one the format's canonical extension is used.
func imageExtension(filename, format string) (string, error) {
	allowed, ok := extensions[format]
	if !ok {
		return "", fmt.Errorf("%w: unsupported format %q", errors.ErrInvalidImage, format)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return extensionFor(format), nil
	}
	for _, a := range allowed {
		if ext == a {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: extension %q does not match %s content", errors.ErrInvalidImage, ext, format)
}

// ImageStorage manages image files below a media root.
// Safe for concurrent use.
type ImageStorage struct {
	root  string
	newID func() string
	mu    sync.Mutex
}

// Option customizes an ImageStorage.
type Option func(*ImageStorage)

// WithIDGenerator replaces the uuid generator used for file names.
func WithIDGenerator(fn func() string) Option {
	return func(s *ImageStorage) {
		s.newID = fn
	}
}

// NewImageStorage creates the recipe image directory below root.
func NewImageStorage(root string, opts ...Option) (*ImageStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("media root cannot be empty")
	}

	if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(RecipeImageDir)), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	s := &ImageStorage{
		root:  root,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save validates that data decodes as an image and writes it under a freshly
// generated name. It returns the media-relative path.
func (s *ImageStorage) Save(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty upload", errors.ErrInvalidImage)
	}

	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidImage, err)
	}

	ext, err := imageExtension(filename, format)
	if err != nil {
		return "", err
	}
	rel := RecipeImagePath(s.newID(), ext)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.Path(rel), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return rel, nil
}

// Delete removes a stored image. Missing files are not an error.
func (s *ImageStorage) Delete(rel string) error {
	if rel == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(rel)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// Path returns the filesystem path for a media-relative path.
func (s *ImageStorage) Path(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func extensionFor(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

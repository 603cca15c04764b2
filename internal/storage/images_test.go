package storage

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "recipeapi/internal/errors"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func stored(s *ImageStorage, rel string) bool {
	_, err := os.Stat(s.Path(rel))
	return err == nil
}

func TestRecipeImagePath(t *testing.T) {
	assert.Equal(t, "upload/recipe/test-uuid.jpg", RecipeImagePath("test-uuid", "jpg"))
	assert.Equal(t, "upload/recipe/u.png", RecipeImagePath("u", "png"))
}

func TestImageExtension(t *testing.T) {
	tests := []struct {
		filename string
		format   string
		want     string
		wantErr  bool
	}{
		{filename: "myimage.jpg", format: "jpeg", want: "jpg"},
		{filename: "myimage.JPEG", format: "jpeg", want: "jpeg"},
		{filename: "scan.tif", format: "tiff", want: "tif"},
		{filename: "noext", format: "jpeg", want: "jpg"},
		{filename: "noext", format: "webp", want: "webp"},
		{filename: "x.html", format: "png", wantErr: true},
		{filename: "x.png.html", format: "png", wantErr: true},
		{filename: "photo.gif", format: "png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename+"/"+tt.format, func(t *testing.T) {
			got, err := imageExtension(tt.filename, tt.format)
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperrors.ErrInvalidImage))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImageStorage_SaveExtensionFollowsContent(t *testing.T) {
	polyglot := append(pngBytes(t), []byte("<html><script>alert(document.cookie)</script></html>")...)

	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
		wantErr  bool
	}{
		{name: "matching extension", filename: "photo.png", data: pngBytes(t), want: "upload/recipe/u.png"},
		{name: "upper case extension", filename: "Photo.PNG", data: pngBytes(t), want: "upload/recipe/u.png"},
		{name: "no extension", filename: "blob", data: pngBytes(t), want: "upload/recipe/u.png"},
		{name: "html extension", filename: "x.html", data: polyglot, wantErr: true},
		{name: "svg extension", filename: "x.svg", data: pngBytes(t), wantErr: true},
		{name: "mismatched image extension", filename: "photo.jpg", data: pngBytes(t), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewImageStorage(t.TempDir(), WithIDGenerator(func() string { return "u" }))
			require.NoError(t, err)

			rel, err := s.Save(tt.filename, tt.data)
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperrors.ErrInvalidImage))
				entries, readErr := os.ReadDir(s.Path(RecipeImageDir))
				require.NoError(t, readErr)
				assert.Empty(t, entries)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rel)
		})
	}
}

func TestImageStorage_SaveUsesGeneratedID(t *testing.T) {
	s, err := NewImageStorage(t.TempDir(), WithIDGenerator(func() string { return "u" }))
	require.NoError(t, err)

	rel, err := s.Save("photo.png", pngBytes(t))
	require.NoError(t, err)

	assert.Equal(t, "upload/recipe/u.png", rel)
	assert.True(t, stored(s, rel))
}

func TestImageStorage_SaveGeneratesUniqueNames(t *testing.T) {
	s, err := NewImageStorage(t.TempDir())
	require.NoError(t, err)

	first, err := s.Save("photo.png", pngBytes(t))
	require.NoError(t, err)
	second, err := s.Save("photo.png", pngBytes(t))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, stored(s, first))
	assert.True(t, stored(s, second))
}

func TestImageStorage_SaveRejectsNonImage(t *testing.T) {
	s, err := NewImageStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save("notimage.jpg", []byte("this is not an image"))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidImage))

	_, err = s.Save("empty.jpg", nil)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidImage))
}

func TestImageStorage_Delete(t *testing.T) {
	s, err := NewImageStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := s.Save("photo.png", pngBytes(t))
	require.NoError(t, err)

	require.NoError(t, s.Delete(rel))
	assert.False(t, stored(s, rel))

	// Already deleted, not an error.
	assert.NoError(t, s.Delete(rel))
	assert.NoError(t, s.Delete(""))
}

func TestNewImageStorage_EmptyRoot(t *testing.T) {
	_, err := NewImageStorage("")
	assert.Error(t, err)
}

package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil))
	return buf.Bytes()
}

func upload(name string, data []byte) ImageUpload {
	return ImageUpload{Filename: name, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func TestValidateImage(t *testing.T) {
	s := &ProductImageService{maxBytes: 1024}
	pngData := pngBytes(t)
	jpegData := jpegBytes(t)

	tests := []struct {
		name  string
		up    ImageUpload
		valid bool
	}{
		{"png", upload("photo.png", pngData), true},
		{"upper case extension", upload("PHOTO.PNG", pngData), true},
		{"jpeg", upload("photo.jpeg", jpegData), true},
		{"jpg extension", upload("photo.jpg", jpegData), false},
		{"gif extension", upload("photo.gif", pngData), false},
		{"png named jpeg", upload("photo.jpeg", pngData), false},
		{"text content", upload("notes.png", []byte("just some text")), false},
		{"declared too large", ImageUpload{Filename: "big.png", Size: 2048, Content: bytes.NewReader(pngData)}, false},
		{"actually too large", ImageUpload{Filename: "big.png", Size: 10, Content: bytes.NewReader(append(pngData, make([]byte, 2048)...))}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.ValidateImage(tc.up)
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Fields, "image")
		})
	}
}

func TestUploadAndDeleteImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Books")
	p := f.product(t, cat.ID, "A", "10.00")

	root := t.TempDir()
	svc := NewProductImageService(
		repositories.NewProductImageRepository(f.db),
		repositories.NewProductRepository(f.db),
		root, "/media/", 500, zap.NewNop(),
	)

	_, err := svc.Upload(ctx, 999, upload("a.png", pngBytes(t)))
	assert.ErrorIs(t, err, ErrNotFound)

	img, err := svc.Upload(ctx, p.ID, upload("a.png", pngBytes(t)))
	require.NoError(t, err)
	assert.Regexp(t, `^store/images/[0-9a-f-]{36}\.png$`, img.Image)
	assert.Equal(t, "/media/"+img.Image, svc.URL(*img))

	stored := filepath.Join(root, filepath.FromSlash(img.Image))
	assert.FileExists(t, stored)

	list, err := svc.List(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, p.ID, img.ID))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, svc.Delete(ctx, p.ID, img.ID), ErrNotFound)
}

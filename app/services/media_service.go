package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const productImageDir = "store/images"

var allowedImageTypes = map[string]string{
	".png":  "image/png",
	".jpeg": "image/jpeg",
}

type ImageUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type ProductImageService struct {
	imageRepo   repositories.ProductImageRepository
	productRepo repositories.ProductRepository
	mediaRoot   string
	mediaURL    string
	maxBytes    int64
	logger      *zap.Logger
}

func NewProductImageService(
	imageRepo repositories.ProductImageRepository,
	productRepo repositories.ProductRepository,
	mediaRoot, mediaURL string,
	maxUploadKB int,
	logger *zap.Logger,
) *ProductImageService {
	return &ProductImageService{
		imageRepo:   imageRepo,
		productRepo: productRepo,
		mediaRoot:   mediaRoot,
		mediaURL:    mediaURL,
		maxBytes:    int64(maxUploadKB) * 1024,
		logger:      logger,
	}
}

// URL is the public address of a stored image.
func (s *ProductImageService) URL(image models.ProductImage) string {
	return strings.TrimSuffix(s.mediaURL, "/") + "/" + image.Image
}

func (s *ProductImageService) ensureProduct(ctx context.Context, productID uint) error {
	exists, err := s.productRepo.Exists(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	return nil
}

func (s *ProductImageService) List(ctx context.Context, productID uint) ([]models.ProductImage, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	images, err := s.imageRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

func (s *ProductImageService) Get(ctx context.Context, productID, id uint) (*models.ProductImage, error) {
	image, err := s.imageRepo.GetForProduct(ctx, productID, id)
	if err != nil {
		return nil, notFound(err, "image")
	}
	return image, nil
}

// ValidateImage checks the extension, the size cap and the sniffed content type, and returns
// the file content read so far.
func (s *ProductImageService) ValidateImage(up ImageUpload) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	wantType, ok := allowedImageTypes[ext]
	if !ok {
		return nil, NewValidationError("image",
			fmt.Sprintf("File extension %q is not allowed. Allowed extensions are: png, jpeg.", strings.TrimPrefix(ext, ".")), nil)
	}

	tooLarge := NewValidationError("image", fmt.Sprintf("Files cannot be larger than %dKB!", s.maxBytes/1024), nil)
	if up.Size > s.maxBytes {
		return nil, tooLarge
	}

	data, err := io.ReadAll(io.LimitReader(up.Content, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, tooLarge
	}

	if !mimetype.Detect(data).Is(wantType) {
		return nil, NewValidationError("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.", nil)
	}
	return data, nil
}

func (s *ProductImageService) Upload(ctx context.Context, productID uint, up ImageUpload) (*models.ProductImage, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	data, err := s.ValidateImage(up)
	if err != nil {
		return nil, err
	}

	name := path.Join(productImageDir, uuid.New().String()+strings.ToLower(filepath.Ext(up.Filename)))
	fullPath := filepath.Join(s.mediaRoot, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare media directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	image := &models.ProductImage{ProductID: productID, Image: name}
	if err := s.imageRepo.Create(ctx, image); err != nil {
		s.removeFile(fullPath)
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	s.logger.Info("ProductImageService.Upload: image stored",
		zap.Uint("product_id", productID), zap.String("image", name), zap.Int("bytes", len(data)))
	return image, nil
}

func (s *ProductImageService) Delete(ctx context.Context, productID, id uint) error {
	image, err := s.Get(ctx, productID, id)
	if err != nil {
		return err
	}
	if err := s.imageRepo.Delete(ctx, image.ID); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	s.removeFile(filepath.Join(s.mediaRoot, filepath.FromSlash(image.Image)))
	return nil
}

func (s *ProductImageService) removeFile(fullPath string) {
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("ProductImageService: failed to remove file", zap.String("path", fullPath), zap.Error(err))
	}
}

package repositories

import (
	"context"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type ProductImageRepository interface {
	Create(ctx context.Context, image *models.ProductImage) error
	GetByProductID(ctx context.Context, productID uint) ([]models.ProductImage, error)
	GetForProduct(ctx context.Context, productID, id uint) (*models.ProductImage, error)
	Delete(ctx context.Context, id uint) error
}

type productImageRepository struct {
	db *gorm.DB
}

func NewProductImageRepository(db *gorm.DB) ProductImageRepository {
	return &productImageRepository{db: db}
}

func (r *productImageRepository) Create(ctx context.Context, image *models.ProductImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *productImageRepository) GetByProductID(ctx context.Context, productID uint) ([]models.ProductImage, error) {
	var images []models.ProductImage
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("id ASC").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (r *productImageRepository) GetForProduct(ctx context.Context, productID, id uint) (*models.ProductImage, error) {
	var image models.ProductImage
	if err := r.db.WithContext(ctx).Where("product_id = ? AND id = ?", productID, id).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *productImageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ProductImage{}, "id = ?", id).Error
}

package repositories

import (
	"context"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByProductID(ctx context.Context, productID uint) ([]models.Review, error)
	GetForProduct(ctx context.Context, productID, id uint) (*models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uint) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) withProduct(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Product.Images").
		Preload("Product.Promotions")
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Omit("Product").Create(review).Error
}

func (r *reviewRepository) GetByProductID(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.withProduct(ctx).Where("product_id = ?", productID).Order("id ASC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) GetForProduct(ctx context.Context, productID, id uint) (*models.Review, error) {
	var review models.Review
	if err := r.withProduct(ctx).Where("product_id = ? AND id = ?", productID, id).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Model(review).Select("ReviewerName", "Remark").Updates(review).Error
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id).Error
}

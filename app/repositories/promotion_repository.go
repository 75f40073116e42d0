package repositories

import (
	"context"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type PromotionRepository interface {
	Create(ctx context.Context, promotion *models.Promotion) error
	GetByID(ctx context.Context, id uint) (*models.Promotion, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Promotion, error)
	GetAll(ctx context.Context) ([]models.Promotion, error)
	Update(ctx context.Context, promotion *models.Promotion) error
	Delete(ctx context.Context, id uint) error
}

type promotionRepository struct {
	db *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) PromotionRepository {
	return &promotionRepository{db: db}
}

func (r *promotionRepository) Create(ctx context.Context, promotion *models.Promotion) error {
	return r.db.WithContext(ctx).Create(promotion).Error
}

func (r *promotionRepository) GetByID(ctx context.Context, id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.WithContext(ctx).First(&promotion, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promotion, nil
}

func (r *promotionRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Promotion, error) {
	var promotions []models.Promotion
	if len(ids) == 0 {
		return promotions, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

func (r *promotionRepository) GetAll(ctx context.Context) ([]models.Promotion, error) {
	var promotions []models.Promotion
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}

func (r *promotionRepository) Update(ctx context.Context, promotion *models.Promotion) error {
	return r.db.WithContext(ctx).Save(promotion).Error
}

func (r *promotionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		promotion := models.Promotion{ID: id}
		if err := tx.Model(&promotion).Association("Products").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Promotion{}, "id = ?", id).Error
	})
}

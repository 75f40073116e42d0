package repositories

import (
	"context"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type OrderItemRepository interface {
	BulkCreate(ctx context.Context, db *gorm.DB, items []models.OrderItem) error
	CountByOrderID(ctx context.Context, orderID uint) (int64, error)
}

type orderItemRepository struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

// BulkCreate inserts all items in one statement on db, which is the placement transaction.
func (r *orderItemRepository) BulkCreate(ctx context.Context, db *gorm.DB, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Omit("Product").Create(&items).Error
}

func (r *orderItemRepository) CountByOrderID(ctx context.Context, orderID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("order_id = ?", orderID).Count(&count).Error
	return count, err
}

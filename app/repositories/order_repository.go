package repositories

import (
	"context"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByIDForCustomer(ctx context.Context, id, customerID uint) (*models.Order, error)
	FindByCode(ctx context.Context, orderCode string) (*models.Order, error)
	GetAllOrders(ctx context.Context) ([]models.Order, error)
	FindByCustomerID(ctx context.Context, customerID uint) ([]models.Order, error)
	UpdateStatuses(ctx context.Context, id uint, updates map[string]interface{}) error
	UpdatePaymentStatusIfPending(ctx context.Context, id uint, paymentStatus string) (int64, error)
	UpdateMidtransDetails(ctx context.Context, id uint, transactionToken, paymentURL string) error
	Delete(ctx context.Context, id uint) error
}

type gormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

// withDetails preloads what an order response needs. Products are loaded unscoped because an
// order keeps pointing at products that were deleted after it was placed.
func (r *gormOrderRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Customer.User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (r *gormOrderRepository) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return tx.WithContext(ctx).Omit("Customer", "Items").Create(order).Error
}

func (r *gormOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.withDetails(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) GetByIDForCustomer(ctx context.Context, id, customerID uint) (*models.Order, error) {
	var order models.Order
	err := r.withDetails(ctx).
		Where("id = ? AND customer_id = ?", id, customerID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) FindByCode(ctx context.Context, orderCode string) (*models.Order, error) {
	var order models.Order
	if err := r.withDetails(ctx).First(&order, "code = ?", orderCode).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.withDetails(ctx).Order("placed_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *gormOrderRepository) FindByCustomerID(ctx context.Context, customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.withDetails(ctx).
		Where("customer_id = ?", customerID).
		Order("placed_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *gormOrderRepository) UpdateStatuses(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdatePaymentStatusIfPending only touches orders whose payment is still pending, so a late
// or replayed notification cannot reopen a settled order.
func (r *gormOrderRepository) UpdatePaymentStatusIfPending(ctx context.Context, id uint, paymentStatus string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, models.StatusPending).
		Update("payment_status", paymentStatus)
	return result.RowsAffected, result.Error
}

func (r *gormOrderRepository) UpdateMidtransDetails(ctx context.Context, id uint, transactionToken, paymentURL string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"payment_token": transactionToken,
		"payment_url":   paymentURL,
	}).Error
}

func (r *gormOrderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id).Error
}

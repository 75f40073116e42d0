package repositories

import (
	"context"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
)

type CartItemRepository interface {
	Add(ctx context.Context, item *models.CartItem) error
	IncrementQuantity(ctx context.Context, id uint, quantity, limit int) (int64, error)
	UpdateQuantity(ctx context.Context, id uint, quantity int) error
	Delete(ctx context.Context, cartID string, id uint) (int64, error)
	GetForCart(ctx context.Context, cartID string, id uint) (*models.CartItem, error)
	GetByCartID(ctx context.Context, cartID string) ([]models.CartItem, error)
	GetCartAndProduct(ctx context.Context, cartID string, productID uint) (*models.CartItem, error)
	GetByCartIDTx(ctx context.Context, tx *gorm.DB, cartID string) ([]models.CartItem, error)
	ClearCartItems(ctx context.Context, tx *gorm.DB, cartID string) error
}

type cartItemRepository struct {
	db *gorm.DB
}

func NewCartItemRepository(db *gorm.DB) CartItemRepository {
	return &cartItemRepository{db}
}

func (r *cartItemRepository) Add(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Omit("Cart", "Product").Create(item).Error
}

// IncrementQuantity adds to the stored quantity in a single UPDATE. Rows whose new quantity
// would exceed limit are left untouched, so zero rows affected means the cap was hit.
func (r *cartItemRepository) IncrementQuantity(ctx context.Context, id uint, quantity, limit int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND quantity + ? <= ?", id, quantity, limit).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	return result.RowsAffected, result.Error
}

func (r *cartItemRepository) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *cartItemRepository) Delete(ctx context.Context, cartID string, id uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartID, id).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

func (r *cartItemRepository) GetForCart(ctx context.Context, cartID string, id uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product.Category").
		Where("cart_id = ? AND id = ?", cartID, id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartItemRepository) GetByCartID(ctx context.Context, cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product.Category").
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartItemRepository) GetCartAndProduct(ctx context.Context, cartID string, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByCartIDTx loads the cart lines with their live product rows on tx.
func (r *cartItemRepository) GetByCartIDTx(ctx context.Context, tx *gorm.DB, cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := tx.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartItemRepository) ClearCartItems(ctx context.Context, tx *gorm.DB, cartID string) error {
	return tx.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

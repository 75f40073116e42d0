package repositories

import (
	"context"

	"github.com/Rakhulsr/go-storefront/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	CreateCart(ctx context.Context, cart *models.Cart) error
	GetByID(ctx context.Context, id string) (*models.Cart, error)
	GetCartWithItems(ctx context.Context, id string) (*models.Cart, error)
	LockByID(ctx context.Context, tx *gorm.DB, id string) (*models.Cart, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db}
}

func (r *cartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *cartRepository) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) GetCartWithItems(ctx context.Context, id string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product.Category").
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockByID reads the cart with SELECT ... FOR UPDATE on tx. SQLite ignores the locking clause
// and serialises writers through its database lock instead.
func (r *cartRepository) LockByID(ctx context.Context, tx *gorm.DB, id string) (*models.Cart, error) {
	var cart models.Cart
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Delete removes the cart row and reports how many rows were affected. A nil tx deletes the
// cart together with its items in a transaction of its own.
func (r *cartRepository) Delete(ctx context.Context, tx *gorm.DB, id string) (int64, error) {
	if tx != nil {
		result := tx.WithContext(ctx).Delete(&models.Cart{}, "id = ?", id)
		return result.RowsAffected, result.Error
	}

	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Cart{}, "id = ?", id)
		affected = result.RowsAffected
		return result.Error
	})
	return affected, err
}
